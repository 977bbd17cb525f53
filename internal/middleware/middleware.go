package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/config"
	"github.com/sujangowda077/sidequest-main/internal/helpers"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/services"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			// Don't return error details in production
			c.JSON(500, gin.H{
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// bearerToken pulls the access token from the Authorization header, falling
// back to the cookie for browser clients.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if token, err := c.Cookie("access_token"); err == nil {
		return token
	}
	return ""
}

// AuthMiddleware validates the session token and resolves the caller into a
// role: a staff email runs a shop or the print queue, everything else is a
// student. The loaded profile rides along in the context so handlers don't
// re-fetch it.
func AuthMiddleware(profileService *services.ProfileService, cfg *config.Config, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("missing access token"))
			c.Abort()
			return
		}

		claims, err := helpers.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("invalid or expired token"))
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("invalid user ID in token"))
			c.Abort()
			return
		}

		enhanced := &helpers.EnhancedClaims{
			CustomClaims: claims,
			UserID:       claims.Subject,
			Email:        claims.Email,
			Role:         helpers.RoleStudent,
		}

		var profile *models.Profile
		if p, err := profileService.GetProfile(c.Request.Context(), userID, token); err != nil {
			logger.Info("profile not loaded yet", "user_id", claims.Subject, "error", err)
		} else {
			profile = p
			enhanced.FullName = p.FullName
			if p.Role != "" {
				enhanced.Role = p.Role
			}
		}

		// The staff directory wins over whatever the profile row says.
		if shop, ok := cfg.VendorShop(claims.Email); ok {
			enhanced.Role = helpers.RoleVendor
			enhanced.Shop = shop
		} else if strings.EqualFold(claims.Email, cfg.PrintAdminEmail) && cfg.PrintAdminEmail != "" {
			enhanced.Role = helpers.RolePrintAdmin
		} else if cfg.IsAdminEmail(claims.Email) {
			enhanced.Role = helpers.RolePlatformAdmin
		}

		c.Set("user", enhanced)
		c.Set("profile", profile)
		c.Set("access_token", token)
		c.Next()
	}
}

// RequireRole gates a route group to one staff role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			c.Abort()
			return
		}
		claims, ok := user.(*helpers.EnhancedClaims)
		if !ok || !claims.HasRole(role) {
			c.JSON(http.StatusForbidden, models.ErrorResponse("you don't have access to this"))
			c.Abort()
			return
		}
		c.Next()
	}
}
