package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/helpers"
	"github.com/sujangowda077/sidequest-main/internal/models"
)

// currentUser pulls what AuthMiddleware stashed: the enhanced claims, the
// caller's profile (nil when the row hasn't been created yet) and the raw
// access token. Writes the 401 itself when the context is missing.
func currentUser(c *gin.Context) (*helpers.EnhancedClaims, *models.Profile, string, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return nil, nil, "", false
	}
	claims, ok := user.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid user claims"))
		return nil, nil, "", false
	}

	var profile *models.Profile
	if p, exists := c.Get("profile"); exists && p != nil {
		profile, _ = p.(*models.Profile)
	}
	token := c.GetString("access_token")
	return claims, profile, token, true
}

// userID parses the claims subject; the middleware already validated it.
func userID(claims *helpers.EnhancedClaims) uuid.UUID {
	id, _ := uuid.Parse(claims.UserID)
	return id
}

// pathID parses a uuid path param, answering 400 itself on garbage.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// gateStatus maps service errors to codes: gate rejections are the caller's
// situation, not a server fault.
func gateStatus(err error) int {
	if models.IsGateError(err) {
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
