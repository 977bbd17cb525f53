package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/services"
)

func GetMe(ps *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, profile, token, ok := currentUser(c)
		if !ok {
			return
		}
		if profile == nil {
			// First login: the trigger may not have run yet.
			p, err := ps.GetProfile(c.Request.Context(), userID(claims), token)
			if err != nil {
				c.JSON(http.StatusNotFound, models.ErrorResponse("profile not ready yet, try again"))
				return
			}
			profile = p
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

func UpdateMe(ps *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, token, ok := currentUser(c)
		if !ok {
			return
		}

		var input services.UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := ps.UpdateProfile(c.Request.Context(), userID(claims), input, token)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Profile updated"))
	}
}

// UploadIDCard takes the multipart "id_card" file and runs it through the
// verification pipeline.
func UploadIDCard(ps *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, token, ok := currentUser(c)
		if !ok {
			return
		}

		file, _, err := c.Request.FormFile("id_card")
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("id_card file is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("failed to read uploaded file"))
			return
		}

		updated, err := ps.UploadIDCard(c.Request.Context(), profile, data, token)
		if err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "ID card submitted for review"))
	}
}

func Withdraw(ps *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}

		var body struct {
			Amount int `json:"amount" binding:"required,gt=0"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := ps.Withdraw(c.Request.Context(), profile, body.Amount); err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Withdrawal requested"))
	}
}

// --- admin ---

func VerificationQueue(ps *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := ps.VerificationQueue(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func BannedList(ps *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := ps.BannedList(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func VerifyUser(ps *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := ps.Verify(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "User verified"))
	}
}

func BanUser(ps *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := ps.Ban(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "User banned"))
	}
}

func UnbanUser(ps *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := ps.Unban(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "User unbanned"))
	}
}
