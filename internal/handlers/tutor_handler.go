package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/services"
)

func PostBounty(ts *services.TutorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, token, ok := currentUser(c)
		if !ok {
			return
		}

		var input services.PostBountyInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := ts.PostBounty(c.Request.Context(), profile, input, token)
		if err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Bounty posted"))
	}
}

// BountyMarket takes an optional ?hidden=id1,id2 of session-dismissed ids.
func BountyMarket(ts *services.TutorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, _, ok := currentUser(c)
		if !ok {
			return
		}

		hidden := map[uuid.UUID]bool{}
		if raw := c.Query("hidden"); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
					hidden[id] = true
				}
			}
		}

		rows, err := ts.Market(c.Request.Context(), userID(claims), hidden)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func BountyActivity(ts *services.TutorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, _, ok := currentUser(c)
		if !ok {
			return
		}
		rows, err := ts.Activity(c.Request.Context(), userID(claims))
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func DeleteBounty(ts *services.TutorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := ts.DeleteBounty(c.Request.Context(), profile, id); err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Bounty removed"))
	}
}

func AcceptBounty(ts *services.TutorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := ts.AcceptBounty(c.Request.Context(), profile, id); err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Bounty accepted"))
	}
}

func VerifyBountyCompletion(ts *services.TutorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var body struct {
			OTP string `json:"otp" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := ts.VerifyCompletion(c.Request.Context(), profile, id, body.OTP); err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Session verified, payment pending"))
	}
}

func BountyPayoutRequest(ts *services.TutorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		req, err := ts.PayoutRequest(c.Request.Context(), profile, id)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(req, ""))
	}
}

func MarkBountyPaid(ts *services.TutorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var body struct {
			UTR string `json:"utr" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := ts.MarkPaid(c.Request.Context(), profile, id, body.UTR); err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Bounty settled"))
	}
}
