package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/services"
)

func ActivePromotions(ps *services.PromoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := ps.ActivePromotions(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func QuoteAd(ps *services.PromoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := vendorShop(c); !ok {
			return
		}
		req, err := ps.QuoteAd(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(req, ""))
	}
}

// PostAd takes a multipart form: title, description, bg_color, utr, amount
// and an optional "banner" image.
func PostAd(ps *services.PromoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}

		amount, _ := strconv.ParseFloat(c.PostForm("amount"), 64)
		input := services.PostAdInput{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			BgColor:     c.PostForm("bg_color"),
			UTR:         c.PostForm("utr"),
			Amount:      amount,
		}

		if file, err := c.FormFile("banner"); err == nil {
			// Cloudinary uploads from a path, so spill the banner to a temp
			// file for the duration of the request.
			tmp := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
			if err := c.SaveUploadedFile(file, tmp); err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("failed to read banner"))
				return
			}
			defer os.Remove(tmp)
			input.BannerPath = tmp
		}

		created, err := ps.PostAd(c.Request.Context(), shop, input)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Promotion published"))
	}
}

func DeleteAd(ps *services.PromoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := ps.DeleteAd(c.Request.Context(), shop, id); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Promotion removed"))
	}
}
