package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/services"
)

func ListShops(ms *services.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := ms.ListShops(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func ShopMenu(ms *services.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := c.Param("shop")
		rows, err := ms.Menu(c.Request.Context(), shop)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func SetShopOpen(ms *services.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}

		var body struct {
			IsOpen *bool `json:"is_open" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := ms.SetShopOpen(c.Request.Context(), shop, *body.IsOpen); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Shop updated"))
	}
}

func AddMenuItem(ms *services.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}

		var input services.MenuItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := ms.AddItem(c.Request.Context(), shop, input)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Item added"))
	}
}

func UpdateMenuItem(ms *services.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := vendorShop(c); !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var input services.MenuItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := ms.UpdateItem(c.Request.Context(), id, input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Item updated"))
	}
}

func ToggleMenuItem(ms *services.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := vendorShop(c); !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var body struct {
			IsAvailable *bool `json:"is_available" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := ms.ToggleAvailability(c.Request.Context(), id, *body.IsAvailable); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Item updated"))
	}
}

func DeleteMenuItem(ms *services.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := ms.DeleteItem(c.Request.Context(), shop, id); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Item removed"))
	}
}
