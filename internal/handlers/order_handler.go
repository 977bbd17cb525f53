package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/services"
)

// vendorShop resolves the caller's shop; only vendor accounts have one.
func vendorShop(c *gin.Context) (string, bool) {
	claims, _, _, ok := currentUser(c)
	if !ok {
		return "", false
	}
	if !claims.IsVendor() || claims.Shop == "" {
		c.JSON(http.StatusForbidden, models.ErrorResponse("vendor account required"))
		return "", false
	}
	return claims.Shop, true
}

func QuoteOrder(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}

		var body struct {
			ShopName  string               `json:"shop_name" binding:"required"`
			OrderType models.OrderType     `json:"order_type" binding:"required"`
			Items     []services.OrderItem `json:"items" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		quote, err := os.QuoteOrder(c.Request.Context(), profile, body.ShopName, body.Items, body.OrderType)
		if err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(quote, ""))
	}
}

func PlaceOrder(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, token, ok := currentUser(c)
		if !ok {
			return
		}

		var input services.PlaceOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := os.PlaceOrder(c.Request.Context(), profile, input, token)
		if err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Order placed"))
	}
}

func MyOrders(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, _, ok := currentUser(c)
		if !ok {
			return
		}
		rows, err := os.MyOrders(c.Request.Context(), userID(claims))
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func ResolveOrder(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := os.ResolveCancelled(c.Request.Context(), profile, id); err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Order dismissed"))
	}
}

// --- vendor queue ---

func ShopOrders(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		rows, err := os.ShopOrders(c.Request.Context(), shop)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func AcceptOrder(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		order, err := os.VendorAccept(c.Request.Context(), shop, id)
		if err != nil {
			c.JSON(http.StatusConflict, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(order, "Order accepted"))
	}
}

func RejectOrder(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := os.VendorReject(c.Request.Context(), shop, id); err != nil {
			c.JSON(http.StatusConflict, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Order rejected"))
	}
}

func ReadyOrder(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := os.VendorReady(c.Request.Context(), shop, id); err != nil {
			c.JSON(http.StatusConflict, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Order marked ready"))
	}
}

func PickedUpOrder(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := os.MarkPickedUp(c.Request.Context(), shop, id); err != nil {
			c.JSON(http.StatusConflict, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Order handed over"))
	}
}

// LiveBoard is the home-screen token board, open to any signed-in student.
func LiveBoard(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := os.LiveBoard(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

// --- runner flow ---

func DeliveryBoard(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}
		rows, err := os.AvailableDeliveries(c.Request.Context(), profile)
		if err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func ClaimDelivery(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := os.ClaimDelivery(c.Request.Context(), profile, id); err != nil {
			if errors.Is(err, models.ErrAlreadyClaimed) {
				c.JSON(http.StatusConflict, models.ErrorResponse(err.Error()))
				return
			}
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Delivery claimed"))
	}
}

func ActiveRuns(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}
		rows, err := os.ActiveRuns(c.Request.Context(), profile)
		if err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func CompleteDelivery(os *services.OrderService) gin.HandlerFunc {
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

		if err := os.CompleteDelivery(c.Request.Context(), profile, id, body.OTP); err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Delivery completed"))
	}
}

// --- vendor settlements ---

func UnpaidRunners(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		dues, err := os.UnpaidRunners(c.Request.Context(), shop)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(dues, ""))
	}
}

func RunnerPayoutRequest(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		runnerID, ok := pathID(c, "runner_id")
		if !ok {
			return
		}
		req, err := os.RunnerPayoutRequest(c.Request.Context(), shop, runnerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(req, ""))
	}
}

func SettleRunner(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		runnerID, ok := pathID(c, "runner_id")
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

		if err := os.SettleRunner(c.Request.Context(), shop, runnerID, body.UTR); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Runner settled"))
	}
}

func PlatformDues(os *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := vendorShop(c)
		if !ok {
			return
		}
		total, err := os.PlatformDues(c.Request.Context(), shop)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"dues": total}, ""))
	}
}
