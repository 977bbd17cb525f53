package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sujangowda077/sidequest-main/internal/container"
	"github.com/sujangowda077/sidequest-main/internal/handlers"
	"github.com/sujangowda077/sidequest-main/internal/helpers"
	"github.com/sujangowda077/sidequest-main/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(200, gin.H{
				"status":  "OK",
				"service": "sidequest-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.SignUp(c.AuthService))
		v1.POST("/login", handlers.SignIn(c.AuthService))
		v1.POST("/refresh", handlers.RefreshSession(c.AuthService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(c.ProfileService, c.Config, c.Logger))

	protected.GET("/realtime", handlers.Subscribe(c.Hub))

	profileRoutes := protected.Group("/profile")
	{
		profileRoutes.GET("", handlers.GetMe(c.ProfileService))
		profileRoutes.PATCH("", handlers.UpdateMe(c.ProfileService))
		profileRoutes.POST("/id-card", handlers.UploadIDCard(c.ProfileService))
		profileRoutes.POST("/withdraw", handlers.Withdraw(c.ProfileService))
	}

	shopRoutes := protected.Group("/shops")
	{
		shopRoutes.GET("", handlers.ListShops(c.MenuService))
		shopRoutes.GET("/:shop/menu", handlers.ShopMenu(c.MenuService))
	}

	orderRoutes := protected.Group("/orders")
	{
		orderRoutes.GET("/live", handlers.LiveBoard(c.OrderService))
		orderRoutes.POST("/quote", handlers.QuoteOrder(c.OrderService))
		orderRoutes.POST("", handlers.PlaceOrder(c.OrderService))
		orderRoutes.GET("", handlers.MyOrders(c.OrderService))
		orderRoutes.POST("/:id/resolve", handlers.ResolveOrder(c.OrderService))
	}

	runnerRoutes := protected.Group("/runs")
	{
		runnerRoutes.GET("/board", handlers.DeliveryBoard(c.OrderService))
		runnerRoutes.GET("/active", handlers.ActiveRuns(c.OrderService))
		runnerRoutes.POST("/:id/claim", handlers.ClaimDelivery(c.OrderService))
		runnerRoutes.POST("/:id/complete", handlers.CompleteDelivery(c.OrderService))
	}

	tutorRoutes := protected.Group("/bounties")
	{
		tutorRoutes.POST("", handlers.PostBounty(c.TutorService))
		tutorRoutes.GET("/market", handlers.BountyMarket(c.TutorService))
		tutorRoutes.GET("/activity", handlers.BountyActivity(c.TutorService))
		tutorRoutes.DELETE("/:id", handlers.DeleteBounty(c.TutorService))
		tutorRoutes.POST("/:id/accept", handlers.AcceptBounty(c.TutorService))
		tutorRoutes.POST("/:id/verify", handlers.VerifyBountyCompletion(c.TutorService))
		tutorRoutes.GET("/:id/payout", handlers.BountyPayoutRequest(c.TutorService))
		tutorRoutes.POST("/:id/paid", handlers.MarkBountyPaid(c.TutorService))
	}

	printRoutes := protected.Group("/print")
	{
		printRoutes.POST("/quote", handlers.QuotePrint(c.PrintService))
		printRoutes.POST("", handlers.SubmitPrint(c.PrintService))
		printRoutes.GET("/history", handlers.PrintHistory(c.PrintService))
	}

	printAdminRoutes := protected.Group("/print/admin")
	printAdminRoutes.Use(middleware.RequireRole(helpers.RolePrintAdmin))
	{
		printAdminRoutes.GET("/queue", handlers.PrintQueue(c.PrintService))
		printAdminRoutes.POST("/:id/done", handlers.MarkPrintDone(c.PrintService))
	}

	promoRoutes := protected.Group("/promotions")
	{
		promoRoutes.GET("", handlers.ActivePromotions(c.PromoService))
	}

	vendorRoutes := protected.Group("/vendor")
	vendorRoutes.Use(middleware.RequireRole(helpers.RoleVendor))
	{
		vendorRoutes.GET("/orders", handlers.ShopOrders(c.OrderService))
		vendorRoutes.POST("/orders/:id/accept", handlers.AcceptOrder(c.OrderService))
		vendorRoutes.POST("/orders/:id/reject", handlers.RejectOrder(c.OrderService))
		vendorRoutes.POST("/orders/:id/ready", handlers.ReadyOrder(c.OrderService))
		vendorRoutes.POST("/orders/:id/picked-up", handlers.PickedUpOrder(c.OrderService))

		vendorRoutes.GET("/payouts", handlers.UnpaidRunners(c.OrderService))
		vendorRoutes.GET("/payouts/:runner_id/request", handlers.RunnerPayoutRequest(c.OrderService))
		vendorRoutes.POST("/payouts/:runner_id/settle", handlers.SettleRunner(c.OrderService))
		vendorRoutes.GET("/dues", handlers.PlatformDues(c.OrderService))

		vendorRoutes.PATCH("/shop", handlers.SetShopOpen(c.MenuService))
		vendorRoutes.POST("/menu", handlers.AddMenuItem(c.MenuService))
		vendorRoutes.PATCH("/menu/:id", handlers.UpdateMenuItem(c.MenuService))
		vendorRoutes.PATCH("/menu/:id/availability", handlers.ToggleMenuItem(c.MenuService))
		vendorRoutes.DELETE("/menu/:id", handlers.DeleteMenuItem(c.MenuService))

		vendorRoutes.GET("/promotions/quote", handlers.QuoteAd(c.PromoService))
		vendorRoutes.POST("/promotions", handlers.PostAd(c.PromoService))
		vendorRoutes.DELETE("/promotions/:id", handlers.DeleteAd(c.PromoService))
	}

	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(middleware.RequireRole(helpers.RolePlatformAdmin))
	{
		adminRoutes.GET("/verification-queue", handlers.VerificationQueue(c.ProfileService))
		adminRoutes.GET("/banned", handlers.BannedList(c.ProfileService))
		adminRoutes.POST("/users/:id/verify", handlers.VerifyUser(c.ProfileService))
		adminRoutes.POST("/users/:id/ban", handlers.BanUser(c.ProfileService))
		adminRoutes.POST("/users/:id/unban", handlers.UnbanUser(c.ProfileService))
	}

	return r
}
