package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/sujangowda077/sidequest-main/internal/config"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/push"
	"github.com/sujangowda077/sidequest-main/internal/realtime"
	"github.com/sujangowda077/sidequest-main/internal/scheduler"
	"github.com/sujangowda077/sidequest-main/internal/services"
	"github.com/supabase-community/supabase-go"
)

// Container holds all application dependencies
type Container struct {
	Logger         *slog.Logger
	Config         *config.Config
	Cloudinary     *cloudinary.Cloudinary
	SupabaseClient *supabase.Client
	Hub            *realtime.Hub
	Scheduler      *scheduler.Scheduler

	AuthService    *services.AuthService
	ProfileService *services.ProfileService
	OrderService   *services.OrderService
	PrintService   *services.PrintService
	TutorService   *services.TutorService
	PromoService   *services.PromoService
	MenuService    *services.MenuService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	cld *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	supaUrl, supaKey string,
) *Container {
	supa := models.SupabaseNewRepo(supabaseClient, supaUrl, supaKey)
	sender := push.NewClient(cfg.OneSignalAppID, cfg.OneSignalAPIKey, logger)
	hub := realtime.NewHub(logger)

	authService := services.NewAuthService(supa)
	profileService := services.NewProfileService(supa, sender, hub, logger)
	orderService := services.NewOrderService(supa, supa, supa, sender, hub, cfg.Vendors, logger)
	printService := services.NewPrintService(supa, supa, sender, hub, cfg.PrintAdminEmail, cfg.PrintUpiID, logger)
	tutorService := services.NewTutorService(supa, sender, hub, logger)
	promoService := services.NewPromoService(supa, sender, hub, cfg.AdminUpiID, logger)
	menuService := services.NewMenuService(supa, hub, logger)

	return &Container{
		Logger:         logger,
		Config:         cfg,
		Cloudinary:     cld,
		SupabaseClient: supabaseClient,
		Hub:            hub,
		Scheduler:      scheduler.New(supa, orderService, logger),
		AuthService:    authService,
		ProfileService: profileService,
		OrderService:   orderService,
		PrintService:   printService,
		TutorService:   tutorService,
		PromoService:   promoService,
		MenuService:    menuService,
	}
}
