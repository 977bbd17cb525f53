package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/connect"
	"github.com/sujangowda077/sidequest-main/internal/helpers"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/payment"
	"github.com/sujangowda077/sidequest-main/internal/push"
	"github.com/sujangowda077/sidequest-main/internal/realtime"
)

type PromoService struct {
	promoRepo  models.PromoRepo
	push       push.Sender
	hub        realtime.Broadcaster
	adminUpiID string
	logger     *slog.Logger
}

func NewPromoService(promoRepo models.PromoRepo, sender push.Sender, hub realtime.Broadcaster, adminUpiID string, logger *slog.Logger) *PromoService {
	return &PromoService{
		promoRepo:  promoRepo,
		push:       sender,
		hub:        hub,
		adminUpiID: adminUpiID,
		logger:     logger,
	}
}

// QuoteAd issues the payment request for the flat ad fee, payable to the
// platform.
func (ps *PromoService) QuoteAd(ctx context.Context) (*payment.Request, error) {
	if ps.adminUpiID == "" {
		return nil, fmt.Errorf("ad payments are not configured")
	}
	req := payment.NewRequest(ps.adminUpiID, "SideQuest", models.AdPrice)
	return &req, nil
}

type PostAdInput struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description"`
	BgColor     string `json:"bg_color"`
	UTR         string `json:"utr"`
	Amount      float64
	BannerPath  string
}

// PostAd publishes a home-screen promotion for the vendor's shop after the
// ad fee is paid. The banner goes to Cloudinary first; a failed upload never
// leaves a half-published ad behind.
func (ps *PromoService) PostAd(ctx context.Context, shopName string, input PostAdInput) (*models.Promotion, error) {
	if shopName == "" {
		return nil, fmt.Errorf("shop is required")
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid ad data provided: %v", err)
	}
	if err := payment.ValidateReference(input.UTR); err != nil {
		return nil, err
	}
	delta := input.Amount - models.AdPrice
	if delta < 0.095 || delta > 0.995 {
		return nil, fmt.Errorf("payment amount does not match the ad fee")
	}

	bannerURL := ""
	if input.BannerPath != "" {
		urls, err := helpers.UploadImages(ctx, connect.Cld, []string{input.BannerPath}, helpers.PromoFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload banner: %v", err)
		}
		if len(urls) > 0 {
			bannerURL = urls[0]
		}
	}

	row := map[string]interface{}{
		"shop_name":   shopName,
		"title":       input.Title,
		"description": input.Description,
		"bg_color":    input.BgColor,
		"banner_url":  bannerURL,
		"is_active":   true,
	}

	created, err := ps.promoRepo.CreatePromotion(ctx, row)
	if err != nil {
		return nil, err
	}

	push.Notify(ps.logger, ps.push.NotifyAll(ctx, shopName+" has something new!", input.Title))
	ps.hub.Broadcast(models.PromotionsTable, realtime.EventInsert)
	return created, nil
}

func (ps *PromoService) DeleteAd(ctx context.Context, shopName string, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("invalid promotion ID")
	}
	if err := ps.promoRepo.DeletePromotion(ctx, id, shopName); err != nil {
		return err
	}
	ps.hub.Broadcast(models.PromotionsTable, realtime.EventDelete)
	return nil
}

func (ps *PromoService) ActivePromotions(ctx context.Context) ([]*models.Promotion, error) {
	return ps.promoRepo.ListActivePromotions(ctx)
}
