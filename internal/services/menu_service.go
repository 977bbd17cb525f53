package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/realtime"
)

type MenuService struct {
	menuRepo models.MenuRepo
	hub      realtime.Broadcaster
	logger   *slog.Logger
}

func NewMenuService(menuRepo models.MenuRepo, hub realtime.Broadcaster, logger *slog.Logger) *MenuService {
	return &MenuService{
		menuRepo: menuRepo,
		hub:      hub,
		logger:   logger,
	}
}

func (ms *MenuService) ListShops(ctx context.Context) ([]*models.Shop, error) {
	return ms.menuRepo.ListShops(ctx)
}

func (ms *MenuService) Menu(ctx context.Context, shopName string) ([]*models.MenuItem, error) {
	if shopName == "" {
		return nil, fmt.Errorf("shop is required")
	}
	return ms.menuRepo.ListMenu(ctx, shopName)
}

// SetShopOpen flips the storefront. A closed shop rejects new orders at
// checkout but keeps its queue visible to the vendor.
func (ms *MenuService) SetShopOpen(ctx context.Context, shopName string, open bool) error {
	if err := ms.menuRepo.SetShopOpen(ctx, shopName, open); err != nil {
		return err
	}
	ms.hub.Broadcast(models.ShopsTable, realtime.EventUpdate)
	return nil
}

type MenuItemInput struct {
	Name     string  `json:"name" validate:"required,min=2"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Category string  `json:"category" validate:"required"`
	IsVeg    bool    `json:"is_veg"`
}

func (ms *MenuService) AddItem(ctx context.Context, shopName string, input MenuItemInput) (*models.MenuItem, error) {
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid menu item provided: %v", err)
	}

	row := map[string]interface{}{
		"shop_name":    shopName,
		"name":         input.Name,
		"price":        input.Price,
		"category":     input.Category,
		"is_veg":       input.IsVeg,
		"is_available": true,
	}
	created, err := ms.menuRepo.InsertMenuItem(ctx, row)
	if err != nil {
		return nil, err
	}
	ms.hub.Broadcast(models.MenuItemsTable, realtime.EventInsert)
	return created, nil
}

func (ms *MenuService) UpdateItem(ctx context.Context, id uuid.UUID, input MenuItemInput) error {
	if id == uuid.Nil {
		return fmt.Errorf("invalid item ID")
	}
	if err := models.Validate.Struct(input); err != nil {
		return fmt.Errorf("invalid menu item provided: %v", err)
	}

	patch := map[string]interface{}{
		"name":     input.Name,
		"price":    input.Price,
		"category": input.Category,
		"is_veg":   input.IsVeg,
	}
	if err := ms.menuRepo.UpdateMenuItem(ctx, id, patch); err != nil {
		return err
	}
	ms.hub.Broadcast(models.MenuItemsTable, realtime.EventUpdate)
	return nil
}

func (ms *MenuService) ToggleAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	if id == uuid.Nil {
		return fmt.Errorf("invalid item ID")
	}
	if err := ms.menuRepo.UpdateMenuItem(ctx, id, map[string]interface{}{"is_available": available}); err != nil {
		return err
	}
	ms.hub.Broadcast(models.MenuItemsTable, realtime.EventUpdate)
	return nil
}

func (ms *MenuService) DeleteItem(ctx context.Context, shopName string, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("invalid item ID")
	}
	if err := ms.menuRepo.DeleteMenuItem(ctx, id, shopName); err != nil {
		return err
	}
	ms.hub.Broadcast(models.MenuItemsTable, realtime.EventDelete)
	return nil
}
