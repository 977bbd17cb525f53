package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

type PromoRepo interface {
	CreatePromotion(ctx context.Context, row map[string]interface{}) (*Promotion, error)
	DeletePromotion(ctx context.Context, id uuid.UUID, shopName string) error
	ListActivePromotions(ctx context.Context) ([]*Promotion, error)
}

func (su *SupabaseRepo) CreatePromotion(ctx context.Context, row map[string]interface{}) (*Promotion, error) {
	raw, count, err := su.supabaseClient.From(PromotionsTable).
		Insert(row, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to post ad: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no promotion row returned after insert")
	}

	var rows []*Promotion
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal promotion rows: %v", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no promotion row returned after insert")
	}
	return rows[0], nil
}

// DeletePromotion only matches ads belonging to the caller's shop.
func (su *SupabaseRepo) DeletePromotion(ctx context.Context, id uuid.UUID, shopName string) error {
	_, count, err := su.supabaseClient.From(PromotionsTable).
		Delete("", "exact").
		Eq("id", id.String()).
		Eq("shop_name", shopName).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete ad: %v", err)
	}
	if count == 0 {
		return fmt.Errorf("no ad found to delete")
	}
	return nil
}

func (su *SupabaseRepo) ListActivePromotions(ctx context.Context) ([]*Promotion, error) {
	raw, _, err := su.supabaseClient.From(PromotionsTable).
		Select("*", "", false).
		Eq("is_active", "true").
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %v", err)
	}

	var rows []*Promotion
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal promotion rows: %v", err)
	}
	return rows, nil
}
