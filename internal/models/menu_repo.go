package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

type MenuRepo interface {
	GetShop(ctx context.Context, name string) (*Shop, error)
	ListShops(ctx context.Context) ([]*Shop, error)
	SetShopOpen(ctx context.Context, name string, open bool) error
	ListMenu(ctx context.Context, shopName string) ([]*MenuItem, error)
	InsertMenuItem(ctx context.Context, row map[string]interface{}) (*MenuItem, error)
	UpdateMenuItem(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error
	DeleteMenuItem(ctx context.Context, id uuid.UUID, shopName string) error
}

func (su *SupabaseRepo) GetShop(ctx context.Context, name string) (*Shop, error) {
	raw, _, err := su.supabaseClient.From(ShopsTable).
		Select("*", "", false).
		Eq("name", name).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %v", err)
	}

	var rows []*Shop
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shop rows: %v", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("shop not found")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) ListShops(ctx context.Context) ([]*Shop, error) {
	raw, _, err := su.supabaseClient.From(ShopsTable).
		Select("*", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %v", err)
	}

	var rows []*Shop
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shop rows: %v", err)
	}
	return rows, nil
}

func (su *SupabaseRepo) SetShopOpen(ctx context.Context, name string, open bool) error {
	_, count, err := su.supabaseClient.From(ShopsTable).
		Update(map[string]interface{}{"is_open": open}, "", "exact").
		Eq("name", name).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update shop: %v", err)
	}
	if count == 0 {
		return fmt.Errorf("no shop found to update")
	}
	return nil
}

func unmarshalMenuItems(raw []byte) ([]*MenuItem, error) {
	var rows []*MenuItem
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu rows: %v", err)
	}
	return rows, nil
}

func (su *SupabaseRepo) ListMenu(ctx context.Context, shopName string) ([]*MenuItem, error) {
	raw, _, err := su.supabaseClient.From(MenuItemsTable).
		Select("*", "", false).
		Eq("shop_name", shopName).
		Order("category", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %v", err)
	}
	return unmarshalMenuItems(raw)
}

func (su *SupabaseRepo) InsertMenuItem(ctx context.Context, row map[string]interface{}) (*MenuItem, error) {
	raw, count, err := su.supabaseClient.From(MenuItemsTable).
		Insert(row, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to add menu item: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no menu row returned after insert")
	}

	rows, err := unmarshalMenuItems(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no menu row returned after insert")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) UpdateMenuItem(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	_, count, err := su.supabaseClient.From(MenuItemsTable).
		Update(patch, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update menu item: %v", err)
	}
	if count == 0 {
		return fmt.Errorf("no menu item found to update")
	}
	return nil
}

// DeleteMenuItem is scoped to the owning shop so one vendor cannot remove
// another vendor's items.
func (su *SupabaseRepo) DeleteMenuItem(ctx context.Context, id uuid.UUID, shopName string) error {
	_, count, err := su.supabaseClient.From(MenuItemsTable).
		Delete("", "exact").
		Eq("id", id.String()).
		Eq("shop_name", shopName).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %v", err)
	}
	if count == 0 {
		return fmt.Errorf("no menu item found to delete")
	}
	return nil
}
