package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	storage_go "github.com/supabase-community/storage-go"
)

type PrintRepo interface {
	GetPrintConfig(ctx context.Context) (PriceTable, error)
	UploadDocument(ctx context.Context, key string, data []byte, accessToken string) (string, error)
	CreatePrintOrder(ctx context.Context, row map[string]interface{}, accessToken string) (*PrintOrder, error)
	GetPrintOrder(ctx context.Context, id uuid.UUID) (*PrintOrder, error)
	UpdatePrintStatus(ctx context.Context, id uuid.UUID, status PrintStatus) error
	ListAllPrintOrders(ctx context.Context) ([]*PrintOrder, error)
	ListPrintOrdersByStudent(ctx context.Context, studentID uuid.UUID) ([]*PrintOrder, error)
}

func unmarshalPrintOrders(raw []byte) ([]*PrintOrder, error) {
	var rows []*PrintOrder
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal print order rows: %v", err)
	}
	return rows, nil
}

// GetPrintConfig loads the single print_config row (bw/color/coil/glass rates
// and the open flag), falling back to the defaults when a column is zero.
func (su *SupabaseRepo) GetPrintConfig(ctx context.Context) (PriceTable, error) {
	table := DefaultPriceTable()

	raw, _, err := su.supabaseClient.From(PrintConfigTable).
		Select("*", "", false).
		Single().
		Execute()
	if err != nil {
		return table, fmt.Errorf("failed to load print config: %v", err)
	}

	var cfg struct {
		BW     float64 `json:"bw"`
		Color  float64 `json:"color"`
		Coil   float64 `json:"coil"`
		Glass  float64 `json:"glass"`
		IsOpen *bool   `json:"is_open"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return table, fmt.Errorf("failed to unmarshal print config: %v", err)
	}

	if cfg.BW > 0 {
		table.A4BW = cfg.BW
	}
	if cfg.Color > 0 {
		table.A4Color = cfg.Color
	}
	if cfg.Coil > 0 {
		table.Binding[BindingSpiral] = cfg.Coil
	}
	if cfg.Glass > 0 {
		table.Binding[BindingGlass] = cfg.Glass
	}
	if cfg.IsOpen != nil {
		table.IsOpen = *cfg.IsOpen
	}
	return table, nil
}

func (su *SupabaseRepo) UploadDocument(ctx context.Context, key string, data []byte, accessToken string) (string, error) {
	client := su.clientFor(accessToken)

	contentType := "application/pdf"
	_, err := client.Storage.UploadFile(DocumentsBucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %v", err)
	}

	return client.Storage.GetPublicUrl(DocumentsBucket, key).SignedURL, nil
}

func (su *SupabaseRepo) CreatePrintOrder(ctx context.Context, row map[string]interface{}, accessToken string) (*PrintOrder, error) {
	client := su.clientFor(accessToken)

	raw, count, err := client.From(PrintOrdersTable).
		Insert(row, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("database error: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no print order row returned after insert")
	}

	rows, err := unmarshalPrintOrders(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no print order row returned after insert")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) GetPrintOrder(ctx context.Context, id uuid.UUID) (*PrintOrder, error) {
	raw, _, err := su.supabaseClient.From(PrintOrdersTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get print order: %v", err)
	}

	rows, err := unmarshalPrintOrders(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("print order not found")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) UpdatePrintStatus(ctx context.Context, id uuid.UUID, status PrintStatus) error {
	_, count, err := su.supabaseClient.From(PrintOrdersTable).
		Update(map[string]interface{}{"status": status}, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update print order: %v", err)
	}
	if count == 0 {
		return fmt.Errorf("no print order found to update")
	}
	return nil
}

func (su *SupabaseRepo) ListAllPrintOrders(ctx context.Context) ([]*PrintOrder, error) {
	raw, _, err := su.supabaseClient.From(PrintOrdersTable).
		Select("*, profiles:student_id(full_name, phone)", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list print orders: %v", err)
	}
	return unmarshalPrintOrders(raw)
}

func (su *SupabaseRepo) ListPrintOrdersByStudent(ctx context.Context, studentID uuid.UUID) ([]*PrintOrder, error) {
	raw, _, err := su.supabaseClient.From(PrintOrdersTable).
		Select("*", "", false).
		Eq("student_id", studentID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list print history: %v", err)
	}
	return unmarshalPrintOrders(raw)
}
