package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

// ErrAlreadyClaimed is the optimistic-concurrency outcome of a runner claim
// that raced another runner: the conditional update touched zero rows.
var ErrAlreadyClaimed = errors.New("delivery already taken by another runner")

type ErrandRepo interface {
	CreateErrand(ctx context.Context, row map[string]interface{}, accessToken string) (*Errand, error)
	GetErrand(ctx context.Context, id uuid.UUID) (*Errand, error)
	UpdateErrandStatus(ctx context.Context, id uuid.UUID, status ErrandStatus) error
	ClaimErrand(ctx context.Context, id, runnerID uuid.UUID) error
	ListByShop(ctx context.Context, shopName string) ([]*Errand, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Errand, error)
	ListAvailableDeliveries(ctx context.Context) ([]*Errand, error)
	ListActiveByRunner(ctx context.Context, runnerID uuid.UUID) ([]*Errand, error)
	ListUnpaidDeliveries(ctx context.Context, shopName string) ([]*Errand, error)
	MarkRunnerPaid(ctx context.Context, runnerID uuid.UUID, proof string) (int64, error)
	ListScheduledPending(ctx context.Context) ([]*Errand, error)
	ListLiveBoard(ctx context.Context) ([]*Errand, error)
}

const errandColumns = "*, profiles:student_id(full_name, phone, upi_id)"

func unmarshalErrands(raw []byte) ([]*Errand, error) {
	var rows []*Errand
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal errand rows: %v", err)
	}
	return rows, nil
}

func (su *SupabaseRepo) CreateErrand(ctx context.Context, row map[string]interface{}, accessToken string) (*Errand, error) {
	client := su.clientFor(accessToken)

	raw, count, err := client.From(ErrandsTable).
		Insert(row, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to save order: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no order row returned after insert")
	}

	rows, err := unmarshalErrands(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no order row returned after insert")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) GetErrand(ctx context.Context, id uuid.UUID) (*Errand, error) {
	raw, _, err := su.supabaseClient.From(ErrandsTable).
		Select(errandColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %v", err)
	}

	rows, err := unmarshalErrands(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("order not found")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) UpdateErrandStatus(ctx context.Context, id uuid.UUID, status ErrandStatus) error {
	_, count, err := su.supabaseClient.From(ErrandsTable).
		Update(map[string]interface{}{"status": status}, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update order status: %v", err)
	}
	if count == 0 {
		return fmt.Errorf("no order found to update")
	}
	return nil
}

// ClaimErrand is the one conditional write in the system: it only matches an
// unclaimed delivery order still in a claimable status. A racing claim sees
// zero affected rows and gets ErrAlreadyClaimed.
func (su *SupabaseRepo) ClaimErrand(ctx context.Context, id, runnerID uuid.UUID) error {
	_, count, err := su.supabaseClient.From(ErrandsTable).
		Update(map[string]interface{}{"runner_id": runnerID.String()}, "", "exact").
		Eq("id", id.String()).
		Is("runner_id", "null").
		Eq("order_type", string(OrderDelivery)).
		In("status", []string{string(StatusCooking), string(StatusReady)}).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to claim delivery: %v", err)
	}
	if count == 0 {
		return ErrAlreadyClaimed
	}
	return nil
}

func (su *SupabaseRepo) ListByShop(ctx context.Context, shopName string) ([]*Errand, error) {
	raw, _, err := su.supabaseClient.From(ErrandsTable).
		Select(errandColumns, "", false).
		Eq("shop_name", shopName).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list shop orders: %v", err)
	}
	return unmarshalErrands(raw)
}

func (su *SupabaseRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Errand, error) {
	raw, _, err := su.supabaseClient.From(ErrandsTable).
		Select("*", "", false).
		Eq("student_id", studentID.String()).
		Neq("status", string(StatusResolved)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %v", err)
	}
	return unmarshalErrands(raw)
}

func (su *SupabaseRepo) ListAvailableDeliveries(ctx context.Context) ([]*Errand, error) {
	raw, _, err := su.supabaseClient.From(ErrandsTable).
		Select("*, profiles:student_id(full_name, phone, upi_id)", "", false).
		Is("runner_id", "null").
		Eq("order_type", string(OrderDelivery)).
		In("status", []string{string(StatusCooking), string(StatusReady)}).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list available deliveries: %v", err)
	}
	return unmarshalErrands(raw)
}

func (su *SupabaseRepo) ListActiveByRunner(ctx context.Context, runnerID uuid.UUID) ([]*Errand, error) {
	raw, _, err := su.supabaseClient.From(ErrandsTable).
		Select(errandColumns, "", false).
		Eq("runner_id", runnerID.String()).
		Eq("order_type", string(OrderDelivery)).
		Neq("status", string(StatusCancelled)).
		Neq("status", string(StatusDelivered)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list runner deliveries: %v", err)
	}
	return unmarshalErrands(raw)
}

func (su *SupabaseRepo) ListUnpaidDeliveries(ctx context.Context, shopName string) ([]*Errand, error) {
	raw, _, err := su.supabaseClient.From(ErrandsTable).
		Select("runner_id, runner:runner_id(full_name, phone, upi_id)", "", false).
		Eq("shop_name", shopName).
		Eq("status", string(StatusDelivered)).
		Eq("order_type", string(OrderDelivery)).
		Eq("is_payout_complete", "false").
		Not("runner_id", "is", "null").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid deliveries: %v", err)
	}
	return unmarshalErrands(raw)
}

// MarkRunnerPaid settles every delivered, unpaid delivery of one runner in a
// single update, recording the UTR proof. Returns how many rows it settled.
func (su *SupabaseRepo) MarkRunnerPaid(ctx context.Context, runnerID uuid.UUID, proof string) (int64, error) {
	_, count, err := su.supabaseClient.From(ErrandsTable).
		Update(map[string]interface{}{
			"payout_proof_url":   proof,
			"is_payout_complete": true,
		}, "", "exact").
		Eq("runner_id", runnerID.String()).
		Eq("status", string(StatusDelivered)).
		Eq("is_payout_complete", "false").
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to record runner payout: %v", err)
	}
	return count, nil
}

// ListLiveBoard feeds the campus token board: everything in preparation plus
// the recently finished orders. The service trims finished orders past their
// linger window.
func (su *SupabaseRepo) ListLiveBoard(ctx context.Context) ([]*Errand, error) {
	raw, _, err := su.supabaseClient.From(ErrandsTable).
		Select("*", "", false).
		In("status", []string{
			string(StatusCooking), string(StatusReady),
			string(StatusPickedUp), string(StatusDelivered),
		}).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list live orders: %v", err)
	}
	return unmarshalErrands(raw)
}

// ListScheduledPending feeds the scheduler: pending orders carrying a real
// requested time, across all shops.
func (su *SupabaseRepo) ListScheduledPending(ctx context.Context) ([]*Errand, error) {
	raw, _, err := su.supabaseClient.From(ErrandsTable).
		Select("*", "", false).
		Eq("status", string(StatusPendingApproval)).
		Neq("requested_time", RequestedASAP).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled orders: %v", err)
	}
	return unmarshalErrands(raw)
}
