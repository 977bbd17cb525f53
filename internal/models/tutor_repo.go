package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

// ErrNotBountyOwner is returned when a delete matched nothing: either the
// bounty is gone or the caller is not its creator.
var ErrNotBountyOwner = errors.New("bounty not found or not yours to remove")

type TutorRepo interface {
	CreateBounty(ctx context.Context, row map[string]interface{}, accessToken string) (*TutorBounty, error)
	GetBounty(ctx context.Context, id uuid.UUID) (*TutorBounty, error)
	UpdateBounty(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error
	DeleteBounty(ctx context.Context, id, studentID uuid.UUID) error
	ListBounties(ctx context.Context) ([]*TutorBounty, error)
}

const bountyColumns = "*, profiles:student_id(full_name, room_no, phone), tutor:tutor_id(full_name, upi_id, phone)"

func unmarshalBounties(raw []byte) ([]*TutorBounty, error) {
	var rows []*TutorBounty
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bounty rows: %v", err)
	}
	return rows, nil
}

func (su *SupabaseRepo) CreateBounty(ctx context.Context, row map[string]interface{}, accessToken string) (*TutorBounty, error) {
	client := su.clientFor(accessToken)

	raw, count, err := client.From(BountiesTable).
		Insert(row, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to post bounty: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no bounty row returned after insert")
	}

	rows, err := unmarshalBounties(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no bounty row returned after insert")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) GetBounty(ctx context.Context, id uuid.UUID) (*TutorBounty, error) {
	raw, _, err := su.supabaseClient.From(BountiesTable).
		Select(bountyColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get bounty: %v", err)
	}

	rows, err := unmarshalBounties(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("bounty not found")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) UpdateBounty(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	_, count, err := su.supabaseClient.From(BountiesTable).
		Update(patch, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update bounty: %v", err)
	}
	if count == 0 {
		return fmt.Errorf("no bounty found to update")
	}
	return nil
}

// DeleteBounty hard-deletes, but only when the requesting user is the
// creator: the student_id filter makes someone else's delete a no-op.
func (su *SupabaseRepo) DeleteBounty(ctx context.Context, id, studentID uuid.UUID) error {
	_, count, err := su.supabaseClient.From(BountiesTable).
		Delete("", "exact").
		Eq("id", id.String()).
		Eq("student_id", studentID.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete bounty: %v", err)
	}
	if count == 0 {
		return ErrNotBountyOwner
	}
	return nil
}

func (su *SupabaseRepo) ListBounties(ctx context.Context) ([]*TutorBounty, error) {
	raw, _, err := su.supabaseClient.From(BountiesTable).
		Select(bountyColumns, "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list bounties: %v", err)
	}
	return unmarshalBounties(raw)
}
