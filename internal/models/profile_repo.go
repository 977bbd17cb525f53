package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

type ProfileRepo interface {
	GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*Profile, error)
	UpdateProfile(ctx context.Context, patch map[string]interface{}, id uuid.UUID, accessToken string) (*Profile, error)
	CreditMana(ctx context.Context, userID uuid.UUID, delta int) error
	UploadIDCard(ctx context.Context, userID uuid.UUID, data []byte, accessToken string) (string, error)
	ListVerificationQueue(ctx context.Context) ([]*Profile, error)
	ListBanned(ctx context.Context) ([]*Profile, error)
	InsertWithdrawal(ctx context.Context, row map[string]interface{}) error
}

func unmarshalProfiles(raw []byte) ([]*Profile, error) {
	var rows []*Profile
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile rows: %v", err)
	}
	return rows, nil
}

func (su *SupabaseRepo) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}
	client := su.clientFor(accessToken)

	raw, _, err := client.From(ProfilesTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %v", err)
	}

	rows, err := unmarshalProfiles(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile not found")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	raw, _, err := su.supabaseClient.From(ProfilesTable).
		Select("*", "", false).
		Eq("email", email).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by email: %v", err)
	}

	rows, err := unmarshalProfiles(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile not found")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) UpdateProfile(ctx context.Context, patch map[string]interface{}, id uuid.UUID, accessToken string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	client := su.clientFor(accessToken)

	raw, count, err := client.From(ProfilesTable).
		Update(patch, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no profile found to update")
	}

	rows, err := unmarshalProfiles(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no profile data returned after update")
	}
	return rows[0], nil
}

// CreditMana increments the balance server-side via the increment_mana
// function, so concurrent credits cannot lose updates the way a
// read-then-write would.
func (su *SupabaseRepo) CreditMana(ctx context.Context, userID uuid.UUID, delta int) error {
	res := su.supabaseClient.Rpc("increment_mana", "", map[string]interface{}{
		"p_user_id": userID.String(),
		"p_delta":   delta,
	})
	if res == "" {
		return fmt.Errorf("failed to adjust mana balance")
	}
	return nil
}

func (su *SupabaseRepo) UploadIDCard(ctx context.Context, userID uuid.UUID, data []byte, accessToken string) (string, error) {
	client := su.clientFor(accessToken)

	contentType := "image/jpeg"
	upsert := true
	key := fmt.Sprintf("%s.jpg", userID.String())

	_, err := client.Storage.UploadFile(IDCardsBucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload ID card: %v", err)
	}

	publicURL := client.Storage.GetPublicUrl(IDCardsBucket, key).SignedURL
	return publicURL, nil
}

func (su *SupabaseRepo) ListVerificationQueue(ctx context.Context) ([]*Profile, error) {
	raw, _, err := su.supabaseClient.From(ProfilesTable).
		Select("*", "", false).
		Not("id_card_url", "is", "null").
		Eq("is_verified", "false").
		Eq("is_banned", "false").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list verification queue: %v", err)
	}
	return unmarshalProfiles(raw)
}

func (su *SupabaseRepo) ListBanned(ctx context.Context) ([]*Profile, error) {
	raw, _, err := su.supabaseClient.From(ProfilesTable).
		Select("*", "", false).
		Eq("is_banned", "true").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list banned profiles: %v", err)
	}
	return unmarshalProfiles(raw)
}

func (su *SupabaseRepo) InsertWithdrawal(ctx context.Context, row map[string]interface{}) error {
	_, _, err := su.supabaseClient.From(WithdrawalsTable).
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to record withdrawal: %v", err)
	}
	return nil
}
