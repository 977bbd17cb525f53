package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/push"
	"github.com/sujangowda077/sidequest-main/internal/realtime"
)

// MinWithdrawal is the smallest mana balance a student may cash out.
const MinWithdrawal = 1000

type ProfileService struct {
	profileRepo models.ProfileRepo
	push        push.Sender
	hub         realtime.Broadcaster
	logger      *slog.Logger
}

func NewProfileService(profileRepo models.ProfileRepo, sender push.Sender, hub realtime.Broadcaster, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		push:        sender,
		hub:         hub,
		logger:      logger,
	}
}

func (ps *ProfileService) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*models.Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	return ps.profileRepo.GetProfile(ctx, id, accessToken)
}

// UpdateProfileInput is the self-service editable subset. Verification and
// ban flags are admin-only and deliberately absent.
type UpdateProfileInput struct {
	FullName      *string `json:"full_name" validate:"omitempty,min=2"`
	Phone         *string `json:"phone" validate:"omitempty,min=10,max=13"`
	RecoveryEmail *string `json:"recovery_email" validate:"omitempty,email"`
	UpiID         *string `json:"upi_id"`
	RoomNo        *string `json:"room_no"`
	HasOnboarded  *bool   `json:"has_onboarded"`
}

func (ps *ProfileService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput, accessToken string) (*models.Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid profile data provided: %v", err)
	}

	patch := map[string]interface{}{}
	if input.FullName != nil {
		patch["full_name"] = *input.FullName
	}
	if input.Phone != nil {
		patch["phone"] = *input.Phone
	}
	if input.RecoveryEmail != nil {
		patch["recovery_email"] = *input.RecoveryEmail
	}
	if input.UpiID != nil {
		patch["upi_id"] = *input.UpiID
	}
	if input.RoomNo != nil {
		patch["room_no"] = *input.RoomNo
	}
	if input.HasOnboarded != nil {
		patch["has_onboarded"] = *input.HasOnboarded
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	return ps.profileRepo.UpdateProfile(ctx, patch, id, accessToken)
}

// UploadIDCard stores the student ID photo and stamps the profile with its
// URL. A banned account cannot re-submit, and an already verified account has
// no reason to: re-uploading would silently drop it back into the queue.
func (ps *ProfileService) UploadIDCard(ctx context.Context, profile *models.Profile, data []byte, accessToken string) (*models.Profile, error) {
	if profile == nil {
		return nil, models.ErrProfileLoading
	}
	if profile.IsBanned {
		return nil, models.ErrBanned
	}
	if profile.IsVerified {
		return nil, fmt.Errorf("your ID is already verified")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}

	url, err := ps.profileRepo.UploadIDCard(ctx, profile.ID, data, accessToken)
	if err != nil {
		return nil, err
	}

	updated, err := ps.profileRepo.UpdateProfile(ctx, map[string]interface{}{"id_card_url": url}, profile.ID, accessToken)
	if err != nil {
		return nil, err
	}

	ps.hub.Broadcast(models.ProfilesTable, realtime.EventUpdate)
	return updated, nil
}

// --- admin verification queue ---

func (ps *ProfileService) VerificationQueue(ctx context.Context) ([]*models.Profile, error) {
	return ps.profileRepo.ListVerificationQueue(ctx)
}

func (ps *ProfileService) BannedList(ctx context.Context) ([]*models.Profile, error) {
	return ps.profileRepo.ListBanned(ctx)
}

func (ps *ProfileService) Verify(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("invalid user ID")
	}
	if _, err := ps.profileRepo.UpdateProfile(ctx, map[string]interface{}{"is_verified": true}, id, ""); err != nil {
		return err
	}

	push.Notify(ps.logger, ps.push.NotifyUser(ctx, id.String(), "You're verified!", "Your student ID was approved. The whole marketplace is open to you now."))
	ps.hub.Broadcast(models.ProfilesTable, realtime.EventUpdate)
	return nil
}

func (ps *ProfileService) Ban(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("invalid user ID")
	}
	if _, err := ps.profileRepo.UpdateProfile(ctx, map[string]interface{}{"is_banned": true}, id, ""); err != nil {
		return err
	}
	ps.hub.Broadcast(models.ProfilesTable, realtime.EventUpdate)
	return nil
}

func (ps *ProfileService) Unban(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("invalid user ID")
	}
	if _, err := ps.profileRepo.UpdateProfile(ctx, map[string]interface{}{"is_banned": false}, id, ""); err != nil {
		return err
	}
	ps.hub.Broadcast(models.ProfilesTable, realtime.EventUpdate)
	return nil
}

// --- mana ---

// Withdraw debits the requested mana and records a withdrawal for manual
// settlement. The debit goes through the same server-side increment as
// credits, so it cannot race an order acceptance.
func (ps *ProfileService) Withdraw(ctx context.Context, profile *models.Profile, amount int) error {
	if err := models.Gate(profile); err != nil {
		return err
	}
	if amount < MinWithdrawal {
		return fmt.Errorf("minimum withdrawal is %d mana", MinWithdrawal)
	}
	if profile.ManaBalance < amount {
		return fmt.Errorf("not enough mana: you have %d", profile.ManaBalance)
	}
	if profile.UpiID == "" {
		return fmt.Errorf("add your UPI ID to your profile first")
	}

	if err := ps.profileRepo.CreditMana(ctx, profile.ID, -amount); err != nil {
		return err
	}

	if err := ps.profileRepo.InsertWithdrawal(ctx, map[string]interface{}{
		"user_id": profile.ID.String(),
		"amount":  amount,
		"upi_id":  profile.UpiID,
		"status":  "pending",
	}); err != nil {
		return err
	}

	ps.logger.Info("withdrawal requested", "user_id", profile.ID, "amount", amount)
	ps.hub.Broadcast(models.ProfilesTable, realtime.EventUpdate)
	return nil
}
