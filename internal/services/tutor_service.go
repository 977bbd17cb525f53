package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/payment"
	"github.com/sujangowda077/sidequest-main/internal/push"
	"github.com/sujangowda077/sidequest-main/internal/realtime"
)

type TutorService struct {
	tutorRepo models.TutorRepo
	push      push.Sender
	hub       realtime.Broadcaster
	logger    *slog.Logger
}

func NewTutorService(tutorRepo models.TutorRepo, sender push.Sender, hub realtime.Broadcaster, logger *slog.Logger) *TutorService {
	return &TutorService{
		tutorRepo: tutorRepo,
		push:      sender,
		hub:       hub,
		logger:    logger,
	}
}

type PostBountyInput struct {
	Category    string  `json:"category" validate:"required"`
	Title       string  `json:"title" validate:"required,min=3"`
	Description string  `json:"description"`
	OfferPrice  float64 `json:"offer_price" validate:"required,gt=0"`
}

// PostBounty publishes a help request to the whole campus. The completion
// code is generated here and only ever shown to the poster.
func (ts *TutorService) PostBounty(ctx context.Context, student *models.Profile, input PostBountyInput, accessToken string) (*models.TutorBounty, error) {
	if err := models.Gate(student); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid bounty data provided: %v", err)
	}
	if !models.IsBountyCategory(input.Category) {
		return nil, fmt.Errorf("unknown category %q", input.Category)
	}

	topic := models.BountyTopic{
		Category:    input.Category,
		Title:       input.Title,
		Description: input.Description,
	}

	row := map[string]interface{}{
		"student_id":     student.ID.String(),
		"topic":          topic.Encode(),
		"offer_price":    input.OfferPrice,
		"status":         string(models.BountyOpen),
		"completion_otp": models.NewOTP(),
	}

	created, err := ts.tutorRepo.CreateBounty(ctx, row, accessToken)
	if err != nil {
		return nil, err
	}

	push.Notify(ts.logger, ts.push.NotifyAll(ctx, "New bounty posted!",
		fmt.Sprintf("%s: %s for ₹%.0f", input.Category, input.Title, input.OfferPrice)))
	ts.hub.Broadcast(models.BountiesTable, realtime.EventInsert)
	return created, nil
}

// DeleteBounty removes an unclaimed bounty. The repo scopes the delete to the
// creator, so anyone else's attempt is a no-op that surfaces as not-yours.
func (ts *TutorService) DeleteBounty(ctx context.Context, student *models.Profile, id uuid.UUID) error {
	if student == nil {
		return models.ErrProfileLoading
	}
	bounty, err := ts.tutorRepo.GetBounty(ctx, id)
	if err != nil {
		return err
	}
	if bounty.Status != models.BountyOpen {
		return fmt.Errorf("a claimed bounty can't be deleted")
	}

	if err := ts.tutorRepo.DeleteBounty(ctx, id, student.ID); err != nil {
		return err
	}
	ts.hub.Broadcast(models.BountiesTable, realtime.EventDelete)
	return nil
}

// AcceptBounty lets a tutor take on someone else's open request.
func (ts *TutorService) AcceptBounty(ctx context.Context, tutor *models.Profile, id uuid.UUID) error {
	if err := models.Gate(tutor); err != nil {
		return err
	}
	bounty, err := ts.tutorRepo.GetBounty(ctx, id)
	if err != nil {
		return err
	}
	if bounty.StudentID == tutor.ID {
		return fmt.Errorf("you can't accept your own bounty")
	}
	if !bounty.Status.CanTransitionTo(models.BountyAccepted) {
		return fmt.Errorf("bounty is already %s", bounty.Status)
	}

	if err := ts.tutorRepo.UpdateBounty(ctx, id, map[string]interface{}{
		"tutor_id": tutor.ID.String(),
		"status":   string(models.BountyAccepted),
	}); err != nil {
		return err
	}

	push.Notify(ts.logger, ts.push.NotifyUser(ctx, bounty.StudentID.String(), "Tutor found!",
		fmt.Sprintf("%s accepted your bounty. They'll reach out soon.", tutor.FullName)))
	ts.hub.Broadcast(models.BountiesTable, realtime.EventUpdate)
	return nil
}

// VerifyCompletion is the tutor entering the code the student reads out when
// the session is done. An exact match moves the bounty to payment; a miss
// just returns an error, with no attempt counting.
func (ts *TutorService) VerifyCompletion(ctx context.Context, tutor *models.Profile, id uuid.UUID, otp string) error {
	if tutor == nil {
		return models.ErrProfileLoading
	}
	bounty, err := ts.tutorRepo.GetBounty(ctx, id)
	if err != nil {
		return err
	}
	if bounty.TutorID == nil || *bounty.TutorID != tutor.ID {
		return fmt.Errorf("this bounty is not yours")
	}
	if !bounty.Status.CanTransitionTo(models.BountyPaymentPending) {
		return fmt.Errorf("bounty is already %s", bounty.Status)
	}
	if otp == "" || otp != bounty.CompletionOTP {
		return fmt.Errorf("wrong code, ask the student for their 4-digit code")
	}

	if err := ts.tutorRepo.UpdateBounty(ctx, id, map[string]interface{}{
		"status": string(models.BountyPaymentPending),
	}); err != nil {
		return err
	}

	push.Notify(ts.logger, ts.push.NotifyUser(ctx, bounty.StudentID.String(), "Session complete",
		"Your tutor marked the session done. Time to settle up!"))
	ts.hub.Broadcast(models.BountiesTable, realtime.EventUpdate)
	return nil
}

// PayoutRequest builds the exact-amount payment request the poster scans to
// pay their tutor. No perturbation: the agreed price is the price.
func (ts *TutorService) PayoutRequest(ctx context.Context, student *models.Profile, id uuid.UUID) (*payment.Request, error) {
	if student == nil {
		return nil, models.ErrProfileLoading
	}
	bounty, err := ts.tutorRepo.GetBounty(ctx, id)
	if err != nil {
		return nil, err
	}
	if bounty.StudentID != student.ID {
		return nil, fmt.Errorf("this bounty is not yours")
	}
	if bounty.Status != models.BountyPaymentPending {
		return nil, fmt.Errorf("bounty is %s, nothing to pay yet", bounty.Status)
	}
	if bounty.Tutor == nil || bounty.Tutor.UpiID == "" {
		return nil, fmt.Errorf("tutor has no UPI ID on file")
	}

	req := payment.NewExactRequest(bounty.Tutor.UpiID, bounty.Tutor.FullName, bounty.OfferPrice)
	return &req, nil
}

// MarkPaid closes the bounty once the poster reports the transfer reference.
func (ts *TutorService) MarkPaid(ctx context.Context, student *models.Profile, id uuid.UUID, utr string) error {
	if student == nil {
		return models.ErrProfileLoading
	}
	if err := payment.ValidateReference(utr); err != nil {
		return err
	}
	bounty, err := ts.tutorRepo.GetBounty(ctx, id)
	if err != nil {
		return err
	}
	if bounty.StudentID != student.ID {
		return fmt.Errorf("this bounty is not yours")
	}
	if !bounty.Status.CanTransitionTo(models.BountyPaid) {
		return fmt.Errorf("bounty is already %s", bounty.Status)
	}

	if err := ts.tutorRepo.UpdateBounty(ctx, id, map[string]interface{}{
		"status": string(models.BountyPaid),
	}); err != nil {
		return err
	}

	if bounty.TutorID != nil {
		push.Notify(ts.logger, ts.push.NotifyUser(ctx, bounty.TutorID.String(), "You got paid!",
			fmt.Sprintf("₹%.0f received for the bounty. Well earned.", bounty.OfferPrice)))
	}
	ts.hub.Broadcast(models.BountiesTable, realtime.EventUpdate)
	return nil
}

// Market is the open-bounty board, minus the ids the viewer dismissed this
// session. The completion code belongs to the poster alone.
func (ts *TutorService) Market(ctx context.Context, viewer uuid.UUID, hidden map[uuid.UUID]bool) ([]*models.TutorBounty, error) {
	rows, err := ts.tutorRepo.ListBounties(ctx)
	if err != nil {
		return nil, err
	}
	out := models.MarketView(rows, hidden)
	hideOTP(out, viewer)
	return out, nil
}

// Activity lists the bounties the viewer posted or took on.
func (ts *TutorService) Activity(ctx context.Context, viewer uuid.UUID) ([]*models.TutorBounty, error) {
	rows, err := ts.tutorRepo.ListBounties(ctx)
	if err != nil {
		return nil, err
	}
	out := models.ActivityView(rows, viewer)
	hideOTP(out, viewer)
	return out, nil
}

func hideOTP(rows []*models.TutorBounty, viewer uuid.UUID) {
	for _, b := range rows {
		if b.StudentID != viewer {
			b.CompletionOTP = ""
		}
	}
}
