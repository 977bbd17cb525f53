package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/payment"
	"github.com/sujangowda077/sidequest-main/internal/push"
	"github.com/sujangowda077/sidequest-main/internal/realtime"
)

type PrintService struct {
	printRepo   models.PrintRepo
	profileRepo models.ProfileRepo
	push        push.Sender
	hub         realtime.Broadcaster
	adminEmail  string
	shopUpiID   string
	logger      *slog.Logger
}

func NewPrintService(printRepo models.PrintRepo, profileRepo models.ProfileRepo, sender push.Sender,
	hub realtime.Broadcaster, adminEmail, shopUpiID string, logger *slog.Logger) *PrintService {
	return &PrintService{
		printRepo:   printRepo,
		profileRepo: profileRepo,
		push:        sender,
		hub:         hub,
		adminEmail:  adminEmail,
		shopUpiID:   shopUpiID,
		logger:      logger,
	}
}

// PrintQuote carries the priced submission and its payment request.
type PrintQuote struct {
	Cost    float64         `json:"cost"`
	Payment payment.Request `json:"payment"`
}

// QuotePrint prices the submission against the live rate card. Pricing runs
// to completion before anything is uploaded, so a mixed file with no pages
// picked fails here, not halfway through an upload batch.
func (ps *PrintService) QuotePrint(ctx context.Context, student *models.Profile, files []models.FileSpec) (*PrintQuote, error) {
	if err := models.Gate(student); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("attach at least one file")
	}

	table, err := ps.printRepo.GetPrintConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !table.IsOpen {
		return nil, fmt.Errorf("the print shop is closed right now")
	}

	cost, err := table.OrderCost(files)
	if err != nil {
		return nil, err
	}

	return &PrintQuote{
		Cost:    cost,
		Payment: payment.NewRequest(ps.shopUpiID, "Print Shop", cost),
	}, nil
}

// FileUpload pairs a FileSpec index with its raw bytes.
type FileUpload struct {
	FileName string
	Data     []byte
}

type SubmitPrintInput struct {
	Files    []models.FileSpec
	Uploads  []FileUpload
	UTR      string
	FreeText string
	Amount   float64
}

// SubmitPrint validates payment, uploads the documents one by one, and
// persists the order. Uploads that succeeded before a later failure are left
// behind in storage; the order row is only written once every file is up.
func (ps *PrintService) SubmitPrint(ctx context.Context, student *models.Profile, input SubmitPrintInput, accessToken string) (*models.PrintOrder, error) {
	if err := models.Gate(student); err != nil {
		return nil, err
	}
	if len(input.Files) == 0 || len(input.Files) != len(input.Uploads) {
		return nil, fmt.Errorf("attach at least one file")
	}

	table, err := ps.printRepo.GetPrintConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !table.IsOpen {
		return nil, fmt.Errorf("the print shop is closed right now")
	}

	cost, err := table.OrderCost(input.Files)
	if err != nil {
		return nil, err
	}
	if err := payment.ValidateReference(input.UTR); err != nil {
		return nil, err
	}
	delta := input.Amount - cost
	if delta < 0.095 || delta > 0.995 {
		return nil, fmt.Errorf("payment amount does not match the print cost")
	}

	files := make([]models.FileSpec, len(input.Files))
	copy(files, input.Files)
	names := make([]string, 0, len(files))
	pageCounts := map[string]int{}

	for i := range files {
		up := input.Uploads[i]
		if len(up.Data) == 0 {
			return nil, fmt.Errorf("file %s is empty", up.FileName)
		}
		key := fmt.Sprintf("%s/%s-%s", student.ID, uuid.NewString(), up.FileName)
		url, err := ps.printRepo.UploadDocument(ctx, key, up.Data, accessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %v", up.FileName, err)
		}
		files[i].URL = url
		files[i].FileName = up.FileName
		names = append(names, up.FileName)
		pageCounts[up.FileName] = files[i].Pages
	}

	note := models.PaymentNote{Reference: input.UTR, FreeText: input.FreeText}

	row := map[string]interface{}{
		"student_id":   student.ID.String(),
		"file_details": files,
		"file_name":    strings.Join(names, ", "),
		// legacy single-file column, kept pointed at the first upload
		"file_url":       files[0].URL,
		"page_counts":    pageCounts,
		"copies":         files[0].Copies,
		"status":         string(models.PrintPending),
		"estimated_cost": input.Amount,
		"note":           note.Encode(),
		"color_mode":     string(files[0].ColorMode),
		"binding_type":   string(files[0].Binding),
	}

	created, err := ps.printRepo.CreatePrintOrder(ctx, row, accessToken)
	if err != nil {
		return nil, err
	}

	ps.notifyAdmin(ctx, "New print job",
		fmt.Sprintf("%s sent %d file(s), ₹%.2f.", student.FullName, len(files), input.Amount))
	ps.hub.Broadcast(models.PrintOrdersTable, realtime.EventInsert)
	return created, nil
}

func (ps *PrintService) notifyAdmin(ctx context.Context, title, body string) {
	if ps.adminEmail == "" {
		return
	}
	profile, err := ps.profileRepo.GetProfileByEmail(ctx, ps.adminEmail)
	if err != nil {
		ps.logger.Warn("print admin lookup failed", "error", err)
		return
	}
	push.Notify(ps.logger, ps.push.NotifyUser(ctx, profile.ID.String(), title, body))
}

// Queue is the admin view: every order, newest first.
func (ps *PrintService) Queue(ctx context.Context) ([]*models.PrintOrder, error) {
	return ps.printRepo.ListAllPrintOrders(ctx)
}

func (ps *PrintService) History(ctx context.Context, studentID uuid.UUID) ([]*models.PrintOrder, error) {
	if studentID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	return ps.printRepo.ListPrintOrdersByStudent(ctx, studentID)
}

// MarkDone completes a job and tells the student to come collect it.
func (ps *PrintService) MarkDone(ctx context.Context, orderID uuid.UUID) error {
	order, err := ps.printRepo.GetPrintOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.PrintPending {
		return fmt.Errorf("print order is already %s", order.Status)
	}

	if err := ps.printRepo.UpdatePrintStatus(ctx, orderID, models.PrintDone); err != nil {
		return err
	}

	push.Notify(ps.logger, ps.push.NotifyUser(ctx, order.StudentID.String(), "Prints ready!",
		fmt.Sprintf("Your print job (%s) is ready for collection.", order.FileName)))
	ps.hub.Broadcast(models.PrintOrdersTable, realtime.EventUpdate)
	return nil
}
