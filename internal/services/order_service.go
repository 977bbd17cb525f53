package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/config"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/payment"
	"github.com/sujangowda077/sidequest-main/internal/push"
	"github.com/sujangowda077/sidequest-main/internal/realtime"
)

const (
	MethodCash   = "cash"
	MethodOnline = "online"
)

type OrderService struct {
	errandRepo  models.ErrandRepo
	profileRepo models.ProfileRepo
	menuRepo    models.MenuRepo
	push        push.Sender
	hub         realtime.Broadcaster
	vendors     map[string]config.Vendor
	logger      *slog.Logger
}

func NewOrderService(errandRepo models.ErrandRepo, profileRepo models.ProfileRepo, menuRepo models.MenuRepo,
	sender push.Sender, hub realtime.Broadcaster, vendors map[string]config.Vendor, logger *slog.Logger) *OrderService {
	return &OrderService{
		errandRepo:  errandRepo,
		profileRepo: profileRepo,
		menuRepo:    menuRepo,
		push:        sender,
		hub:         hub,
		vendors:     vendors,
		logger:      logger,
	}
}

type OrderItem struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
	Qty    int       `json:"qty" validate:"required,min=1"`
}

type PlaceOrderInput struct {
	ShopName        string           `json:"shop_name" validate:"required"`
	OrderType       models.OrderType `json:"order_type" validate:"required,oneof=delivery takeaway dine_in"`
	Items           []OrderItem      `json:"items" validate:"required,min=1,dive"`
	Method          string           `json:"method" validate:"required,oneof=cash online"`
	UTR             string           `json:"utr"`
	Amount          float64          `json:"amount"`
	DeliveryAddress string           `json:"delivery_address"`
	RequestedTime   string           `json:"requested_time"`
}

// Quote is the pre-payment step: the priced cart, a payment request for the
// perturbed amount, and the schedulable time slots.
type Quote struct {
	Base      float64         `json:"base"`
	Payment   payment.Request `json:"payment"`
	TimeSlots []string        `json:"time_slots"`
}

// priceCart resolves the cart against the live menu and totals it. A closed
// shop or an unavailable item fails the whole order.
func (os *OrderService) priceCart(ctx context.Context, shopName string, items []OrderItem, orderType models.OrderType) ([]models.CartLine, float64, error) {
	shop, err := os.menuRepo.GetShop(ctx, shopName)
	if err != nil {
		return nil, 0, err
	}
	if !shop.IsOpen {
		return nil, 0, fmt.Errorf("%s is closed right now", shopName)
	}

	menu, err := os.menuRepo.ListMenu(ctx, shopName)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]*models.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	lines := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		m, ok := byID[it.ItemID]
		if !ok {
			return nil, 0, fmt.Errorf("item not on the menu")
		}
		if !m.IsAvailable {
			return nil, 0, fmt.Errorf("%s is sold out", m.Name)
		}
		lines = append(lines, models.CartLine{Item: *m, Qty: it.Qty})
	}

	return lines, models.OrderTotal(lines, orderType), nil
}

// QuoteOrder prices the cart and issues the payment request the client shows
// before anything is persisted.
func (os *OrderService) QuoteOrder(ctx context.Context, student *models.Profile, shopName string, items []OrderItem, orderType models.OrderType) (*Quote, error) {
	if err := models.Gate(student); err != nil {
		return nil, err
	}

	vendor, ok := os.vendors[shopName]
	if !ok {
		return nil, fmt.Errorf("unknown shop %q", shopName)
	}

	_, base, err := os.priceCart(ctx, shopName, items, orderType)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Base:      base,
		Payment:   payment.NewRequest(vendor.UpiID, shopName, base),
		TimeSlots: models.GenerateTimeSlots(time.Now()),
	}, nil
}

// PlaceOrder persists the order after the payment step. The server re-prices
// the cart and only accepts an online amount that is the base plus a valid
// perturbation, so the client cannot shave the total.
func (os *OrderService) PlaceOrder(ctx context.Context, student *models.Profile, input PlaceOrderInput, accessToken string) (*models.Errand, error) {
	if err := models.Gate(student); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid order data provided: %v", err)
	}
	if input.OrderType == models.OrderDelivery && input.DeliveryAddress == "" {
		return nil, fmt.Errorf("delivery address is required")
	}

	lines, base, err := os.priceCart(ctx, input.ShopName, input.Items, input.OrderType)
	if err != nil {
		return nil, err
	}

	amount := base
	if input.Method == MethodOnline {
		if err := payment.ValidateReference(input.UTR); err != nil {
			return nil, err
		}
		delta := input.Amount - base
		if delta < 0.095 || delta > 0.995 {
			return nil, fmt.Errorf("payment amount does not match the order total")
		}
		amount = input.Amount
	}

	token, tokenStr := models.NewOrderToken()
	otp := ""
	if input.OrderType == models.OrderDelivery {
		otp = models.NewOTP()
	}

	summary := models.OrderSummary{
		Token:  token,
		Type:   input.OrderType,
		Method: input.Method,
	}
	if input.Method == MethodOnline {
		summary.UTR = input.UTR
	}
	for _, l := range lines {
		summary.LineItems = append(summary.LineItems, models.LineItem{Qty: l.Qty, Name: l.Item.Name})
	}

	requested := input.RequestedTime
	if requested == "" {
		requested = models.RequestedASAP
	}

	row := map[string]interface{}{
		"student_id":       student.ID.String(),
		"shop_name":        input.ShopName,
		"item_description": summary.Encode(),
		"order_type":       string(input.OrderType),
		"status":           string(models.StatusPendingApproval),
		"token_no":         tokenStr,
		"delivery_address": input.DeliveryAddress,
		"delivery_otp":     otp,
		"estimated_cost":   amount,
		"requested_time":   requested,
	}

	created, err := os.errandRepo.CreateErrand(ctx, row, accessToken)
	if err != nil {
		return nil, err
	}

	// Scheduled orders get their vendor push from the scheduler once the
	// requested time comes into the prep window.
	if models.IsTimeReady(requested, time.Now()) {
		os.notifyVendor(ctx, input.ShopName, "New order "+tokenStr,
			fmt.Sprintf("%s placed a %s order.", student.FullName, input.OrderType))
	}
	os.hub.Broadcast(models.ErrandsTable, realtime.EventInsert)
	return created, nil
}

func (os *OrderService) notifyVendor(ctx context.Context, shopName, title, body string) {
	vendor, ok := os.vendors[shopName]
	if !ok {
		return
	}
	profile, err := os.profileRepo.GetProfileByEmail(ctx, vendor.Email)
	if err != nil {
		os.logger.Warn("vendor profile lookup failed", "shop", shopName, "error", err)
		return
	}
	push.Notify(os.logger, os.push.NotifyUser(ctx, profile.ID.String(), title, body))
}

// NotifyVendorOrderReady is the scheduler's hook for a scheduled order whose
// requested time just came into the prep window.
func (os *OrderService) NotifyVendorOrderReady(ctx context.Context, e *models.Errand) {
	os.notifyVendor(ctx, e.ShopName, "Scheduled order "+e.TokenNo,
		fmt.Sprintf("Order %s is due at %s, time to start.", e.TokenNo, e.RequestedTime))
}

// --- vendor transitions ---

func (os *OrderService) ownedByShop(ctx context.Context, shopName string, orderID uuid.UUID) (*models.Errand, error) {
	order, err := os.errandRepo.GetErrand(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ShopName != shopName {
		return nil, fmt.Errorf("order does not belong to your shop")
	}
	return order, nil
}

// VendorAccept moves a pending order into preparation. Delivery orders go
// straight onto the runner board as "open"; everything else starts "cooking".
// Acceptance is also the moment the student earns their mana roll.
func (os *OrderService) VendorAccept(ctx context.Context, shopName string, orderID uuid.UUID) (*models.Errand, error) {
	order, err := os.ownedByShop(ctx, shopName, orderID)
	if err != nil {
		return nil, err
	}

	next := models.AcceptedStatus(order.OrderType)
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("order is already %s", order.Status)
	}
	if err := os.errandRepo.UpdateErrandStatus(ctx, orderID, next); err != nil {
		return nil, err
	}
	order.Status = next

	mana := models.NewManaReward()
	if err := os.profileRepo.CreditMana(ctx, order.StudentID, mana); err != nil {
		os.logger.Warn("mana credit failed", "order_id", orderID, "error", err)
	}

	push.Notify(os.logger, os.push.NotifyUser(ctx, order.StudentID.String(), "Order accepted!",
		fmt.Sprintf("%s accepted order %s. +%d mana!", shopName, order.TokenNo, mana)))
	os.hub.Broadcast(models.ErrandsTable, realtime.EventUpdate)
	return order, nil
}

func (os *OrderService) VendorReject(ctx context.Context, shopName string, orderID uuid.UUID) error {
	order, err := os.ownedByShop(ctx, shopName, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(models.StatusCancelled) {
		return fmt.Errorf("order is already %s", order.Status)
	}
	if err := os.errandRepo.UpdateErrandStatus(ctx, orderID, models.StatusCancelled); err != nil {
		return err
	}

	push.Notify(os.logger, os.push.NotifyUser(ctx, order.StudentID.String(), "Order cancelled",
		fmt.Sprintf("%s couldn't take order %s. Any payment will be refunded.", shopName, order.TokenNo)))
	os.hub.Broadcast(models.ErrandsTable, realtime.EventUpdate)
	return nil
}

func (os *OrderService) VendorReady(ctx context.Context, shopName string, orderID uuid.UUID) error {
	order, err := os.ownedByShop(ctx, shopName, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(models.StatusReady) {
		return fmt.Errorf("order is already %s", order.Status)
	}
	if err := os.errandRepo.UpdateErrandStatus(ctx, orderID, models.StatusReady); err != nil {
		return err
	}

	body := fmt.Sprintf("Order %s is ready for pickup!", order.TokenNo)
	if order.OrderType == models.OrderDelivery {
		body = fmt.Sprintf("Order %s is packed and waiting for your runner.", order.TokenNo)
	}
	push.Notify(os.logger, os.push.NotifyUser(ctx, order.StudentID.String(), "Order ready", body))
	os.hub.Broadcast(models.ErrandsTable, realtime.EventUpdate)
	return nil
}

// MarkPickedUp closes out a takeaway or dine-in order at the counter.
func (os *OrderService) MarkPickedUp(ctx context.Context, shopName string, orderID uuid.UUID) error {
	order, err := os.ownedByShop(ctx, shopName, orderID)
	if err != nil {
		return err
	}
	if order.OrderType == models.OrderDelivery {
		return fmt.Errorf("delivery orders are completed by the runner")
	}
	if !order.Status.CanTransitionTo(models.StatusPickedUp) {
		return fmt.Errorf("order is already %s", order.Status)
	}
	if err := os.errandRepo.UpdateErrandStatus(ctx, orderID, models.StatusPickedUp); err != nil {
		return err
	}
	os.hub.Broadcast(models.ErrandsTable, realtime.EventUpdate)
	return nil
}

// --- runner flow ---

// ClaimDelivery assigns an open delivery to a runner. The repo write is
// conditional, so the second of two racing runners gets ErrAlreadyClaimed and
// no notification fires for them.
func (os *OrderService) ClaimDelivery(ctx context.Context, runner *models.Profile, orderID uuid.UUID) error {
	if err := models.Gate(runner); err != nil {
		return err
	}
	order, err := os.errandRepo.GetErrand(ctx, orderID)
	if err != nil {
		return err
	}
	if order.StudentID == runner.ID {
		return fmt.Errorf("you can't run your own order")
	}

	if err := os.errandRepo.ClaimErrand(ctx, orderID, runner.ID); err != nil {
		return err
	}

	push.Notify(os.logger, os.push.NotifyUser(ctx, order.StudentID.String(), "Runner found!",
		fmt.Sprintf("%s is picking up order %s.", runner.FullName, order.TokenNo)))
	os.hub.Broadcast(models.ErrandsTable, realtime.EventUpdate)
	return nil
}

// CompleteDelivery finishes a run. The student reads their 4-digit code to
// the runner at the door; only an exact match completes the order.
func (os *OrderService) CompleteDelivery(ctx context.Context, runner *models.Profile, orderID uuid.UUID, otp string) error {
	if err := models.Gate(runner); err != nil {
		return err
	}
	order, err := os.errandRepo.GetErrand(ctx, orderID)
	if err != nil {
		return err
	}
	if order.RunnerID == nil || *order.RunnerID != runner.ID {
		return fmt.Errorf("this delivery is not yours")
	}
	if !order.Status.CanTransitionTo(models.StatusDelivered) {
		return fmt.Errorf("order is not ready yet")
	}
	if otp == "" || otp != order.DeliveryOTP {
		return fmt.Errorf("wrong delivery code, ask the student for their 4-digit code")
	}

	if err := os.errandRepo.UpdateErrandStatus(ctx, orderID, models.StatusDelivered); err != nil {
		return err
	}

	push.Notify(os.logger, os.push.NotifyUser(ctx, order.StudentID.String(), "Delivered!",
		fmt.Sprintf("Order %s has been delivered. Enjoy!", order.TokenNo)))
	os.hub.Broadcast(models.ErrandsTable, realtime.EventUpdate)
	return nil
}

// ResolveCancelled is the student acknowledging a cancelled order, clearing
// it off their active list.
func (os *OrderService) ResolveCancelled(ctx context.Context, student *models.Profile, orderID uuid.UUID) error {
	if student == nil {
		return models.ErrProfileLoading
	}
	order, err := os.errandRepo.GetErrand(ctx, orderID)
	if err != nil {
		return err
	}
	if order.StudentID != student.ID {
		return fmt.Errorf("this order is not yours")
	}
	if !order.Status.CanTransitionTo(models.StatusResolved) {
		return fmt.Errorf("only cancelled orders can be dismissed")
	}
	if err := os.errandRepo.UpdateErrandStatus(ctx, orderID, models.StatusResolved); err != nil {
		return err
	}
	os.hub.Broadcast(models.ErrandsTable, realtime.EventUpdate)
	return nil
}

// --- lists ---

// ShopOrders is the vendor queue. Scheduled orders stay hidden until their
// requested time enters the prep window.
func (os *OrderService) ShopOrders(ctx context.Context, shopName string) ([]*models.Errand, error) {
	rows, err := os.errandRepo.ListByShop(ctx, shopName)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*models.Errand, 0, len(rows))
	for _, r := range rows {
		if r.Status == models.StatusPendingApproval && !models.IsTimeReady(r.RequestedTime, now) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// LiveBoard is the campus token board: every order being prepared, plus
// finished ones lingering a few minutes so students see their token called.
func (os *OrderService) LiveBoard(ctx context.Context) ([]*models.Errand, error) {
	rows, err := os.errandRepo.ListLiveBoard(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*models.Errand, 0, len(rows))
	for _, r := range rows {
		if r.Status.IsTerminal() && now.Sub(r.UpdatedAt) > models.LiveBoardWindow {
			continue
		}
		r.DeliveryOTP = ""
		out = append(out, r)
	}
	return out, nil
}

func (os *OrderService) MyOrders(ctx context.Context, studentID uuid.UUID) ([]*models.Errand, error) {
	if studentID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	return os.errandRepo.ListByStudent(ctx, studentID)
}

// AvailableDeliveries is the runner board. The delivery code is the
// student's secret, so it never leaves the server here.
func (os *OrderService) AvailableDeliveries(ctx context.Context, runner *models.Profile) ([]*models.Errand, error) {
	if err := models.Gate(runner); err != nil {
		return nil, err
	}
	rows, err := os.errandRepo.ListAvailableDeliveries(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		r.DeliveryOTP = ""
	}
	return rows, nil
}

func (os *OrderService) ActiveRuns(ctx context.Context, runner *models.Profile) ([]*models.Errand, error) {
	if err := models.Gate(runner); err != nil {
		return nil, err
	}
	rows, err := os.errandRepo.ListActiveByRunner(ctx, runner.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		r.DeliveryOTP = ""
	}
	return rows, nil
}

// --- runner payouts ---

// RunnerDue is one runner's outstanding settlement with a shop.
type RunnerDue struct {
	RunnerID   uuid.UUID `json:"runner_id"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	UpiID      string    `json:"upi_id"`
	Deliveries int       `json:"deliveries"`
	Amount     float64   `json:"amount"`
}

// UnpaidRunners aggregates delivered-but-unsettled runs per runner at the
// flat per-delivery payout.
func (os *OrderService) UnpaidRunners(ctx context.Context, shopName string) ([]RunnerDue, error) {
	rows, err := os.errandRepo.ListUnpaidDeliveries(ctx, shopName)
	if err != nil {
		return nil, err
	}

	byRunner := map[uuid.UUID]*RunnerDue{}
	order := []uuid.UUID{}
	for _, r := range rows {
		if r.RunnerID == nil {
			continue
		}
		due, ok := byRunner[*r.RunnerID]
		if !ok {
			due = &RunnerDue{RunnerID: *r.RunnerID}
			if r.Runner != nil {
				due.FullName = r.Runner.FullName
				due.Phone = r.Runner.Phone
				due.UpiID = r.Runner.UpiID
			}
			byRunner[*r.RunnerID] = due
			order = append(order, *r.RunnerID)
		}
		due.Deliveries++
		due.Amount += models.RunnerPayout
	}

	out := make([]RunnerDue, 0, len(order))
	for _, id := range order {
		out = append(out, *byRunner[id])
	}
	return out, nil
}

// RunnerPayoutRequest builds the exact-amount payment request a vendor scans
// to settle one runner.
func (os *OrderService) RunnerPayoutRequest(ctx context.Context, shopName string, runnerID uuid.UUID) (*payment.Request, error) {
	dues, err := os.UnpaidRunners(ctx, shopName)
	if err != nil {
		return nil, err
	}
	for _, d := range dues {
		if d.RunnerID == runnerID {
			if d.UpiID == "" {
				return nil, fmt.Errorf("runner has no UPI ID on file")
			}
			req := payment.NewExactRequest(d.UpiID, d.FullName, d.Amount)
			return &req, nil
		}
	}
	return nil, fmt.Errorf("nothing owed to this runner")
}

// SettleRunner records the payout proof against every delivered, unpaid run
// of the runner in one shot.
func (os *OrderService) SettleRunner(ctx context.Context, shopName string, runnerID uuid.UUID, utr string) error {
	if err := payment.ValidateReference(utr); err != nil {
		return err
	}
	count, err := os.errandRepo.MarkRunnerPaid(ctx, runnerID, utr)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("nothing owed to this runner")
	}

	push.Notify(os.logger, os.push.NotifyUser(ctx, runnerID.String(), "Payout sent",
		fmt.Sprintf("%s settled %d deliveries (₹%.0f).", shopName, count, float64(count)*models.RunnerPayout)))
	os.hub.Broadcast(models.ErrandsTable, realtime.EventUpdate)
	return nil
}

// PlatformDues totals the per-order platform fee a shop owes for completed
// orders.
func (os *OrderService) PlatformDues(ctx context.Context, shopName string) (float64, error) {
	rows, err := os.errandRepo.ListByShop(ctx, shopName)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, r := range rows {
		if r.Status == models.StatusDelivered || r.Status == models.StatusPickedUp {
			total += models.PlatformFee
		}
	}
	return total, nil
}
