package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/config"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/realtime"
)

type orderFixture struct {
	svc       *OrderService
	errands   *fakeErrandRepo
	profiles  *fakeProfileRepo
	menu      *fakeMenuRepo
	rec       *pushRecorder
	milkshake *models.MenuItem
	biryani   *models.MenuItem
	vendor    *models.Profile
}

func newOrderFixture() *orderFixture {
	errands := newFakeErrandRepo()
	profiles := newFakeProfileRepo()
	rec := &pushRecorder{}

	milkshake := &models.MenuItem{ID: uuid.New(), ShopName: "Night Canteen", Name: "Oreo Milkshake", Price: 30, Category: "Milkshakes", IsAvailable: true}
	biryani := &models.MenuItem{ID: uuid.New(), ShopName: "Night Canteen", Name: "Veg Biryani", Price: 25, Category: "Rice", IsAvailable: true}
	menu := &fakeMenuRepo{
		shop: &models.Shop{Name: "Night Canteen", IsOpen: true},
		menu: []*models.MenuItem{milkshake, biryani},
	}

	vendor := profiles.add(&models.Profile{Email: "canteen@campus.edu", FullName: "Canteen Staff"})
	vendors := map[string]config.Vendor{
		"Night Canteen": {Email: "canteen@campus.edu", UpiID: "canteen@upi"},
	}

	svc := NewOrderService(errands, profiles, menu, rec, realtime.NopBroadcaster{}, vendors, testLogger())
	return &orderFixture{svc: svc, errands: errands, profiles: profiles, menu: menu, rec: rec,
		milkshake: milkshake, biryani: biryani, vendor: vendor}
}

func (f *orderFixture) deliveryInput(utr string, amount float64) PlaceOrderInput {
	return PlaceOrderInput{
		ShopName:        "Night Canteen",
		OrderType:       models.OrderDelivery,
		Items:           []OrderItem{{ItemID: f.milkshake.ID, Qty: 1}},
		Method:          MethodOnline,
		UTR:             utr,
		Amount:          amount,
		DeliveryAddress: "Hostel B, Room 214",
	}
}

func TestQuoteOrderPerturbsAmount(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")

	quote, err := f.svc.QuoteOrder(context.Background(), student, "Night Canteen",
		[]OrderItem{{ItemID: f.milkshake.ID, Qty: 1}}, models.OrderDelivery)
	if err != nil {
		t.Fatalf("QuoteOrder failed: %v", err)
	}

	// 30 + 20 delivery + 2 platform
	if quote.Base != 52 {
		t.Fatalf("base = %.2f, want 52", quote.Base)
	}
	paise := quote.Payment.Amount - quote.Base
	if paise < 0.095 || paise > 0.995 {
		t.Fatalf("payment amount %.2f not a perturbation of %.2f", quote.Payment.Amount, quote.Base)
	}
	if len(quote.TimeSlots) != 13 {
		t.Fatalf("expected ASAP + 12 slots, got %d", len(quote.TimeSlots))
	}
}

func TestQuoteOrderGateBlocked(t *testing.T) {
	f := newOrderFixture()
	student := f.profiles.add(&models.Profile{FullName: "Unverified", Phone: "9876500000", IDCardURL: "x"})

	_, err := f.svc.QuoteOrder(context.Background(), student, "Night Canteen",
		[]OrderItem{{ItemID: f.milkshake.ID, Qty: 1}}, models.OrderDineIn)
	if !models.IsGateError(err) {
		t.Fatalf("got %v, want a gate error", err)
	}
}

func TestPlaceOrderGateBlockedWritesNothing(t *testing.T) {
	f := newOrderFixture()
	banned := f.profiles.add(&models.Profile{
		FullName: "Banned", Phone: "9876500000", IDCardURL: "x", IsVerified: true, IsBanned: true,
	})

	_, err := f.svc.PlaceOrder(context.Background(), banned, f.deliveryInput("1234", 52.50), "tok")
	if !errors.Is(err, models.ErrBanned) {
		t.Fatalf("got %v, want ErrBanned", err)
	}
	if f.errands.inserts != 0 {
		t.Fatal("gate failure must not persist an order")
	}
	if len(f.rec.sent) != 0 {
		t.Fatal("gate failure must not notify anyone")
	}
}

func TestPlaceOrderRejectsUnperturbedAmount(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")

	// exactly the base total: the client skipped the perturbation step
	_, err := f.svc.PlaceOrder(context.Background(), student, f.deliveryInput("1234", 52.00), "tok")
	if err == nil || !strings.Contains(err.Error(), "amount") {
		t.Fatalf("expected amount mismatch, got %v", err)
	}

	// a shaved total
	if _, err := f.svc.PlaceOrder(context.Background(), student, f.deliveryInput("1234", 45.50), "tok"); err == nil {
		t.Fatal("expected a shaved amount to be rejected")
	}
	if f.errands.inserts != 0 {
		t.Fatal("rejected payments must not persist orders")
	}
}

func TestPlaceOrderRejectsShortUTR(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")

	if _, err := f.svc.PlaceOrder(context.Background(), student, f.deliveryInput("123", 52.50), "tok"); err == nil {
		t.Fatal("expected a 3-char UTR to be rejected")
	}
	if f.errands.inserts != 0 {
		t.Fatal("rejected UTR must not persist an order")
	}
}

func TestPlaceOrderDeliveryNeedsAddress(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")

	input := f.deliveryInput("1234", 52.50)
	input.DeliveryAddress = ""
	if _, err := f.svc.PlaceOrder(context.Background(), student, input, "tok"); err == nil {
		t.Fatal("expected delivery without an address to be rejected")
	}
}

func TestPlaceOrderClosedShop(t *testing.T) {
	f := newOrderFixture()
	f.menu.shop.IsOpen = false
	student := verifiedStudent(f.profiles, "asha")

	if _, err := f.svc.PlaceOrder(context.Background(), student, f.deliveryInput("1234", 52.50), "tok"); err == nil {
		t.Fatal("expected a closed shop to reject orders")
	}
}

func TestPlaceOrderSoldOutItem(t *testing.T) {
	f := newOrderFixture()
	f.milkshake.IsAvailable = false
	student := verifiedStudent(f.profiles, "asha")

	_, err := f.svc.PlaceOrder(context.Background(), student, f.deliveryInput("1234", 52.50), "tok")
	if err == nil || !strings.Contains(err.Error(), "sold out") {
		t.Fatalf("expected sold-out error, got %v", err)
	}
}

func TestPlaceOrderCreatesTokenAndOTP(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")

	created, err := f.svc.PlaceOrder(context.Background(), student, f.deliveryInput("8842", 52.42), "tok")
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if created.Status != models.StatusPendingApproval {
		t.Errorf("status = %s, want pending_approval", created.Status)
	}
	if !strings.HasPrefix(created.TokenNo, "#") {
		t.Errorf("token %q should be display form", created.TokenNo)
	}
	if len(created.DeliveryOTP) != 4 {
		t.Errorf("delivery order should carry a 4-digit code, got %q", created.DeliveryOTP)
	}
	if created.EstimatedCost != 52.42 {
		t.Errorf("estimated cost = %.2f, want the paid amount", created.EstimatedCost)
	}

	summary, err := models.ParseOrderSummary(created.ItemDescription)
	if err != nil {
		t.Fatalf("item description %q not parseable: %v", created.ItemDescription, err)
	}
	if summary.UTR != "8842" || len(summary.LineItems) != 1 || summary.LineItems[0].Name != "Oreo Milkshake" {
		t.Fatalf("summary lost order details: %+v", summary)
	}

	// ASAP order: vendor pinged immediately
	if f.rec.sentTo(f.vendor.ID.String()) != 1 {
		t.Fatal("vendor should be notified of an ASAP order")
	}
}

func TestPlaceOrderDineInSkipsOTP(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")

	input := PlaceOrderInput{
		ShopName:  "Night Canteen",
		OrderType: models.OrderDineIn,
		Items:     []OrderItem{{ItemID: f.biryani.ID, Qty: 2}},
		Method:    MethodCash,
	}
	created, err := f.svc.PlaceOrder(context.Background(), student, input, "tok")
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if created.DeliveryOTP != "" {
		t.Fatal("only delivery orders carry a delivery code")
	}
	// cash: server-priced, 2x25 + 2 platform
	if created.EstimatedCost != 52 {
		t.Fatalf("cash order cost = %.2f, want 52", created.EstimatedCost)
	}
}

func TestVendorAcceptDelivery(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")
	order := f.errands.put(&models.Errand{
		StudentID: student.ID, ShopName: "Night Canteen",
		OrderType: models.OrderDelivery, Status: models.StatusPendingApproval, TokenNo: "#412",
	})

	accepted, err := f.svc.VendorAccept(context.Background(), "Night Canteen", order.ID)
	if err != nil {
		t.Fatalf("VendorAccept failed: %v", err)
	}
	if accepted.Status != models.StatusOpen {
		t.Fatalf("delivery acceptance should be open, got %s", accepted.Status)
	}

	if len(f.profiles.credits) != 1 {
		t.Fatal("acceptance should roll a mana reward")
	}
	if c := f.profiles.credits[0]; c.UserID != student.ID || c.Delta < 1 || c.Delta > 60 {
		t.Fatalf("mana credit %+v outside 1-60 or misdirected", c)
	}
	if f.rec.sentTo(student.ID.String()) != 1 {
		t.Fatal("student should hear about the acceptance")
	}

	// a second accept has nowhere to go
	if _, err := f.svc.VendorAccept(context.Background(), "Night Canteen", order.ID); err == nil {
		t.Fatal("expected double accept to fail")
	}
}

func TestVendorAcceptWrongShop(t *testing.T) {
	f := newOrderFixture()
	order := f.errands.put(&models.Errand{
		StudentID: uuid.New(), ShopName: "Night Canteen",
		OrderType: models.OrderTakeaway, Status: models.StatusPendingApproval,
	})

	if _, err := f.svc.VendorAccept(context.Background(), "Juice Corner", order.ID); err == nil {
		t.Fatal("another shop must not touch the order")
	}
}

func TestClaimDeliveryRace(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")
	first := verifiedStudent(f.profiles, "ravi")
	second := verifiedStudent(f.profiles, "meena")

	order := f.errands.put(&models.Errand{
		StudentID: student.ID, ShopName: "Night Canteen",
		OrderType: models.OrderDelivery, Status: models.StatusCooking, TokenNo: "#412",
	})

	if err := f.svc.ClaimDelivery(context.Background(), first, order.ID); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	err := f.svc.ClaimDelivery(context.Background(), second, order.ID)
	if !errors.Is(err, models.ErrAlreadyClaimed) {
		t.Fatalf("got %v, want ErrAlreadyClaimed", err)
	}

	// only the winning claim reaches the student
	if f.rec.sentTo(student.ID.String()) != 1 {
		t.Fatalf("student pinged %d times, want 1", f.rec.sentTo(student.ID.String()))
	}
}

func TestClaimOwnOrderRejected(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")
	order := f.errands.put(&models.Errand{
		StudentID: student.ID, ShopName: "Night Canteen",
		OrderType: models.OrderDelivery, Status: models.StatusCooking,
	})

	if err := f.svc.ClaimDelivery(context.Background(), student, order.ID); err == nil {
		t.Fatal("you can't run your own order")
	}
}

func TestCompleteDeliveryExactOTP(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")
	runner := verifiedStudent(f.profiles, "ravi")
	stranger := verifiedStudent(f.profiles, "meena")

	rid := runner.ID
	order := f.errands.put(&models.Errand{
		StudentID: student.ID, ShopName: "Night Canteen", RunnerID: &rid,
		OrderType: models.OrderDelivery, Status: models.StatusReady,
		DeliveryOTP: "4821", TokenNo: "#412",
	})

	if err := f.svc.CompleteDelivery(context.Background(), stranger, order.ID, "4821"); err == nil {
		t.Fatal("only the assigned runner may complete")
	}
	if err := f.svc.CompleteDelivery(context.Background(), runner, order.ID, "1111"); err == nil {
		t.Fatal("a wrong code must not complete the delivery")
	}
	if err := f.svc.CompleteDelivery(context.Background(), runner, order.ID, ""); err == nil {
		t.Fatal("an empty code must not complete the delivery")
	}
	if got, _ := f.errands.GetErrand(context.Background(), order.ID); got.Status != models.StatusReady {
		t.Fatalf("failed attempts must not move the status, got %s", got.Status)
	}

	if err := f.svc.CompleteDelivery(context.Background(), runner, order.ID, "4821"); err != nil {
		t.Fatalf("exact code should complete: %v", err)
	}
	if got, _ := f.errands.GetErrand(context.Background(), order.ID); got.Status != models.StatusDelivered {
		t.Fatalf("status = %s, want delivered", got.Status)
	}
}

func TestCompleteDeliveryNotReadyYet(t *testing.T) {
	f := newOrderFixture()
	runner := verifiedStudent(f.profiles, "ravi")
	rid := runner.ID
	order := f.errands.put(&models.Errand{
		StudentID: uuid.New(), ShopName: "Night Canteen", RunnerID: &rid,
		OrderType: models.OrderDelivery, Status: models.StatusOpen, DeliveryOTP: "4821",
	})

	err := f.svc.CompleteDelivery(context.Background(), runner, order.ID, "4821")
	if err == nil || !strings.Contains(err.Error(), "not ready") {
		t.Fatalf("open order should not be completable, got %v", err)
	}
}

func TestShopOrdersHidesScheduledPending(t *testing.T) {
	f := newOrderFixture()

	now := time.Now()
	future := now.Add(time.Hour)
	if future.Day() != now.Day() {
		t.Skip("too close to midnight for a same-day schedule")
	}
	slot := future.Format("3:04 PM")

	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusPendingApproval, RequestedTime: models.RequestedASAP})
	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusPendingApproval, RequestedTime: slot})
	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusCooking, RequestedTime: slot})

	rows, err := f.svc.ShopOrders(context.Background(), "Night Canteen")
	if err != nil {
		t.Fatalf("ShopOrders failed: %v", err)
	}
	for _, r := range rows {
		if r.Status == models.StatusPendingApproval && r.RequestedTime != models.RequestedASAP {
			t.Fatal("a scheduled pending order leaked into the vendor queue early")
		}
	}
	if len(rows) != 2 {
		t.Fatalf("expected the ASAP pending and the cooking order, got %d rows", len(rows))
	}
}

func TestLiveBoardLingersFinishedOrdersBriefly(t *testing.T) {
	f := newOrderFixture()
	now := time.Now()

	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusCooking, TokenNo: "#101", DeliveryOTP: "4821"})
	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusReady, TokenNo: "#102"})
	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusDelivered, TokenNo: "#103", UpdatedAt: now.Add(-2 * time.Minute)})
	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusPickedUp, TokenNo: "#104", UpdatedAt: now.Add(-10 * time.Minute)})

	rows, err := f.svc.LiveBoard(context.Background())
	if err != nil {
		t.Fatalf("LiveBoard failed: %v", err)
	}

	tokens := map[string]bool{}
	for _, r := range rows {
		tokens[r.TokenNo] = true
		if r.DeliveryOTP != "" {
			t.Fatal("the delivery code must never reach the board")
		}
	}
	if !tokens["#101"] || !tokens["#102"] {
		t.Fatal("in-preparation orders belong on the board")
	}
	if !tokens["#103"] {
		t.Fatal("a just-finished order should linger on the board")
	}
	if tokens["#104"] {
		t.Fatal("a finished order past the linger window should drop off")
	}
	if len(rows) != 3 {
		t.Fatalf("board has %d rows, want 3", len(rows))
	}
}

func TestRunnerBoardsHideTheDeliveryCode(t *testing.T) {
	f := newOrderFixture()
	runner := verifiedStudent(f.profiles, "ravi")
	rid := runner.ID
	f.errands.put(&models.Errand{
		StudentID: uuid.New(), ShopName: "Night Canteen",
		OrderType: models.OrderDelivery, Status: models.StatusCooking, DeliveryOTP: "4821",
	})
	f.errands.put(&models.Errand{
		StudentID: uuid.New(), ShopName: "Night Canteen", RunnerID: &rid,
		OrderType: models.OrderDelivery, Status: models.StatusReady, DeliveryOTP: "9911",
	})

	board, err := f.svc.AvailableDeliveries(context.Background(), runner)
	if err != nil {
		t.Fatalf("AvailableDeliveries failed: %v", err)
	}
	for _, r := range board {
		if r.DeliveryOTP != "" {
			t.Fatal("the delivery code must never reach the board")
		}
	}

	active, err := f.svc.ActiveRuns(context.Background(), runner)
	if err != nil {
		t.Fatalf("ActiveRuns failed: %v", err)
	}
	if len(active) != 1 || active[0].DeliveryOTP != "" {
		t.Fatal("the delivery code must never reach the runner's active list")
	}
}

func TestSettleRunnerBulk(t *testing.T) {
	f := newOrderFixture()
	runner := verifiedStudent(f.profiles, "ravi")
	rid := runner.ID
	for i := 0; i < 2; i++ {
		f.errands.put(&models.Errand{
			StudentID: uuid.New(), ShopName: "Night Canteen", RunnerID: &rid,
			OrderType: models.OrderDelivery, Status: models.StatusDelivered,
			Runner: &models.ProfileRef{FullName: "Ravi", UpiID: "ravi@upi"},
		})
	}

	dues, err := f.svc.UnpaidRunners(context.Background(), "Night Canteen")
	if err != nil {
		t.Fatalf("UnpaidRunners failed: %v", err)
	}
	if len(dues) != 1 || dues[0].Deliveries != 2 || dues[0].Amount != 2*models.RunnerPayout {
		t.Fatalf("dues = %+v, want one runner owed 2 deliveries", dues)
	}

	req, err := f.svc.RunnerPayoutRequest(context.Background(), "Night Canteen", runner.ID)
	if err != nil {
		t.Fatalf("RunnerPayoutRequest failed: %v", err)
	}
	if req.Amount != 2*models.RunnerPayout {
		t.Fatalf("payout request %.2f, want the exact due", req.Amount)
	}

	if err := f.svc.SettleRunner(context.Background(), "Night Canteen", runner.ID, "abc"); err == nil {
		t.Fatal("a short reference must be rejected")
	}
	if err := f.svc.SettleRunner(context.Background(), "Night Canteen", runner.ID, "UTR99881"); err != nil {
		t.Fatalf("SettleRunner failed: %v", err)
	}
	if f.rec.sentTo(runner.ID.String()) != 1 {
		t.Fatal("runner should hear about the payout")
	}

	// nothing left to settle
	if err := f.svc.SettleRunner(context.Background(), "Night Canteen", runner.ID, "UTR99882"); err == nil {
		t.Fatal("a second settlement has nothing to mark")
	}
}

func TestResolveCancelled(t *testing.T) {
	f := newOrderFixture()
	student := verifiedStudent(f.profiles, "asha")
	cancelled := f.errands.put(&models.Errand{
		StudentID: student.ID, ShopName: "Night Canteen", Status: models.StatusCancelled,
	})
	delivered := f.errands.put(&models.Errand{
		StudentID: student.ID, ShopName: "Night Canteen", Status: models.StatusDelivered,
	})

	if err := f.svc.ResolveCancelled(context.Background(), student, cancelled.ID); err != nil {
		t.Fatalf("ResolveCancelled failed: %v", err)
	}
	if got, _ := f.errands.GetErrand(context.Background(), cancelled.ID); got.Status != models.StatusResolved {
		t.Fatalf("status = %s, want resolved", got.Status)
	}
	if err := f.svc.ResolveCancelled(context.Background(), student, delivered.ID); err == nil {
		t.Fatal("only cancelled orders can be dismissed")
	}
}

func TestPlatformDues(t *testing.T) {
	f := newOrderFixture()
	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusDelivered})
	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusPickedUp})
	f.errands.put(&models.Errand{ShopName: "Night Canteen", Status: models.StatusCancelled})

	total, err := f.svc.PlatformDues(context.Background(), "Night Canteen")
	if err != nil {
		t.Fatalf("PlatformDues failed: %v", err)
	}
	if total != 2*models.PlatformFee {
		t.Fatalf("dues = %.2f, want %.2f", total, 2*models.PlatformFee)
	}
}
