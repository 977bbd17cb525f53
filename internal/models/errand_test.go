package models

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestErrandTransitions(t *testing.T) {
	allowed := []struct {
		from, to ErrandStatus
	}{
		{StatusPendingApproval, StatusCooking},
		{StatusPendingApproval, StatusOpen},
		{StatusPendingApproval, StatusCancelled},
		{StatusCooking, StatusReady},
		{StatusCooking, StatusCancelled},
		{StatusOpen, StatusReady},
		{StatusOpen, StatusCancelled},
		{StatusReady, StatusPickedUp},
		{StatusReady, StatusDelivered},
		{StatusReady, StatusCancelled},
		{StatusCancelled, StatusResolved},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to ErrandStatus
	}{
		{StatusPendingApproval, StatusReady},
		{StatusPendingApproval, StatusDelivered},
		{StatusCooking, StatusOpen},
		{StatusCooking, StatusDelivered},
		{StatusDelivered, StatusReady},
		{StatusDelivered, StatusCancelled},
		{StatusPickedUp, StatusDelivered},
		{StatusResolved, StatusPendingApproval},
		{StatusCancelled, StatusCooking},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []ErrandStatus{StatusPickedUp, StatusDelivered, StatusResolved} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []ErrandStatus{StatusPendingApproval, StatusCooking, StatusOpen, StatusReady, StatusCancelled} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestAcceptedStatus(t *testing.T) {
	if got := AcceptedStatus(OrderDelivery); got != StatusOpen {
		t.Errorf("delivery acceptance should be open, got %s", got)
	}
	if got := AcceptedStatus(OrderTakeaway); got != StatusCooking {
		t.Errorf("takeaway acceptance should be cooking, got %s", got)
	}
	if got := AcceptedStatus(OrderDineIn); got != StatusCooking {
		t.Errorf("dine-in acceptance should be cooking, got %s", got)
	}
}

func TestOrderSummaryRoundTrip(t *testing.T) {
	s := OrderSummary{
		Token:  412,
		Type:   OrderDelivery,
		Method: "online",
		UTR:    "8842",
		LineItems: []LineItem{
			{Qty: 2, Name: "Veg Biryani"},
			{Qty: 1, Name: "Oreo Milkshake"},
		},
	}

	encoded := s.Encode()
	want := "[#412] DELIVERY [ONLINE] [UTR: 8842] • 2x Veg Biryani, 1x Oreo Milkshake"
	if encoded != want {
		t.Fatalf("Encode() = %q, want %q", encoded, want)
	}

	parsed, err := ParseOrderSummary(encoded)
	if err != nil {
		t.Fatalf("ParseOrderSummary failed: %v", err)
	}
	if parsed.Token != 412 || parsed.Type != OrderDelivery || parsed.Method != "online" || parsed.UTR != "8842" {
		t.Fatalf("round trip lost header fields: %+v", parsed)
	}
	if len(parsed.LineItems) != 2 || parsed.LineItems[0].Qty != 2 || parsed.LineItems[1].Name != "Oreo Milkshake" {
		t.Fatalf("round trip lost line items: %+v", parsed.LineItems)
	}
}

func TestOrderSummaryCashNoUTR(t *testing.T) {
	s := OrderSummary{Token: 107, Type: OrderDineIn, Method: "cash", LineItems: []LineItem{{Qty: 1, Name: "Maggie"}}}
	encoded := s.Encode()
	if strings.Contains(encoded, "UTR") {
		t.Fatalf("cash summary should not carry a UTR segment: %q", encoded)
	}
	parsed, err := ParseOrderSummary(encoded)
	if err != nil {
		t.Fatalf("ParseOrderSummary failed: %v", err)
	}
	if parsed.Type != OrderDineIn || parsed.UTR != "" {
		t.Fatalf("unexpected parse: %+v", parsed)
	}
}

func TestParseOrderSummaryMalformed(t *testing.T) {
	for _, raw := range []string{"", "just some text", "[#x] DELIVERY [CASH] • 1x Tea"} {
		if _, err := ParseOrderSummary(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestPackagingCharge(t *testing.T) {
	cases := []struct {
		name, cat string
		orderType OrderType
		want      float64
	}{
		{"Oreo Milkshake", "Milkshakes", OrderDelivery, 0},
		{"Orange Juice", "Juices", OrderTakeaway, 5},
		{"Cheese Maggie", "Snacks", OrderDelivery, 5},
		{"Chicken Biryani", "Rice", OrderDelivery, 10},
		{"Farmhouse Pizza", "Pizza", OrderTakeaway, 10},
		{"Chicken Biryani", "Rice", OrderDineIn, 0},
		{"Plain Tea", "Beverages", OrderDelivery, 0},
	}
	for _, tc := range cases {
		if got := PackagingCharge(tc.name, tc.cat, tc.orderType); got != tc.want {
			t.Errorf("PackagingCharge(%q, %q, %s) = %.0f, want %.0f", tc.name, tc.cat, tc.orderType, got, tc.want)
		}
	}
}

func TestOrderTotalDelivery(t *testing.T) {
	// 30 (milkshake, no packaging) + 20 delivery + 2 platform = 52
	lines := []CartLine{
		{Item: MenuItem{Name: "Oreo Milkshake", Price: 30, Category: "Milkshakes"}, Qty: 1},
	}
	if got := OrderTotal(lines, OrderDelivery); got != 52 {
		t.Fatalf("OrderTotal = %.2f, want 52", got)
	}
}

func TestOrderTotalDineInSkipsDeliveryAndPackaging(t *testing.T) {
	// 2x25 biryani, dine-in: no packaging, no delivery fee, +2 platform
	lines := []CartLine{
		{Item: MenuItem{Name: "Veg Biryani", Price: 25, Category: "Rice"}, Qty: 2},
	}
	if got := OrderTotal(lines, OrderDineIn); got != 52 {
		t.Fatalf("OrderTotal = %.2f, want 52", got)
	}
}

func TestIsTimeReady(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)

	cases := []struct {
		requested string
		want      bool
	}{
		{RequestedASAP, true},
		{"", true},
		{"2:10 PM", true},  // 10 min out, inside window
		{"2:15 PM", true},  // exactly 15 min
		{"2:16 PM", false}, // just outside
		{"1:00 PM", true},  // already past
		{"half past two", true}, // unparseable fails open
	}
	for _, tc := range cases {
		if got := IsTimeReady(tc.requested, now); got != tc.want {
			t.Errorf("IsTimeReady(%q) = %v, want %v", tc.requested, got, tc.want)
		}
	}
}

func TestGenerateTimeSlots(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 7, 0, 0, time.Local)
	slots := GenerateTimeSlots(now)

	if len(slots) != 13 {
		t.Fatalf("expected ASAP + 12 slots, got %d", len(slots))
	}
	if slots[0] != RequestedASAP {
		t.Fatalf("first slot should be ASAP, got %q", slots[0])
	}

	first, err := time.Parse("3:04 PM", slots[1])
	if err != nil {
		t.Fatalf("slot %q not a clock time: %v", slots[1], err)
	}
	firstAt := time.Date(now.Year(), now.Month(), now.Day(), first.Hour(), first.Minute(), 0, 0, now.Location())
	if lead := firstAt.Sub(now); lead < 30*time.Minute {
		t.Fatalf("first slot %q only %v out, want at least 30m", slots[1], lead)
	}

	// quarter-hour spacing
	prev := firstAt
	for _, s := range slots[2:] {
		tm, err := time.Parse("3:04 PM", s)
		if err != nil {
			t.Fatalf("slot %q not a clock time: %v", s, err)
		}
		at := time.Date(now.Year(), now.Month(), now.Day(), tm.Hour(), tm.Minute(), 0, 0, now.Location())
		if at.Sub(prev) != 15*time.Minute {
			t.Fatalf("slots not 15 minutes apart: %q after %v", s, prev)
		}
		prev = at
	}
}

func TestNewOrderToken(t *testing.T) {
	for i := 0; i < 500; i++ {
		n, s := NewOrderToken()
		if n < 100 || n > 999 {
			t.Fatalf("token %d outside 100-999", n)
		}
		if s != "#"+strconv.Itoa(n) {
			t.Fatalf("display form %q does not match token %d", s, n)
		}
	}
}

func TestNewOTP(t *testing.T) {
	for i := 0; i < 500; i++ {
		otp := NewOTP()
		n, err := strconv.Atoi(otp)
		if err != nil || n < 1000 || n > 9999 {
			t.Fatalf("OTP %q outside 1000-9999", otp)
		}
	}
}

func TestNewManaReward(t *testing.T) {
	for i := 0; i < 500; i++ {
		if m := NewManaReward(); m < 1 || m > 60 {
			t.Fatalf("mana reward %d outside 1-60", m)
		}
	}
}
