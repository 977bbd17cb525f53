package models

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrandStatus string

// Persisted literally; case-sensitive wire values.
const (
	StatusPendingApproval ErrandStatus = "pending_approval"
	StatusCooking         ErrandStatus = "cooking"
	StatusOpen            ErrandStatus = "open"
	StatusReady           ErrandStatus = "ready"
	StatusPickedUp        ErrandStatus = "picked_up"
	StatusDelivered       ErrandStatus = "delivered"
	StatusCancelled       ErrandStatus = "cancelled"
	StatusResolved        ErrandStatus = "resolved"
)

type OrderType string

const (
	OrderDelivery OrderType = "delivery"
	OrderTakeaway OrderType = "takeaway"
	OrderDineIn   OrderType = "dine_in"
)

const (
	DeliveryFee     = 20.0
	PlatformFee     = 2.0
	RunnerPayout    = 20.0
	RequestedASAP   = "ASAP"
	ScheduleWindow  = 15 * time.Minute
	LiveBoardWindow = 5 * time.Minute
)

type Errand struct {
	ID               uuid.UUID    `db:"id" json:"id"`
	StudentID        uuid.UUID    `db:"student_id" json:"student_id"`
	ShopName         string       `db:"shop_name" json:"shop_name"`
	ItemDescription  string       `db:"item_description" json:"item_description"`
	OrderType        OrderType    `db:"order_type" json:"order_type"`
	Status           ErrandStatus `db:"status" json:"status"`
	TokenNo          string       `db:"token_no" json:"token_no"`
	DeliveryAddress  string       `db:"delivery_address" json:"delivery_address"`
	DeliveryOTP      string       `db:"delivery_otp" json:"delivery_otp,omitempty"`
	EstimatedCost    float64      `db:"estimated_cost" json:"estimated_cost"`
	RequestedTime    string       `db:"requested_time" json:"requested_time"`
	RunnerID         *uuid.UUID   `db:"runner_id" json:"runner_id"`
	IsPayoutComplete bool         `db:"is_payout_complete" json:"is_payout_complete"`
	PayoutProofURL   string       `db:"payout_proof_url" json:"payout_proof_url"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`

	// Joined from profiles, read-only.
	Student *ProfileRef `db:"-" json:"profiles,omitempty"`
	Runner  *ProfileRef `db:"-" json:"runner,omitempty"`
}

// ProfileRef is the slim foreign-key join shape returned by select embeds.
type ProfileRef struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	UpiID    string `json:"upi_id"`
}

// errandTransitions is the complete transition table. Anything absent is
// rejected; picked_up, delivered and resolved are terminal.
var errandTransitions = map[ErrandStatus][]ErrandStatus{
	StatusPendingApproval: {StatusCooking, StatusOpen, StatusCancelled},
	StatusCooking:         {StatusReady, StatusCancelled},
	StatusOpen:            {StatusReady, StatusCancelled},
	StatusReady:           {StatusPickedUp, StatusDelivered, StatusCancelled},
	StatusCancelled:       {StatusResolved},
}

func (s ErrandStatus) CanTransitionTo(next ErrandStatus) bool {
	for _, allowed := range errandTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ErrandStatus) IsTerminal() bool {
	return s == StatusPickedUp || s == StatusDelivered || s == StatusResolved
}

// AcceptedStatus is the status a vendor acceptance moves an order into:
// delivery orders go "open" (awaiting runner), everything else "cooking".
func AcceptedStatus(t OrderType) ErrandStatus {
	if t == OrderDelivery {
		return StatusOpen
	}
	return StatusCooking
}

// --- order summary wire grammar ---

// LineItem is one cart entry inside the item_description string.
type LineItem struct {
	Qty  int
	Name string
}

// OrderSummary is the structured form of the item_description field:
//
//	[#<token>] <TYPE> [<METHOD>] • <qty>x <name>, ...
//
// with an optional [UTR: <ref>] segment after the method for online orders.
type OrderSummary struct {
	Token     int
	Type      OrderType
	Method    string
	UTR       string
	LineItems []LineItem
}

func (s OrderSummary) Encode() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[#%d] %s [%s]", s.Token, strings.ToUpper(strings.ReplaceAll(string(s.Type), "_", " ")), strings.ToUpper(s.Method))
	if s.UTR != "" {
		fmt.Fprintf(&b, " [UTR: %s]", s.UTR)
	}
	b.WriteString(" • ")
	parts := make([]string, 0, len(s.LineItems))
	for _, li := range s.LineItems {
		parts = append(parts, fmt.Sprintf("%dx %s", li.Qty, li.Name))
	}
	b.WriteString(strings.Join(parts, ", "))
	return b.String()
}

// ParseOrderSummary is the inverse of Encode. It tolerates unknown segments
// so old rows still render.
func ParseOrderSummary(raw string) (OrderSummary, error) {
	var s OrderSummary

	head, items, found := strings.Cut(raw, " • ")
	if !found {
		return s, fmt.Errorf("malformed order summary: %q", raw)
	}

	if !strings.HasPrefix(head, "[#") {
		return s, fmt.Errorf("missing token segment: %q", raw)
	}
	tokenStr, rest, found := strings.Cut(head[2:], "]")
	if !found {
		return s, fmt.Errorf("unterminated token segment: %q", raw)
	}
	token, err := strconv.Atoi(tokenStr)
	if err != nil {
		return s, fmt.Errorf("bad token %q: %v", tokenStr, err)
	}
	s.Token = token

	rest = strings.TrimSpace(rest)
	typeStr, rest, found := strings.Cut(rest, " [")
	if !found {
		return s, fmt.Errorf("missing method segment: %q", raw)
	}
	s.Type = OrderType(strings.ReplaceAll(strings.ToLower(typeStr), " ", "_"))

	method, rest, found := strings.Cut(rest, "]")
	if !found {
		return s, fmt.Errorf("unterminated method segment: %q", raw)
	}
	s.Method = strings.ToLower(method)

	if utr, ok := strings.CutPrefix(strings.TrimSpace(rest), "[UTR: "); ok {
		if ref, _, ok := strings.Cut(utr, "]"); ok {
			s.UTR = ref
		}
	}

	for _, part := range strings.Split(items, ", ") {
		qtyStr, name, found := strings.Cut(part, "x ")
		if !found {
			continue
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			continue
		}
		s.LineItems = append(s.LineItems, LineItem{Qty: qty, Name: name})
	}

	return s, nil
}

// --- pricing ---

// PackagingCharge mirrors the vendors' per-item packaging rules: nothing for
// dine-in or milkshakes, ₹5 for juices and maggie, ₹10 for biryani and pizza.
func PackagingCharge(itemName, category string, orderType OrderType) float64 {
	if orderType == OrderDineIn {
		return 0
	}
	name := strings.ToLower(itemName)
	cat := strings.ToLower(category)
	switch {
	case strings.Contains(name, "milkshake") || strings.Contains(cat, "milkshake"):
		return 0
	case strings.Contains(name, "juice") || strings.Contains(name, "maggie") || strings.Contains(cat, "juice"):
		return 5
	case strings.Contains(name, "biryani") || strings.Contains(name, "pizza") ||
		strings.Contains(cat, "biryani") || strings.Contains(cat, "pizza"):
		return 10
	}
	return 0
}

// CartLine pairs a menu item with a quantity for checkout pricing.
type CartLine struct {
	Item MenuItem
	Qty  int
}

// OrderTotal computes the base (pre-perturbation) amount:
// items + packaging + delivery fee + platform fee.
func OrderTotal(lines []CartLine, orderType OrderType) float64 {
	var total float64
	for _, l := range lines {
		total += l.Item.Price * float64(l.Qty)
		total += PackagingCharge(l.Item.Name, l.Item.Category, orderType) * float64(l.Qty)
	}
	if orderType == OrderDelivery {
		total += DeliveryFee
	}
	total += PlatformFee
	return total
}

// --- scheduling ---

// IsTimeReady reports whether an order with the given requested time belongs
// in the live prep queue: ASAP always, a clock time once it is within 15
// minutes (or already past). Unparseable values fail open.
func IsTimeReady(requested string, now time.Time) bool {
	if requested == "" || requested == RequestedASAP {
		return true
	}
	t, err := time.Parse("3:04 PM", requested)
	if err != nil {
		return true
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	return target.Sub(now) <= ScheduleWindow
}

// GenerateTimeSlots builds the checkout slot list: ASAP plus twelve
// quarter-hour slots starting at least 30 minutes out.
func GenerateTimeSlots(now time.Time) []string {
	slots := []string{RequestedASAP}
	minute := ((now.Minute() + 14) / 15) * 15
	start := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location()).
		Add(time.Duration(minute+30) * time.Minute)
	for i := 0; i < 12; i++ {
		slots = append(slots, start.Format("3:04 PM"))
		start = start.Add(15 * time.Minute)
	}
	return slots
}

// --- token & OTP generation ---

func randomInt(n uint64) uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is unrecoverable for our purposes
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:]) % n
}

// NewOrderToken returns the 3-digit display token (100-999) as stored, with
// the leading hash.
func NewOrderToken() (int, string) {
	n := int(randomInt(900)) + 100
	return n, fmt.Sprintf("#%d", n)
}

// NewOTP returns a 4-digit handoff code (1000-9999). It is a manual
// completion credential, not an authentication secret.
func NewOTP() string {
	return strconv.Itoa(int(randomInt(9000)) + 1000)
}

// NewManaReward rolls the mana credited to a student when a vendor accepts
// their order: 1 to 60 inclusive.
func NewManaReward() int {
	return int(randomInt(60)) + 1
}
