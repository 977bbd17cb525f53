package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BountyStatus string

const (
	BountyOpen           BountyStatus = "open"
	BountyAccepted       BountyStatus = "accepted"
	BountyPaymentPending BountyStatus = "payment_pending"
	BountyPaid           BountyStatus = "paid"
)

var bountyTransitions = map[BountyStatus]BountyStatus{
	BountyOpen:           BountyAccepted,
	BountyAccepted:       BountyPaymentPending,
	BountyPaymentPending: BountyPaid,
}

func (s BountyStatus) CanTransitionTo(next BountyStatus) bool {
	return bountyTransitions[s] == next
}

// BountyCategories is the fixed set offered when posting.
var BountyCategories = []string{
	"Math", "Programming", "DSA", "ML",
	"Circuits", "Mechanics", "Thermodynamics", "Physics",
	"Chemistry", "Biology", "Economics", "Design",
	"Projects", "Assignments", "Exam Prep",
}

func IsBountyCategory(c string) bool {
	for _, cat := range BountyCategories {
		if cat == c {
			return true
		}
	}
	return false
}

type TutorBounty struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	StudentID     uuid.UUID    `db:"student_id" json:"student_id"`
	Topic         string       `db:"topic" json:"topic"`
	OfferPrice    float64      `db:"offer_price" json:"offer_price"`
	Status        BountyStatus `db:"status" json:"status"`
	TutorID       *uuid.UUID   `db:"tutor_id" json:"tutor_id"`
	CompletionOTP string       `db:"completion_otp" json:"completion_otp,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`

	Student *ProfileRef `db:"-" json:"profiles,omitempty"`
	Tutor   *ProfileRef `db:"-" json:"tutor,omitempty"`
}

// BountyTopic is the structured form of the topic field:
//
//	[Category] Title | Description
type BountyTopic struct {
	Category    string
	Title       string
	Description string
}

func (t BountyTopic) Encode() string {
	return fmt.Sprintf("[%s] %s | %s", t.Category, t.Title, t.Description)
}

// ParseBountyTopic never fails: rows written by hand still get rendered with
// the same defaults the app always used.
func ParseBountyTopic(raw string) BountyTopic {
	t := BountyTopic{Category: "General", Title: "No Title"}

	rest := raw
	if strings.HasPrefix(raw, "[") {
		if cat, after, ok := strings.Cut(raw[1:], "]"); ok {
			t.Category = cat
			rest = strings.TrimSpace(after)
		}
	}

	title, desc, _ := strings.Cut(rest, "|")
	if s := strings.TrimSpace(title); s != "" {
		t.Title = s
	}
	t.Description = strings.TrimSpace(desc)
	return t
}

// MarketView filters to open bounties, dropping ids the viewer dismissed this
// session. Dismissals are never persisted.
func MarketView(rows []*TutorBounty, hidden map[uuid.UUID]bool) []*TutorBounty {
	out := make([]*TutorBounty, 0, len(rows))
	for _, b := range rows {
		if b.Status == BountyOpen && !hidden[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

// ActivityView filters to bounties the viewer is a party to, any status.
func ActivityView(rows []*TutorBounty, viewer uuid.UUID) []*TutorBounty {
	out := make([]*TutorBounty, 0, len(rows))
	for _, b := range rows {
		if b.StudentID == viewer || (b.TutorID != nil && *b.TutorID == viewer) {
			out = append(out, b)
		}
	}
	return out
}
