package scheduler

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/models"
)

func testScheduler() *Scheduler {
	return New(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAlreadyNotifiedDedupes(t *testing.T) {
	s := testScheduler()
	id := uuid.New()

	if s.alreadyNotified(id) {
		t.Fatal("first sighting should not be deduped")
	}
	if !s.alreadyNotified(id) {
		t.Fatal("second sighting should be deduped")
	}
}

func TestOrderDue(t *testing.T) {
	day := func(h, m int) time.Time {
		return time.Date(2026, 3, 10, h, m, 0, 0, time.Local)
	}

	// placed well ahead of its slot: not due until the window opens
	ahead := &models.Errand{RequestedTime: "2:00 PM", CreatedAt: day(13, 0)}
	if orderDue(ahead, day(13, 30)) {
		t.Fatal("30 minutes out is not due yet")
	}
	if !orderDue(ahead, day(13, 50)) {
		t.Fatal("inside the prep window the order is due")
	}

	// placed with its slot already inside the window: the creation path
	// alerted the vendor, the poll must stay quiet
	late := &models.Errand{RequestedTime: "2:00 PM", CreatedAt: day(13, 50)}
	if orderDue(late, day(13, 51)) {
		t.Fatal("an order alerted at creation must not be alerted again")
	}
	if orderDue(late, day(14, 5)) {
		t.Fatal("still not due on later ticks")
	}
}

func TestPruneForgetsActedOnOrders(t *testing.T) {
	s := testScheduler()
	acted := uuid.New()
	pending := uuid.New()

	s.alreadyNotified(acted)
	s.alreadyNotified(pending)

	// acted dropped out of the pending poll; pending is still there
	s.prune([]*models.Errand{{ID: pending}})

	s.mu.Lock()
	_, actedKept := s.notified[acted]
	_, pendingKept := s.notified[pending]
	s.mu.Unlock()

	if actedKept {
		t.Fatal("an order gone from the poll should be forgotten")
	}
	if !pendingKept {
		t.Fatal("an order still pending must stay deduped")
	}
}
