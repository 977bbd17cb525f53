// Package scheduler polls for scheduled orders coming due. Vendors only want
// one ping per order, so a seen-set dedupes across ticks; it is in-memory on
// purpose, a restart at worst repeats a ping.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/services"
)

type Scheduler struct {
	errandRepo   models.ErrandRepo
	orderService *services.OrderService
	logger       *slog.Logger
	cron         *cron.Cron

	mu       sync.Mutex
	notified map[uuid.UUID]bool
}

func New(errandRepo models.ErrandRepo, orderService *services.OrderService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		errandRepo:   errandRepo,
		orderService: orderService,
		logger:       logger,
		cron:         cron.New(),
		notified:     make(map[uuid.UUID]bool),
	}
}

// Start begins the 30-second poll. Stop with Stop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 30s", s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("order scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("order scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	rows, err := s.errandRepo.ListScheduledPending(ctx)
	if err != nil {
		s.logger.Warn("scheduled order poll failed", "error", err)
		return
	}

	now := time.Now()
	for _, e := range rows {
		if !orderDue(e, now) {
			continue
		}
		if s.alreadyNotified(e.ID) {
			continue
		}
		s.orderService.NotifyVendorOrderReady(ctx, e)
		s.logger.Info("scheduled order due", "order_id", e.ID, "shop", e.ShopName, "requested", e.RequestedTime)
	}

	// Orders drop out of the pending poll once the vendor acts on them; any
	// seen id no longer in the result set can be forgotten.
	s.prune(rows)
}

// orderDue reports whether a scheduled order needs its vendor ping now. An
// order placed with its requested time already inside the prep window was
// alerted at creation, so the poll leaves it alone.
func orderDue(e *models.Errand, now time.Time) bool {
	if !models.IsTimeReady(e.RequestedTime, now) {
		return false
	}
	return !models.IsTimeReady(e.RequestedTime, e.CreatedAt)
}

func (s *Scheduler) alreadyNotified(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notified[id] {
		return true
	}
	s.notified[id] = true
	return false
}

func (s *Scheduler) prune(current []*models.Errand) {
	live := make(map[uuid.UUID]bool, len(current))
	for _, e := range current {
		live[e.ID] = true
	}
	s.mu.Lock()
	for id := range s.notified {
		if !live[id] {
			delete(s.notified, id)
		}
	}
	s.mu.Unlock()
}
