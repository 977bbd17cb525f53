package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sujangowda077/sidequest-main/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func verifiedStudent(repo *fakeProfileRepo, name string) *models.Profile {
	return repo.add(&models.Profile{
		FullName:   name,
		Phone:      "9876500000",
		IDCardURL:  "https://cdn/id/" + name + ".jpg",
		UpiID:      name + "@upi",
		IsVerified: true,
	})
}

// --- push recorder ---

type sentPush struct {
	UserID string
	Title  string
	Body   string
}

type pushRecorder struct {
	mu         sync.Mutex
	sent       []sentPush
	broadcasts []string
}

func (p *pushRecorder) NotifyUser(ctx context.Context, userID, title, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentPush{UserID: userID, Title: title, Body: body})
	return nil
}

func (p *pushRecorder) NotifyAll(ctx context.Context, title, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcasts = append(p.broadcasts, title)
	return nil
}

func (p *pushRecorder) sentTo(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.sent {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

// --- errand repo fake ---

type fakeErrandRepo struct {
	mu      sync.Mutex
	errands map[uuid.UUID]*models.Errand
	inserts int
}

func newFakeErrandRepo() *fakeErrandRepo {
	return &fakeErrandRepo{errands: make(map[uuid.UUID]*models.Errand)}
}

func (f *fakeErrandRepo) put(e *models.Errand) *models.Errand {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	f.errands[e.ID] = e
	return e
}

func (f *fakeErrandRepo) CreateErrand(ctx context.Context, row map[string]interface{}, accessToken string) (*models.Errand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++

	studentID, _ := uuid.Parse(row["student_id"].(string))
	e := &models.Errand{
		ID:              uuid.New(),
		StudentID:       studentID,
		ShopName:        row["shop_name"].(string),
		ItemDescription: row["item_description"].(string),
		OrderType:       models.OrderType(row["order_type"].(string)),
		Status:          models.ErrandStatus(row["status"].(string)),
		TokenNo:         row["token_no"].(string),
		DeliveryAddress: row["delivery_address"].(string),
		DeliveryOTP:     row["delivery_otp"].(string),
		EstimatedCost:   row["estimated_cost"].(float64),
		RequestedTime:   row["requested_time"].(string),
	}
	f.errands[e.ID] = e
	return e, nil
}

func (f *fakeErrandRepo) GetErrand(ctx context.Context, id uuid.UUID) (*models.Errand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.errands[id]
	if !ok {
		return nil, fmt.Errorf("order not found")
	}
	cp := *e
	return &cp, nil
}

func (f *fakeErrandRepo) UpdateErrandStatus(ctx context.Context, id uuid.UUID, status models.ErrandStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.errands[id]
	if !ok {
		return fmt.Errorf("no order found to update")
	}
	e.Status = status
	return nil
}

func (f *fakeErrandRepo) ClaimErrand(ctx context.Context, id, runnerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.errands[id]
	if !ok || e.RunnerID != nil || e.OrderType != models.OrderDelivery ||
		(e.Status != models.StatusCooking && e.Status != models.StatusReady) {
		return models.ErrAlreadyClaimed
	}
	rid := runnerID
	e.RunnerID = &rid
	return nil
}

func (f *fakeErrandRepo) ListByShop(ctx context.Context, shopName string) ([]*models.Errand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Errand
	for _, e := range f.errands {
		if e.ShopName == shopName {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeErrandRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Errand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Errand
	for _, e := range f.errands {
		if e.StudentID == studentID && e.Status != models.StatusResolved {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeErrandRepo) ListAvailableDeliveries(ctx context.Context) ([]*models.Errand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Errand
	for _, e := range f.errands {
		if e.RunnerID == nil && e.OrderType == models.OrderDelivery &&
			(e.Status == models.StatusCooking || e.Status == models.StatusReady) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeErrandRepo) ListActiveByRunner(ctx context.Context, runnerID uuid.UUID) ([]*models.Errand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Errand
	for _, e := range f.errands {
		if e.RunnerID != nil && *e.RunnerID == runnerID &&
			e.Status != models.StatusCancelled && e.Status != models.StatusDelivered {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeErrandRepo) ListUnpaidDeliveries(ctx context.Context, shopName string) ([]*models.Errand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Errand
	for _, e := range f.errands {
		if e.ShopName == shopName && e.Status == models.StatusDelivered &&
			e.OrderType == models.OrderDelivery && !e.IsPayoutComplete && e.RunnerID != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeErrandRepo) MarkRunnerPaid(ctx context.Context, runnerID uuid.UUID, proof string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.errands {
		if e.RunnerID != nil && *e.RunnerID == runnerID &&
			e.Status == models.StatusDelivered && !e.IsPayoutComplete {
			e.IsPayoutComplete = true
			e.PayoutProofURL = proof
			n++
		}
	}
	return n, nil
}

func (f *fakeErrandRepo) ListLiveBoard(ctx context.Context) ([]*models.Errand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Errand
	for _, e := range f.errands {
		switch e.Status {
		case models.StatusCooking, models.StatusReady, models.StatusPickedUp, models.StatusDelivered:
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeErrandRepo) ListScheduledPending(ctx context.Context) ([]*models.Errand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Errand
	for _, e := range f.errands {
		if e.Status == models.StatusPendingApproval && e.RequestedTime != models.RequestedASAP {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- profile repo fake ---

type manaCredit struct {
	UserID uuid.UUID
	Delta  int
}

type fakeProfileRepo struct {
	mu          sync.Mutex
	profiles    map[uuid.UUID]*models.Profile
	byEmail     map[string]*models.Profile
	credits     []manaCredit
	patches     []map[string]interface{}
	withdrawals []map[string]interface{}
	uploads     int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[uuid.UUID]*models.Profile),
		byEmail:  make(map[string]*models.Profile),
	}
}

func (f *fakeProfileRepo) add(p *models.Profile) *models.Profile {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.profiles[p.ID] = p
	if p.Email != "" {
		f.byEmail[p.Email] = p
	}
	return p
}

func (f *fakeProfileRepo) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile not found")
	}
	return p, nil
}

func (f *fakeProfileRepo) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("profile not found")
	}
	return p, nil
}

func (f *fakeProfileRepo) UpdateProfile(ctx context.Context, patch map[string]interface{}, id uuid.UUID, accessToken string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, fmt.Errorf("no profile found to update")
	}
	f.patches = append(f.patches, patch)
	if v, ok := patch["is_verified"].(bool); ok {
		p.IsVerified = v
	}
	if v, ok := patch["is_banned"].(bool); ok {
		p.IsBanned = v
	}
	if v, ok := patch["id_card_url"].(string); ok {
		p.IDCardURL = v
	}
	return p, nil
}

func (f *fakeProfileRepo) CreditMana(ctx context.Context, userID uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credits = append(f.credits, manaCredit{UserID: userID, Delta: delta})
	if p, ok := f.profiles[userID]; ok {
		p.ManaBalance += delta
	}
	return nil
}

func (f *fakeProfileRepo) UploadIDCard(ctx context.Context, userID uuid.UUID, data []byte, accessToken string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return "https://cdn/id/" + userID.String() + ".jpg", nil
}

func (f *fakeProfileRepo) ListVerificationQueue(ctx context.Context) ([]*models.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) ListBanned(ctx context.Context) ([]*models.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) InsertWithdrawal(ctx context.Context, row map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawals = append(f.withdrawals, row)
	return nil
}

// --- menu repo fake ---

type fakeMenuRepo struct {
	shop *models.Shop
	menu []*models.MenuItem
}

func (f *fakeMenuRepo) GetShop(ctx context.Context, name string) (*models.Shop, error) {
	if f.shop == nil || f.shop.Name != name {
		return nil, fmt.Errorf("shop not found")
	}
	return f.shop, nil
}

func (f *fakeMenuRepo) ListShops(ctx context.Context) ([]*models.Shop, error) {
	return []*models.Shop{f.shop}, nil
}

func (f *fakeMenuRepo) SetShopOpen(ctx context.Context, name string, open bool) error {
	f.shop.IsOpen = open
	return nil
}

func (f *fakeMenuRepo) ListMenu(ctx context.Context, shopName string) ([]*models.MenuItem, error) {
	return f.menu, nil
}

func (f *fakeMenuRepo) InsertMenuItem(ctx context.Context, row map[string]interface{}) (*models.MenuItem, error) {
	item := &models.MenuItem{
		ID:          uuid.New(),
		ShopName:    row["shop_name"].(string),
		Name:        row["name"].(string),
		Price:       row["price"].(float64),
		Category:    row["category"].(string),
		IsAvailable: true,
	}
	f.menu = append(f.menu, item)
	return item, nil
}

func (f *fakeMenuRepo) UpdateMenuItem(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	for _, m := range f.menu {
		if m.ID == id {
			if v, ok := patch["is_available"].(bool); ok {
				m.IsAvailable = v
			}
			return nil
		}
	}
	return fmt.Errorf("no menu item found to update")
}

func (f *fakeMenuRepo) DeleteMenuItem(ctx context.Context, id uuid.UUID, shopName string) error {
	for i, m := range f.menu {
		if m.ID == id && m.ShopName == shopName {
			f.menu = append(f.menu[:i], f.menu[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no menu item found to delete")
}

// --- tutor repo fake ---

type fakeTutorRepo struct {
	mu       sync.Mutex
	bounties map[uuid.UUID]*models.TutorBounty
}

func newFakeTutorRepo() *fakeTutorRepo {
	return &fakeTutorRepo{bounties: make(map[uuid.UUID]*models.TutorBounty)}
}

func (f *fakeTutorRepo) CreateBounty(ctx context.Context, row map[string]interface{}, accessToken string) (*models.TutorBounty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	studentID, _ := uuid.Parse(row["student_id"].(string))
	b := &models.TutorBounty{
		ID:            uuid.New(),
		StudentID:     studentID,
		Topic:         row["topic"].(string),
		OfferPrice:    row["offer_price"].(float64),
		Status:        models.BountyStatus(row["status"].(string)),
		CompletionOTP: row["completion_otp"].(string),
	}
	f.bounties[b.ID] = b
	return b, nil
}

func (f *fakeTutorRepo) GetBounty(ctx context.Context, id uuid.UUID) (*models.TutorBounty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bounties[id]
	if !ok {
		return nil, fmt.Errorf("bounty not found")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeTutorRepo) UpdateBounty(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bounties[id]
	if !ok {
		return fmt.Errorf("no bounty found to update")
	}
	if v, ok := patch["status"].(string); ok {
		b.Status = models.BountyStatus(v)
	}
	if v, ok := patch["tutor_id"].(string); ok {
		tid, _ := uuid.Parse(v)
		b.TutorID = &tid
	}
	return nil
}

func (f *fakeTutorRepo) DeleteBounty(ctx context.Context, id, studentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bounties[id]
	if !ok || b.StudentID != studentID {
		return models.ErrNotBountyOwner
	}
	delete(f.bounties, id)
	return nil
}

func (f *fakeTutorRepo) ListBounties(ctx context.Context) ([]*models.TutorBounty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.TutorBounty, 0, len(f.bounties))
	for _, b := range f.bounties {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

// --- print repo fake ---

type fakePrintRepo struct {
	mu      sync.Mutex
	table   models.PriceTable
	orders  map[uuid.UUID]*models.PrintOrder
	uploads []string
	rows    []map[string]interface{}
}

func newFakePrintRepo() *fakePrintRepo {
	return &fakePrintRepo{
		table:  models.DefaultPriceTable(),
		orders: make(map[uuid.UUID]*models.PrintOrder),
	}
}

func (f *fakePrintRepo) GetPrintConfig(ctx context.Context) (models.PriceTable, error) {
	return f.table, nil
}

func (f *fakePrintRepo) UploadDocument(ctx context.Context, key string, data []byte, accessToken string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, key)
	return "https://cdn/documents/" + key, nil
}

func (f *fakePrintRepo) CreatePrintOrder(ctx context.Context, row map[string]interface{}, accessToken string) (*models.PrintOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, row)
	studentID, _ := uuid.Parse(row["student_id"].(string))
	o := &models.PrintOrder{
		ID:            uuid.New(),
		StudentID:     studentID,
		FileName:      row["file_name"].(string),
		FileURL:       row["file_url"].(string),
		Status:        models.PrintStatus(row["status"].(string)),
		EstimatedCost: row["estimated_cost"].(float64),
		Note:          row["note"].(string),
	}
	if fd, ok := row["file_details"].([]models.FileSpec); ok {
		o.FileDetails = fd
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakePrintRepo) GetPrintOrder(ctx context.Context, id uuid.UUID) (*models.PrintOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("print order not found")
	}
	cp := *o
	return &cp, nil
}

func (f *fakePrintRepo) UpdatePrintStatus(ctx context.Context, id uuid.UUID, status models.PrintStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return fmt.Errorf("no print order found to update")
	}
	o.Status = status
	return nil
}

func (f *fakePrintRepo) ListAllPrintOrders(ctx context.Context) ([]*models.PrintOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.PrintOrder, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakePrintRepo) ListPrintOrdersByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.PrintOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PrintOrder
	for _, o := range f.orders {
		if o.StudentID == studentID {
			out = append(out, o)
		}
	}
	return out, nil
}
