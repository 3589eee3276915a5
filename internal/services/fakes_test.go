package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sync"
	"time"

	"membershipevents/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeInscriptionStore is an in-memory InscriptionStore for tests. Each unit of
// work runs on a copy that is only kept when fn returns nil.
type fakeInscriptionStore struct {
	mu       sync.Mutex
	records  map[string]*domain.Inscription
	ledgers  map[string]domain.Ledger
	nextID   int
	units    int
	err      error // if set, WithinEvent returns this error without running fn
	resync   *domain.ResyncReport
	resynced int
}

func newFakeInscriptionStore() *fakeInscriptionStore {
	return &fakeInscriptionStore{
		records: make(map[string]*domain.Inscription),
		ledgers: make(map[string]domain.Ledger),
		nextID:  1,
	}
}

func (f *fakeInscriptionStore) WithinEvent(ctx context.Context, eventID string, fn func(tx domain.InscriptionTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.units++
	if f.err != nil {
		return f.err
	}
	tx := &fakeTx{store: f, records: make(map[string]*domain.Inscription), ledgers: maps.Clone(f.ledgers), nextID: f.nextID}
	for id, ins := range f.records {
		tx.records[id] = ins.Clone()
	}
	if err := fn(tx); err != nil {
		return err
	}
	f.records, f.ledgers, f.nextID = tx.records, tx.ledgers, tx.nextID
	return nil
}

func (f *fakeInscriptionStore) GetByID(ctx context.Context, id string) (*domain.Inscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ins, ok := f.records[id]; ok {
		return ins.Clone(), nil
	}
	return nil, domain.ErrInscriptionNotFound
}

func (f *fakeInscriptionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Inscription, error) {
	return f.filter(func(ins *domain.Inscription) bool { return ins.UserID == userID }), nil
}

func (f *fakeInscriptionStore) ListByEvent(ctx context.Context, eventID string) ([]*domain.Inscription, error) {
	return f.filter(func(ins *domain.Inscription) bool { return ins.EventID == eventID }), nil
}

func (f *fakeInscriptionStore) Resync(ctx context.Context) (*domain.ResyncReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resynced++
	if f.resync != nil {
		return f.resync, nil
	}
	return &domain.ResyncReport{Strategy: "fake", Records: len(f.records)}, nil
}

// filter returns every matching record, cancelled ones included, in map order.
func (f *fakeInscriptionStore) filter(match func(*domain.Inscription) bool) []*domain.Inscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Inscription
	for _, ins := range f.records {
		if match(ins) {
			out = append(out, ins.Clone())
		}
	}
	return out
}

func (f *fakeInscriptionStore) byUser(eventID, userID string) *domain.Inscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ins := range f.records {
		if ins.EventID == eventID && ins.UserID == userID && ins.Active() {
			return ins.Clone()
		}
	}
	return nil
}

type fakeTx struct {
	store   *fakeInscriptionStore
	records map[string]*domain.Inscription
	ledgers map[string]domain.Ledger
	nextID  int
}

func (t *fakeTx) LockLedger(ctx context.Context, eventID string, snapshot *domain.EventSnapshot) (domain.Ledger, error) {
	l, ok := t.ledgers[eventID]
	if !ok {
		if snapshot == nil {
			return domain.Ledger{}, domain.ErrEventNotFound
		}
		l = domain.Ledger{EventID: eventID}
	}
	if snapshot != nil {
		l.Capacity = snapshot.Capacity
	}
	t.ledgers[eventID] = l
	return l, nil
}

func (t *fakeTx) AdjustConfirmed(ctx context.Context, eventID string, delta int) error {
	l, ok := t.ledgers[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	l.Confirmed = max(l.Confirmed+delta, 0)
	t.ledgers[eventID] = l
	return nil
}

func (t *fakeTx) FindActive(ctx context.Context, eventID, userID string) (*domain.Inscription, error) {
	for _, ins := range t.records {
		if ins.EventID == eventID && ins.UserID == userID && ins.Active() {
			return ins.Clone(), nil
		}
	}
	return nil, domain.ErrInscriptionNotFound
}

func (t *fakeTx) Get(ctx context.Context, id string) (*domain.Inscription, error) {
	if ins, ok := t.records[id]; ok {
		return ins.Clone(), nil
	}
	return nil, domain.ErrInscriptionNotFound
}

func (t *fakeTx) MaxWaitlistPosition(ctx context.Context, eventID string) (int, error) {
	last := 0
	for _, ins := range t.records {
		if ins.EventID == eventID {
			last = max(last, ins.Position())
		}
	}
	return last, nil
}

func (t *fakeTx) FirstWaitlisted(ctx context.Context, eventID string) (*domain.Inscription, error) {
	var first *domain.Inscription
	for _, ins := range t.records {
		if ins.EventID != eventID || ins.Status != domain.StatusWaitlist {
			continue
		}
		if first == nil || ins.Position() < first.Position() {
			first = ins
		}
	}
	if first == nil {
		return nil, domain.ErrInscriptionNotFound
	}
	return first.Clone(), nil
}

func (t *fakeTx) Insert(ctx context.Context, ins *domain.Inscription) error {
	if _, err := t.FindActive(ctx, ins.EventID, ins.UserID); err == nil {
		return domain.ErrDuplicateRegistration
	}
	ins.ID = fmt.Sprintf("ins-%d", t.nextID)
	t.nextID++
	t.records[ins.ID] = ins.Clone()
	return nil
}

func (t *fakeTx) Update(ctx context.Context, ins *domain.Inscription) error {
	if _, ok := t.records[ins.ID]; !ok {
		return domain.ErrInscriptionNotFound
	}
	t.records[ins.ID] = ins.Clone()
	return nil
}

func (t *fakeTx) ShiftWaitlist(ctx context.Context, eventID string, after int, at time.Time) error {
	for _, ins := range t.records {
		if ins.EventID == eventID && ins.Position() > after {
			if err := ins.MoveUp(at); err != nil {
				return err
			}
		}
	}
	return nil
}

// fakeCatalog is an in-memory EventCatalog for tests.
type fakeCatalog struct {
	byID map[string]*domain.EventSnapshot
	err  error // if set, GetEvent returns this error
}

func newFakeCatalog(events ...*domain.EventSnapshot) *fakeCatalog {
	c := &fakeCatalog{byID: make(map[string]*domain.EventSnapshot)}
	for _, e := range events {
		c.byID[e.ID] = e
	}
	return c
}

func (c *fakeCatalog) GetEvent(ctx context.Context, id string) (*domain.EventSnapshot, error) {
	if c.err != nil {
		return nil, c.err
	}
	if e, ok := c.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrEventNotFound
}

// fakeDirectory is an in-memory UserDirectory for tests.
type fakeDirectory struct {
	byID map[string]*domain.UserSnapshot
}

func newFakeDirectory(ids ...string) *fakeDirectory {
	d := &fakeDirectory{byID: make(map[string]*domain.UserSnapshot)}
	for _, id := range ids {
		d.byID[id] = &domain.UserSnapshot{ID: id, Email: id + "@example.org", Name: "Name " + id}
	}
	return d
}

func (d *fakeDirectory) GetUser(ctx context.Context, id string) (*domain.UserSnapshot, error) {
	if u, ok := d.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type fakeAuthorizer struct{}

func (fakeAuthorizer) CanManageInscription(actor domain.Actor, ins *domain.Inscription) bool {
	return actor.UserID == ins.UserID || actor.HasRole(domain.RoleAdmin)
}

func (fakeAuthorizer) CanResync(actor domain.Actor) bool {
	return actor.HasRole(domain.RoleAdmin)
}

// fakeEmailService records what would have been sent.
type fakeEmailService struct {
	mu         sync.Mutex
	receipts   []*domain.RegistrationEmailData
	promotions []*domain.PromotionEmailData
	err        error
}

func (f *fakeEmailService) SendRegistrationReceipt(ctx context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts = append(f.receipts, data)
	return f.err
}

func (f *fakeEmailService) SendPromotion(ctx context.Context, data *domain.PromotionEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promotions = append(f.promotions, data)
	return f.err
}
