package badger

import (
	"context"
	"fmt"
	"time"

	"membershipevents/internal/domain"
)

// inscriptionTx is the working set of one event held under the event lock.
// Reads return clones so callers can only change state through Insert and Update.
type inscriptionTx struct {
	store        *inscriptionStore
	eventID      string
	records      map[string]*domain.Inscription
	dirty        map[string]struct{}
	touchedUsers map[string]struct{}
	ledger       *ledgerRecord
	ledgerDirty  bool
}

func newInscriptionTx(store *inscriptionStore, eventID string, records map[string]*domain.Inscription) *inscriptionTx {
	return &inscriptionTx{
		store:        store,
		eventID:      eventID,
		records:      records,
		dirty:        make(map[string]struct{}),
		touchedUsers: make(map[string]struct{}),
	}
}

func (t *inscriptionTx) changed() bool {
	return len(t.dirty) > 0 || t.ledgerDirty
}

func (t *inscriptionTx) checkEvent(eventID string) error {
	if eventID != t.eventID {
		return fmt.Errorf("unit of work for event %s used with event %s: %w", t.eventID, eventID, domain.ErrInvalidInput)
	}
	return nil
}

func (t *inscriptionTx) LockLedger(ctx context.Context, eventID string, snapshot *domain.EventSnapshot) (domain.Ledger, error) {
	if err := t.checkEvent(eventID); err != nil {
		return domain.Ledger{}, err
	}
	if t.ledger == nil {
		rec, err := t.store.readLedger(eventID)
		if err != nil {
			return domain.Ledger{}, fmt.Errorf("read ledger: %w", err)
		}
		if rec == nil {
			if snapshot == nil {
				return domain.Ledger{}, domain.ErrEventNotFound
			}
			rec = &ledgerRecord{Capacity: snapshot.Capacity, Confirmed: t.countConfirmed()}
			t.ledgerDirty = true
		}
		t.ledger = rec
	}
	if snapshot != nil && snapshot.Capacity != t.ledger.Capacity {
		t.ledger.Capacity = snapshot.Capacity
		t.ledgerDirty = true
	}
	return domain.Ledger{
		EventID:   eventID,
		Capacity:  t.ledger.Capacity,
		Confirmed: t.ledger.Confirmed,
	}, nil
}

func (t *inscriptionTx) AdjustConfirmed(ctx context.Context, eventID string, delta int) error {
	if err := t.checkEvent(eventID); err != nil {
		return err
	}
	if t.ledger == nil {
		return fmt.Errorf("adjust confirmed before ledger lock: %w", domain.ErrInvalidTransition)
	}
	t.ledger.Confirmed = max(t.ledger.Confirmed+delta, 0)
	t.ledgerDirty = true
	return nil
}

func (t *inscriptionTx) FindActive(ctx context.Context, eventID, userID string) (*domain.Inscription, error) {
	if err := t.checkEvent(eventID); err != nil {
		return nil, err
	}
	for _, ins := range t.records {
		if ins.UserID == userID && ins.Active() {
			return ins.Clone(), nil
		}
	}
	return nil, domain.ErrInscriptionNotFound
}

func (t *inscriptionTx) Get(ctx context.Context, id string) (*domain.Inscription, error) {
	ins, ok := t.records[id]
	if !ok {
		return nil, domain.ErrInscriptionNotFound
	}
	return ins.Clone(), nil
}

func (t *inscriptionTx) MaxWaitlistPosition(ctx context.Context, eventID string) (int, error) {
	if err := t.checkEvent(eventID); err != nil {
		return 0, err
	}
	last := 0
	for _, ins := range t.records {
		last = max(last, ins.Position())
	}
	return last, nil
}

func (t *inscriptionTx) FirstWaitlisted(ctx context.Context, eventID string) (*domain.Inscription, error) {
	if err := t.checkEvent(eventID); err != nil {
		return nil, err
	}
	var first *domain.Inscription
	for _, ins := range t.records {
		if ins.Status != domain.StatusWaitlist {
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

func (t *inscriptionTx) Insert(ctx context.Context, ins *domain.Inscription) error {
	if err := t.checkEvent(ins.EventID); err != nil {
		return err
	}
	if _, err := t.FindActive(ctx, ins.EventID, ins.UserID); err == nil {
		return domain.ErrDuplicateRegistration
	}
	if err := ins.Validate(); err != nil {
		return err
	}
	ins.ID = t.store.newID()
	t.put(ins)
	return nil
}

func (t *inscriptionTx) Update(ctx context.Context, ins *domain.Inscription) error {
	if _, ok := t.records[ins.ID]; !ok {
		return domain.ErrInscriptionNotFound
	}
	if err := ins.Validate(); err != nil {
		return err
	}
	t.put(ins)
	return nil
}

func (t *inscriptionTx) ShiftWaitlist(ctx context.Context, eventID string, after int, at time.Time) error {
	if err := t.checkEvent(eventID); err != nil {
		return err
	}
	for _, ins := range t.records {
		if ins.Position() <= after {
			continue
		}
		moved := ins.Clone()
		if err := moved.MoveUp(at); err != nil {
			return err
		}
		t.put(moved)
	}
	return nil
}

func (t *inscriptionTx) put(ins *domain.Inscription) {
	t.records[ins.ID] = ins.Clone()
	t.dirty[ins.ID] = struct{}{}
	t.touchedUsers[ins.UserID] = struct{}{}
}

func (t *inscriptionTx) countConfirmed() int {
	n := 0
	for _, ins := range t.records {
		if ins.Status == domain.StatusConfirmed {
			n++
		}
	}
	return n
}
