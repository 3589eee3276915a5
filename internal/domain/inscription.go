package domain

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"
)

// InscriptionStatus is the capacity status of an inscription.
type InscriptionStatus string

const (
	// StatusPending is reserved for payment bookkeeping and never counts against capacity.
	StatusPending   InscriptionStatus = "pending"
	StatusConfirmed InscriptionStatus = "confirmed"
	StatusWaitlist  InscriptionStatus = "waitlist"
	StatusCancelled InscriptionStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s InscriptionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusWaitlist, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is tracked alongside an inscription but not governed by the registration core.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Inscription is a single member's registration for one event. Inscriptions are never deleted.
// swagger:model Inscription
type Inscription struct {
	ID               string            `json:"id"`
	EventID          string            `json:"event_id"`
	UserID           string            `json:"user_id"`
	Status           InscriptionStatus `json:"status"`
	WaitlistPosition *int              `json:"waitlist_position"`
	PaymentStatus    PaymentStatus     `json:"payment_status"`
	Notes            string            `json:"notes"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewConfirmedInscription returns a confirmed inscription. ID is set by the store on insert.
func NewConfirmedInscription(eventID, userID, notes string, createdAt time.Time) *Inscription {
	return &Inscription{
		EventID:       eventID,
		UserID:        userID,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPending,
		Notes:         notes,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

// NewWaitlistedInscription returns an inscription queued at the given waitlist position.
func NewWaitlistedInscription(eventID, userID, notes string, position int, createdAt time.Time) *Inscription {
	ins := NewConfirmedInscription(eventID, userID, notes, createdAt)
	ins.Status = StatusWaitlist
	ins.WaitlistPosition = &position
	return ins
}

// Position returns the waitlist position, or 0 when the inscription is not waitlisted.
func (i *Inscription) Position() int {
	if i.Status != StatusWaitlist || i.WaitlistPosition == nil {
		return 0
	}
	return *i.WaitlistPosition
}

// Active reports whether the inscription still holds a seat or a waitlist place.
func (i *Inscription) Active() bool {
	return i.Status != StatusCancelled
}

// Promote moves a waitlisted inscription to confirmed and clears its position.
func (i *Inscription) Promote(at time.Time) error {
	if i.Status != StatusWaitlist {
		return fmt.Errorf("promote %s inscription: %w", i.Status, ErrInvalidTransition)
	}
	i.Status = StatusConfirmed
	i.WaitlistPosition = nil
	i.UpdatedAt = at
	return nil
}

// Cancel marks the inscription cancelled and returns the status it held before.
func (i *Inscription) Cancel(at time.Time) (InscriptionStatus, error) {
	if i.Status == StatusCancelled {
		return StatusCancelled, ErrAlreadyCancelled
	}
	prev := i.Status
	i.Status = StatusCancelled
	i.WaitlistPosition = nil
	i.UpdatedAt = at
	return prev, nil
}

// MoveUp decrements the waitlist position by one.
func (i *Inscription) MoveUp(at time.Time) error {
	if i.Status != StatusWaitlist || i.WaitlistPosition == nil || *i.WaitlistPosition <= 1 {
		return fmt.Errorf("move up inscription %s: %w", i.ID, ErrInvalidTransition)
	}
	pos := *i.WaitlistPosition - 1
	i.WaitlistPosition = &pos
	i.UpdatedAt = at
	return nil
}

// Validate checks that a decoded inscription is in a representable state.
func (i *Inscription) Validate() error {
	if !i.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, i.Status)
	}
	if i.Status == StatusWaitlist {
		if i.WaitlistPosition == nil || *i.WaitlistPosition < 1 {
			return fmt.Errorf("%w: waitlisted inscription %s has no position", ErrInvalidInput, i.ID)
		}
	} else if i.WaitlistPosition != nil {
		return fmt.Errorf("%w: %s inscription %s has a waitlist position", ErrInvalidInput, i.Status, i.ID)
	}
	return nil
}

// Clone returns a deep copy of the inscription.
func (i *Inscription) Clone() *Inscription {
	c := *i
	if i.WaitlistPosition != nil {
		pos := *i.WaitlistPosition
		c.WaitlistPosition = &pos
	}
	return &c
}

// SortForEvent orders inscriptions confirmed first by creation time, then
// waitlisted by position.
func SortForEvent(list []*Inscription) {
	slices.SortStableFunc(list, func(a, b *Inscription) int {
		aw, bw := a.Status == StatusWaitlist, b.Status == StatusWaitlist
		switch {
		case aw && !bw:
			return 1
		case !aw && bw:
			return -1
		case aw && bw:
			return cmp.Compare(a.Position(), b.Position())
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// SortByCreation orders inscriptions oldest first.
func SortByCreation(list []*Inscription) {
	slices.SortStableFunc(list, func(a, b *Inscription) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// Ledger is an event's confirmed-seat count read under the event's exclusive lock.
type Ledger struct {
	EventID   string
	Capacity  Capacity
	Confirmed int
}

// InscriptionTx is a unit of work scoped to a single event. Every method runs
// under the event's exclusive lock; nothing is visible to other callers until
// the enclosing InscriptionStore.WithinEvent returns nil.
type InscriptionTx interface {
	// LockLedger returns the event's confirmed-seat ledger. snapshot carries the
	// catalog's view of the event and may be nil when the catalog no longer knows it.
	LockLedger(ctx context.Context, eventID string, snapshot *EventSnapshot) (Ledger, error)
	AdjustConfirmed(ctx context.Context, eventID string, delta int) error
	FindActive(ctx context.Context, eventID, userID string) (*Inscription, error)
	Get(ctx context.Context, id string) (*Inscription, error)
	MaxWaitlistPosition(ctx context.Context, eventID string) (int, error)
	FirstWaitlisted(ctx context.Context, eventID string) (*Inscription, error)
	Insert(ctx context.Context, ins *Inscription) error
	Update(ctx context.Context, ins *Inscription) error
	// ShiftWaitlist moves every waitlisted inscription of the event positioned after `after` up by one.
	ShiftWaitlist(ctx context.Context, eventID string, after int, at time.Time) error
}

// ResyncReport summarises a rebuild of derived inscription views.
// swagger:model ResyncReport
type ResyncReport struct {
	Strategy        string `json:"strategy"`
	Records         int    `json:"records"`
	EventViews      int    `json:"event_views"`
	UserViews       int    `json:"user_views"`
	LedgersRepaired int    `json:"ledgers_repaired"`
}

// InscriptionStore is the persistence adapter for inscriptions.
type InscriptionStore interface {
	// WithinEvent runs fn as one atomic unit serialised against every other unit for the same event.
	WithinEvent(ctx context.Context, eventID string, fn func(tx InscriptionTx) error) error
	GetByID(ctx context.Context, id string) (*Inscription, error)
	ListByUser(ctx context.Context, userID string) ([]*Inscription, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Inscription, error)
	// Resync rebuilds derived views from canonical records. It is idempotent.
	Resync(ctx context.Context) (*ResyncReport, error)
}

// RegistrationResult is returned by a successful registration.
// swagger:model RegistrationResult
type RegistrationResult struct {
	Status           InscriptionStatus `json:"status"`
	WaitlistPosition *int              `json:"waitlist_position,omitempty"`
	Inscription      *Inscription      `json:"inscription"`
}

// CancellationResult is returned by a successful cancellation.
// swagger:model CancellationResult
type CancellationResult struct {
	Cancelled bool         `json:"cancelled"`
	Promoted  *Inscription `json:"promoted,omitempty"`
}

// RegistrationService defines event registration with capacity and waitlist handling.
type RegistrationService interface {
	Register(ctx context.Context, userID, eventID, notes string) (*RegistrationResult, error)
	Cancel(ctx context.Context, actor Actor, inscriptionID string) (*CancellationResult, error)
	ListByUser(ctx context.Context, userID string) ([]*Inscription, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Inscription, error)
	Resync(ctx context.Context, actor Actor) (*ResyncReport, error)
}
