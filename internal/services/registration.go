package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"membershipevents/internal/domain"
)

const maxNotesLength = 500

// freshEventReader is implemented by catalogs that cache snapshots. Register
// uses it so publication, the registration window and the start date are
// never checked against a stale copy.
type freshEventReader interface {
	GetEventFresh(ctx context.Context, id string) (*domain.EventSnapshot, error)
}

// cacheFlusher is implemented by caching collaborators. A resync flushes them.
type cacheFlusher interface {
	Flush(ctx context.Context)
}

type registrationService struct {
	events   domain.EventCatalog
	users    domain.UserDirectory
	store    domain.InscriptionStore
	authz    domain.Authorizer
	waitlist *WaitlistManager
	email    domain.EmailService
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegistrationService creates a RegistrationService. emailService may be nil
// to disable notifications.
func NewRegistrationService(
	events domain.EventCatalog,
	users domain.UserDirectory,
	store domain.InscriptionStore,
	authz domain.Authorizer,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		events:   events,
		users:    users,
		store:    store,
		authz:    authz,
		waitlist: NewWaitlistManager(logger),
		email:    emailService,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, userID, eventID, notes string) (*domain.RegistrationResult, error) {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, fmt.Errorf("%w: notes must be at most %d characters", domain.ErrInvalidInput, maxNotesLength)
	}

	event, err := s.freshEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	now := s.now()
	if !event.Published {
		return nil, domain.ErrEventClosed
	}
	if !event.StartDate.After(now) {
		return nil, domain.ErrEventExpired
	}
	if !event.RegistrationOpen {
		return nil, domain.ErrRegistrationClosed
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var ins *domain.Inscription
	err = s.store.WithinEvent(ctx, eventID, func(tx domain.InscriptionTx) error {
		ledger, err := tx.LockLedger(ctx, eventID, event)
		if err != nil {
			return fmt.Errorf("lock ledger: %w", err)
		}
		if _, err := tx.FindActive(ctx, eventID, userID); err == nil {
			return domain.ErrDuplicateRegistration
		} else if !errors.Is(err, domain.ErrInscriptionNotFound) {
			return fmt.Errorf("find active inscription: %w", err)
		}

		switch DecideStatus(ledger) {
		case domain.StatusConfirmed:
			ins = domain.NewConfirmedInscription(eventID, userID, notes, now)
			if err := tx.AdjustConfirmed(ctx, eventID, 1); err != nil {
				return fmt.Errorf("increment confirmed count: %w", err)
			}
		default:
			last, err := tx.MaxWaitlistPosition(ctx, eventID)
			if err != nil {
				return fmt.Errorf("max waitlist position: %w", err)
			}
			ins = domain.NewWaitlistedInscription(eventID, userID, notes, last+1, now)
		}
		if err := tx.Insert(ctx, ins); err != nil {
			if errors.Is(err, domain.ErrDuplicateRegistration) {
				return err
			}
			return fmt.Errorf("insert inscription: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRegistration) || errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.InfoContext(ctx, "inscription created",
		"event_id", eventID,
		"user_id", userID,
		"inscription_id", ins.ID,
		"status", ins.Status,
		"waitlist_position", ins.Position(),
	)
	s.sendReceipt(ctx, user, event, ins)

	return &domain.RegistrationResult{
		Status:           ins.Status,
		WaitlistPosition: ins.WaitlistPosition,
		Inscription:      ins,
	}, nil
}

func (s *registrationService) Cancel(ctx context.Context, actor domain.Actor, inscriptionID string) (*domain.CancellationResult, error) {
	existing, err := s.store.GetByID(ctx, inscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrInscriptionNotFound) {
			return nil, domain.ErrInscriptionNotFound
		}
		return nil, fmt.Errorf("get inscription: %w", err)
	}
	if !s.authz.CanManageInscription(actor, existing) {
		return nil, domain.ErrNotOwner
	}

	// A missing catalog entry must not block a cancellation; the store falls
	// back to the capacity it recorded at registration time.
	event, err := s.events.GetEvent(ctx, existing.EventID)
	if err != nil {
		if !errors.Is(err, domain.ErrEventNotFound) {
			return nil, fmt.Errorf("get event: %w", err)
		}
		event = nil
	}

	var promoted *domain.Inscription
	err = s.store.WithinEvent(ctx, existing.EventID, func(tx domain.InscriptionTx) error {
		ledger, err := tx.LockLedger(ctx, existing.EventID, event)
		if err != nil {
			return fmt.Errorf("lock ledger: %w", err)
		}
		current, err := tx.Get(ctx, inscriptionID)
		if err != nil {
			return err
		}
		position := current.Position()
		now := s.now()
		prev, err := current.Cancel(now)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, current); err != nil {
			return fmt.Errorf("cancel inscription: %w", err)
		}

		switch prev {
		case domain.StatusConfirmed:
			if err := tx.AdjustConfirmed(ctx, current.EventID, -1); err != nil {
				return fmt.Errorf("decrement confirmed count: %w", err)
			}
			if ledger.Confirmed > 0 {
				ledger.Confirmed--
			}
			promoted, err = s.waitlist.PromoteNext(ctx, tx, ledger, now)
			return err
		case domain.StatusWaitlist:
			return s.waitlist.Compact(ctx, tx, current.EventID, position, now)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCancelled) || errors.Is(err, domain.ErrInscriptionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("cancel: %w", err)
	}

	s.logger.InfoContext(ctx, "inscription cancelled",
		"inscription_id", inscriptionID,
		"event_id", existing.EventID,
		"actor", actor.UserID,
	)
	if promoted != nil {
		s.sendPromotion(ctx, event, promoted)
	}
	return &domain.CancellationResult{Cancelled: true, Promoted: promoted}, nil
}

func (s *registrationService) ListByUser(ctx context.Context, userID string) ([]*domain.Inscription, error) {
	all, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list inscriptions by user: %w", err)
	}
	out := make([]*domain.Inscription, 0, len(all))
	for _, ins := range all {
		if ins.Active() {
			out = append(out, ins)
		}
	}
	domain.SortByCreation(out)
	return out, nil
}

func (s *registrationService) ListByEvent(ctx context.Context, eventID string) ([]*domain.Inscription, error) {
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	all, err := s.store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list inscriptions by event: %w", err)
	}
	out := make([]*domain.Inscription, 0, len(all))
	for _, ins := range all {
		if ins.Active() {
			out = append(out, ins)
		}
	}
	domain.SortForEvent(out)
	return out, nil
}

func (s *registrationService) Resync(ctx context.Context, actor domain.Actor) (*domain.ResyncReport, error) {
	if !s.authz.CanResync(actor) {
		return nil, domain.ErrForbidden
	}
	report, err := s.store.Resync(ctx)
	if err != nil {
		return nil, fmt.Errorf("resync: %w", err)
	}
	s.flushCaches(ctx)
	s.logger.InfoContext(ctx, "inscription views resynced",
		"strategy", report.Strategy,
		"records", report.Records,
		"ledgers_repaired", report.LedgersRepaired,
	)
	return report, nil
}

func (s *registrationService) freshEvent(ctx context.Context, id string) (*domain.EventSnapshot, error) {
	if r, ok := s.events.(freshEventReader); ok {
		return r.GetEventFresh(ctx, id)
	}
	return s.events.GetEvent(ctx, id)
}

func (s *registrationService) flushCaches(ctx context.Context) {
	for _, c := range []any{s.events, s.users} {
		if f, ok := c.(cacheFlusher); ok {
			f.Flush(ctx)
		}
	}
}

func (s *registrationService) sendReceipt(ctx context.Context, user *domain.UserSnapshot, event *domain.EventSnapshot, ins *domain.Inscription) {
	if s.email == nil {
		return
	}
	data := &domain.RegistrationEmailData{
		Email:            user.Email,
		FirstName:        user.Name,
		EventTitle:       event.Title,
		StartDate:        event.StartDate,
		Waitlisted:       ins.Status == domain.StatusWaitlist,
		WaitlistPosition: ins.Position(),
	}
	if err := s.email.SendRegistrationReceipt(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "registration receipt not sent", "inscription_id", ins.ID, "err", err)
	}
}

func (s *registrationService) sendPromotion(ctx context.Context, event *domain.EventSnapshot, ins *domain.Inscription) {
	if s.email == nil {
		return
	}
	user, err := s.users.GetUser(ctx, ins.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "promotion email not sent", "inscription_id", ins.ID, "err", err)
		return
	}
	data := &domain.PromotionEmailData{
		Email:     user.Email,
		FirstName: user.Name,
	}
	if event != nil {
		data.EventTitle = event.Title
		data.StartDate = event.StartDate
	}
	if err := s.email.SendPromotion(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "promotion email not sent", "inscription_id", ins.ID, "err", err)
	}
}
