package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"membershipevents/internal/domain"
)

// WaitlistManager owns waitlist ordering and promotion. Its methods run inside
// the caller's unit of work, so a promotion and the renumbering that follows it
// commit or roll back together.
type WaitlistManager struct {
	logger *slog.Logger
}

// NewWaitlistManager returns a WaitlistManager that logs promotions to logger.
func NewWaitlistManager(logger *slog.Logger) *WaitlistManager {
	return &WaitlistManager{logger: logger}
}

// PromoteNext confirms the first waitlisted inscription of the event when the
// ledger has a free seat, then closes the gap it leaves in the waitlist.
// It returns nil when nothing was promoted.
func (m *WaitlistManager) PromoteNext(ctx context.Context, tx domain.InscriptionTx, ledger domain.Ledger, at time.Time) (*domain.Inscription, error) {
	if DecideStatus(ledger) != domain.StatusConfirmed {
		return nil, nil
	}
	next, err := tx.FirstWaitlisted(ctx, ledger.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrInscriptionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find first waitlisted: %w", err)
	}
	position := next.Position()
	if err := next.Promote(at); err != nil {
		return nil, err
	}
	if err := tx.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("promote inscription: %w", err)
	}
	if err := tx.AdjustConfirmed(ctx, ledger.EventID, 1); err != nil {
		return nil, fmt.Errorf("increment confirmed count: %w", err)
	}
	if err := m.Compact(ctx, tx, ledger.EventID, position, at); err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "waitlist promotion",
		"event_id", ledger.EventID,
		"inscription_id", next.ID,
		"user_id", next.UserID,
		"from_position", position,
	)
	return next, nil
}

// Compact closes the gap left at removedPosition.
func (m *WaitlistManager) Compact(ctx context.Context, tx domain.InscriptionTx, eventID string, removedPosition int, at time.Time) error {
	if removedPosition < 1 {
		return nil
	}
	if err := tx.ShiftWaitlist(ctx, eventID, removedPosition, at); err != nil {
		return fmt.Errorf("renumber waitlist: %w", err)
	}
	return nil
}
