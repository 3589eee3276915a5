package services

import (
	"context"
	"testing"
	"time"

	"membershipevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWaitlist(t *testing.T, store *fakeInscriptionStore, eventID string, confirmed []string, waitlisted []string) {
	t.Helper()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	err := store.WithinEvent(context.Background(), eventID, func(tx domain.InscriptionTx) error {
		for _, u := range confirmed {
			if err := tx.Insert(context.Background(), domain.NewConfirmedInscription(eventID, u, "", at)); err != nil {
				return err
			}
		}
		for i, u := range waitlisted {
			if err := tx.Insert(context.Background(), domain.NewWaitlistedInscription(eventID, u, "", i+1, at)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	store.ledgers[eventID] = domain.Ledger{EventID: eventID, Confirmed: len(confirmed)}
}

func TestWaitlistManager_PromoteNext(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("promotes first and renumbers", func(t *testing.T) {
		store := newFakeInscriptionStore()
		seedWaitlist(t, store, "ev-1", []string{"u1"}, []string{"u2", "u3", "u4"})
		m := NewWaitlistManager(discardLogger())

		var promoted *domain.Inscription
		err := store.WithinEvent(ctx, "ev-1", func(tx domain.InscriptionTx) error {
			var err error
			promoted, err = m.PromoteNext(ctx, tx, domain.Ledger{EventID: "ev-1", Capacity: domain.Limited(2), Confirmed: 1}, now)
			return err
		})
		require.NoError(t, err)
		require.NotNil(t, promoted)
		assert.Equal(t, "u2", promoted.UserID)
		assert.Equal(t, domain.StatusConfirmed, promoted.Status)
		assert.Nil(t, promoted.WaitlistPosition)
		assert.Equal(t, now, promoted.UpdatedAt)

		assert.Equal(t, 1, store.byUser("ev-1", "u3").Position())
		assert.Equal(t, 2, store.byUser("ev-1", "u4").Position())
		assert.Equal(t, 2, store.ledgers["ev-1"].Confirmed)
	})

	t.Run("no free seat", func(t *testing.T) {
		store := newFakeInscriptionStore()
		seedWaitlist(t, store, "ev-1", []string{"u1", "u2"}, []string{"u3"})
		m := NewWaitlistManager(discardLogger())

		err := store.WithinEvent(ctx, "ev-1", func(tx domain.InscriptionTx) error {
			promoted, err := m.PromoteNext(ctx, tx, domain.Ledger{EventID: "ev-1", Capacity: domain.Limited(2), Confirmed: 2}, now)
			assert.Nil(t, promoted)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, store.byUser("ev-1", "u3").Position())
	})

	t.Run("empty waitlist", func(t *testing.T) {
		store := newFakeInscriptionStore()
		seedWaitlist(t, store, "ev-1", []string{"u1"}, nil)
		m := NewWaitlistManager(discardLogger())

		err := store.WithinEvent(ctx, "ev-1", func(tx domain.InscriptionTx) error {
			promoted, err := m.PromoteNext(ctx, tx, domain.Ledger{EventID: "ev-1", Capacity: domain.Limited(3), Confirmed: 1}, now)
			assert.Nil(t, promoted)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, store.ledgers["ev-1"].Confirmed)
	})
}

func TestWaitlistManager_Compact(t *testing.T) {
	ctx := context.Background()
	store := newFakeInscriptionStore()
	seedWaitlist(t, store, "ev-1", nil, []string{"u1", "u2", "u3"})
	m := NewWaitlistManager(discardLogger())

	err := store.WithinEvent(ctx, "ev-1", func(tx domain.InscriptionTx) error {
		ins, err := tx.FindActive(ctx, "ev-1", "u2")
		require.NoError(t, err)
		if _, err := ins.Cancel(time.Now()); err != nil {
			return err
		}
		if err := tx.Update(ctx, ins); err != nil {
			return err
		}
		return m.Compact(ctx, tx, "ev-1", 2, time.Now())
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.byUser("ev-1", "u1").Position())
	assert.Equal(t, 2, store.byUser("ev-1", "u3").Position())

	t.Run("non-positive position is a no-op", func(t *testing.T) {
		err := store.WithinEvent(ctx, "ev-1", func(tx domain.InscriptionTx) error {
			return m.Compact(ctx, tx, "ev-1", 0, time.Now())
		})
		require.NoError(t, err)
		assert.Equal(t, 1, store.byUser("ev-1", "u1").Position())
	})
}
