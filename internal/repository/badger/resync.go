package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"membershipevents/internal/domain"
)

// Resync rebuilds every projection and repairs every stored ledger from the
// canonical inscription records. Running it twice in a row is a no-op for the
// second run apart from rewriting identical projections.
func (s *inscriptionStore) Resync(ctx context.Context) (*domain.ResyncReport, error) {
	events := make(map[string]struct{})
	users := make(map[string]struct{})
	records := 0
	err := s.db.View(func(txn *badger.Txn) error {
		if err := scanCanonical(txn, func(ins *domain.Inscription) {
			records++
			events[ins.EventID] = struct{}{}
			users[ins.UserID] = struct{}{}
		}); err != nil {
			return err
		}
		// Markers left behind for keys with no canonical records still need clearing.
		if err := scanKeys(txn, dirtyEventPrefix, func(id string) { events[id] = struct{}{} }); err != nil {
			return err
		}
		return scanKeys(txn, dirtyUserPrefix, func(id string) { users[id] = struct{}{} })
	})
	if err != nil {
		return nil, fmt.Errorf("scan canonical records: %w", err)
	}

	report := &domain.ResyncReport{Strategy: "badger", Records: records}
	for _, eventID := range sortedKeys(events) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		repaired, err := s.repairLedger(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("repair ledger %s: %w", eventID, err)
		}
		if repaired {
			report.LedgersRepaired++
		}
		if err := s.rebuildEvent(eventID); err != nil {
			return nil, fmt.Errorf("rebuild event view %s: %w", eventID, err)
		}
		report.EventViews++
	}
	for _, userID := range sortedKeys(users) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.rebuildUser(userID); err != nil {
			return nil, fmt.Errorf("rebuild user view %s: %w", userID, err)
		}
		report.UserViews++
	}

	s.logger.InfoContext(ctx, "badger resync complete",
		"records", report.Records,
		"event_views", report.EventViews,
		"user_views", report.UserViews,
		"ledgers_repaired", report.LedgersRepaired,
	)
	return report, nil
}

// repairLedger recounts confirmed inscriptions of an event under its lock and
// rewrites the stored ledger when the count drifted. Events without a stored
// ledger are left alone; the first unit of work creates one from the catalog.
func (s *inscriptionStore) repairLedger(ctx context.Context, eventID string) (bool, error) {
	unlock, err := s.locks.Lock(ctx, eventID)
	if err != nil {
		return false, err
	}
	defer unlock()

	rec, err := s.readLedger(eventID)
	if err != nil || rec == nil {
		return false, err
	}
	records, err := s.loadEvent(eventID)
	if err != nil {
		return false, err
	}
	confirmed := newInscriptionTx(s, eventID, records).countConfirmed()
	if confirmed == rec.Confirmed {
		return false, nil
	}
	s.logger.WarnContext(ctx, "ledger drift repaired",
		"event_id", eventID,
		"stored", rec.Confirmed,
		"counted", confirmed,
	)
	rec.Confirmed = confirmed
	data, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(ledgerKey(eventID), data)
	})
	return err == nil, err
}

func scanKeys(txn *badger.Txn, prefix string, visit func(id string)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		id, ok := strings.CutPrefix(string(it.Item().Key()), prefix)
		if !ok || id == "" {
			return errors.New("malformed key " + string(it.Item().Key()))
		}
		visit(id)
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
