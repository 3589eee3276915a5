package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"membershipevents/internal/domain"
)

// maxConflictRetries bounds how often a projection rewrite is retried after
// a concurrent canonical commit invalidated its read set.
const maxConflictRetries = 8

// ledgerRecord is the stored confirmed-seat ledger of one event.
type ledgerRecord struct {
	Capacity  domain.Capacity `json:"capacity"`
	Confirmed int             `json:"confirmed"`
}

type inscriptionStore struct {
	db     *badger.DB
	locks  *keyedLock
	logger *slog.Logger
	newID  func() string
}

// NewInscriptionStore returns the document-strategy inscription store.
//
// Writes follow a fixed order: canonical records, ledger and dirty markers in
// one badger transaction, then inscriptions:byEvent, then inscriptions:byUser.
// Between the canonical commit and the projection rewrites a list read may be
// stale; every list read checks the dirty marker of its key first and rebuilds
// the projection before serving it, so the window is never observed through
// this store. A crash inside the window leaves the markers set and the next
// read or Resync repairs it.
func NewInscriptionStore(db *badger.DB, logger *slog.Logger) domain.InscriptionStore {
	return &inscriptionStore{
		db:     db,
		locks:  newKeyedLock(),
		logger: logger,
		newID:  uuid.NewString,
	}
}

func (s *inscriptionStore) WithinEvent(ctx context.Context, eventID string, fn func(tx domain.InscriptionTx) error) error {
	unlock, err := s.locks.Lock(ctx, eventID)
	if err != nil {
		return fmt.Errorf("lock event %s: %w", eventID, err)
	}
	defer unlock()

	records, err := s.loadEvent(eventID)
	if err != nil {
		return fmt.Errorf("load event inscriptions: %w", err)
	}
	tx := newInscriptionTx(s, eventID, records)
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.changed() {
		return nil
	}
	if err := s.commit(tx); err != nil {
		return fmt.Errorf("commit canonical records: %w", err)
	}

	if err := s.rebuildEvent(eventID); err != nil {
		s.logger.WarnContext(ctx, "event view left dirty", "event_id", eventID, "err", err)
	}
	for userID := range tx.touchedUsers {
		if err := s.rebuildUser(userID); err != nil {
			s.logger.WarnContext(ctx, "user view left dirty", "user_id", userID, "err", err)
		}
	}
	return nil
}

func (s *inscriptionStore) GetByID(ctx context.Context, id string) (*domain.Inscription, error) {
	var ins *domain.Inscription
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(canonicalKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			ins, err = decodeInscription(val)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrInscriptionNotFound
		}
		return nil, err
	}
	return ins, nil
}

func (s *inscriptionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Inscription, error) {
	dirty, err := s.exists(dirtyUserKey(userID))
	if err != nil {
		return nil, err
	}
	if dirty {
		if err := s.rebuildUser(userID); err != nil {
			return nil, fmt.Errorf("repair user view: %w", err)
		}
	}
	list, err := s.readView(byUserKey(userID))
	if err != nil {
		return nil, err
	}
	list = activeOnly(list)
	domain.SortByCreation(list)
	return list, nil
}

func (s *inscriptionStore) ListByEvent(ctx context.Context, eventID string) ([]*domain.Inscription, error) {
	dirty, err := s.exists(dirtyEventKey(eventID))
	if err != nil {
		return nil, err
	}
	if dirty {
		if err := s.rebuildEvent(eventID); err != nil {
			return nil, fmt.Errorf("repair event view: %w", err)
		}
	}
	list, err := s.readView(byEventKey(eventID))
	if err != nil {
		return nil, err
	}
	list = activeOnly(list)
	domain.SortForEvent(list)
	return list, nil
}

// loadEvent returns the canonical records of one event keyed by id.
func (s *inscriptionStore) loadEvent(eventID string) (map[string]*domain.Inscription, error) {
	records := make(map[string]*domain.Inscription)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanCanonical(txn, func(ins *domain.Inscription) {
			if ins.EventID == eventID {
				records[ins.ID] = ins
			}
		})
	})
	return records, err
}

func (s *inscriptionStore) readLedger(eventID string) (*ledgerRecord, error) {
	var rec *ledgerRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(ledgerKey(eventID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec = &ledgerRecord{}
			return json.Unmarshal(val, rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return rec, err
}

// commit writes the canonical side of a unit of work in one badger transaction.
func (s *inscriptionStore) commit(tx *inscriptionTx) error {
	stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	return s.db.Update(func(txn *badger.Txn) error {
		for id := range tx.dirty {
			data, err := json.Marshal(tx.records[id])
			if err != nil {
				return fmt.Errorf("encode inscription %s: %w", id, err)
			}
			if err := txn.Set(canonicalKey(id), data); err != nil {
				return err
			}
		}
		if tx.ledger != nil && tx.ledgerDirty {
			data, err := json.Marshal(tx.ledger)
			if err != nil {
				return fmt.Errorf("encode ledger: %w", err)
			}
			if err := txn.Set(ledgerKey(tx.eventID), data); err != nil {
				return err
			}
		}
		if err := txn.Set(dirtyEventKey(tx.eventID), stamp); err != nil {
			return err
		}
		for userID := range tx.touchedUsers {
			if err := txn.Set(dirtyUserKey(userID), stamp); err != nil {
				return err
			}
		}
		return nil
	})
}

// rebuildEvent rewrites inscriptions:byEvent:{eventID} from canonical records
// and clears the event's dirty marker in the same transaction.
func (s *inscriptionStore) rebuildEvent(eventID string) error {
	return s.rewriteView(dirtyEventKey(eventID), byEventKey(eventID), func(ins *domain.Inscription) bool {
		return ins.EventID == eventID
	}, domain.SortForEvent)
}

// rebuildUser rewrites inscriptions:byUser:{userID} from canonical records.
func (s *inscriptionStore) rebuildUser(userID string) error {
	return s.rewriteView(dirtyUserKey(userID), byUserKey(userID), func(ins *domain.Inscription) bool {
		return ins.UserID == userID
	}, domain.SortByCreation)
}

// rewriteView reads the dirty marker inside the transaction so that a canonical
// commit landing after the scan makes this transaction conflict and retry
// instead of clearing the marker over a stale projection.
func (s *inscriptionStore) rewriteView(marker, key []byte, match func(*domain.Inscription) bool, order func([]*domain.Inscription)) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get(marker); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			list := make([]*domain.Inscription, 0)
			if err := scanCanonical(txn, func(ins *domain.Inscription) {
				if match(ins) {
					list = append(list, ins)
				}
			}); err != nil {
				return err
			}
			order(list)
			data, err := json.Marshal(list)
			if err != nil {
				return err
			}
			if err := txn.Set(key, data); err != nil {
				return err
			}
			return txn.Delete(marker)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *inscriptionStore) readView(key []byte) ([]*domain.Inscription, error) {
	list := make([]*domain.Inscription, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &list)
		})
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}
	return list, nil
}

func (s *inscriptionStore) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func scanCanonical(txn *badger.Txn, visit func(*domain.Inscription)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(canonicalPrefix)
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			ins, err := decodeInscription(val)
			if err != nil {
				return err
			}
			visit(ins)
			return nil
		})
		if err != nil {
			return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
	}
	return nil
}

func decodeInscription(val []byte) (*domain.Inscription, error) {
	ins := &domain.Inscription{}
	if err := json.Unmarshal(val, ins); err != nil {
		return nil, err
	}
	if err := ins.Validate(); err != nil {
		return nil, err
	}
	return ins, nil
}

func activeOnly(list []*domain.Inscription) []*domain.Inscription {
	out := make([]*domain.Inscription, 0, len(list))
	for _, ins := range list {
		if ins.Active() {
			out = append(out, ins)
		}
	}
	return out
}
