package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"membershipevents/internal/domain"
)

const inscriptionColumns = `id, event_id, user_id, status, waitlist_position, payment_status, notes, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type inscriptionStore struct {
	DB *sql.DB
}

// NewInscriptionStore returns the transactional inscription store. Every unit
// of work runs in one transaction that holds a row lock on the event.
func NewInscriptionStore(db *sql.DB) domain.InscriptionStore {
	return &inscriptionStore{DB: db}
}

func (s *inscriptionStore) WithinEvent(ctx context.Context, eventID string, fn func(tx domain.InscriptionTx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&inscriptionTx{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *inscriptionStore) GetByID(ctx context.Context, id string) (*domain.Inscription, error) {
	return getInscription(ctx, s.DB, id)
}

func (s *inscriptionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Inscription, error) {
	query := `
		SELECT ` + inscriptionColumns + `
		FROM inscriptions
		WHERE user_id = $1 AND status <> 'cancelled'
		ORDER BY created_at ASC
	`
	return listInscriptions(ctx, s.DB, query, userID)
}

func (s *inscriptionStore) ListByEvent(ctx context.Context, eventID string) ([]*domain.Inscription, error) {
	query := `
		SELECT ` + inscriptionColumns + `
		FROM inscriptions
		WHERE event_id = $1 AND status <> 'cancelled'
		ORDER BY CASE WHEN status = 'waitlist' THEN 1 ELSE 0 END, waitlist_position ASC NULLS FIRST, created_at ASC
	`
	return listInscriptions(ctx, s.DB, query, eventID)
}

// Resync recomputes every event's confirmed_count from the inscriptions table.
// confirmed_count is the only denormalised value this strategy keeps.
func (s *inscriptionStore) Resync(ctx context.Context) (*domain.ResyncReport, error) {
	query := `
		UPDATE events e
		SET confirmed_count = c.confirmed
		FROM (
			SELECT ev.id, COUNT(i.id) AS confirmed
			FROM events ev
			LEFT JOIN inscriptions i ON i.event_id = ev.id AND i.status = 'confirmed'
			GROUP BY ev.id
		) c
		WHERE e.id = c.id AND e.confirmed_count <> c.confirmed
	`
	result, err := s.DB.ExecContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("recount confirmed inscriptions: %w", err)
	}
	repaired, _ := result.RowsAffected()

	var records int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM inscriptions`).Scan(&records); err != nil {
		return nil, fmt.Errorf("count inscriptions: %w", err)
	}
	return &domain.ResyncReport{
		Strategy:        "postgres",
		Records:         records,
		LedgersRepaired: int(repaired),
	}, nil
}

type inscriptionTx struct {
	q queryer
}

func (t *inscriptionTx) LockLedger(ctx context.Context, eventID string, _ *domain.EventSnapshot) (domain.Ledger, error) {
	query := `
		SELECT capacity, confirmed_count
		FROM events
		WHERE id = $1
		FOR UPDATE
	`
	l := domain.Ledger{EventID: eventID}
	err := t.q.QueryRowContext(ctx, query, eventID).Scan(&l.Capacity, &l.Confirmed)
	if err != nil {
		if isMissingRow(err) {
			return domain.Ledger{}, domain.ErrEventNotFound
		}
		return domain.Ledger{}, err
	}
	return l, nil
}

func (t *inscriptionTx) AdjustConfirmed(ctx context.Context, eventID string, delta int) error {
	query := `UPDATE events SET confirmed_count = GREATEST(confirmed_count + $2, 0) WHERE id = $1`
	result, err := t.q.ExecContext(ctx, query, eventID, delta)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (t *inscriptionTx) FindActive(ctx context.Context, eventID, userID string) (*domain.Inscription, error) {
	query := `
		SELECT ` + inscriptionColumns + `
		FROM inscriptions
		WHERE event_id = $1 AND user_id = $2 AND status <> 'cancelled'
	`
	ins, err := scanInscription(t.q.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if isMissingRow(err) {
			return nil, domain.ErrInscriptionNotFound
		}
		return nil, err
	}
	return ins, nil
}

func (t *inscriptionTx) Get(ctx context.Context, id string) (*domain.Inscription, error) {
	return getInscription(ctx, t.q, id)
}

func (t *inscriptionTx) MaxWaitlistPosition(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COALESCE(MAX(waitlist_position), 0)
		FROM inscriptions
		WHERE event_id = $1 AND status = 'waitlist'
	`
	var pos int
	if err := t.q.QueryRowContext(ctx, query, eventID).Scan(&pos); err != nil {
		return 0, err
	}
	return pos, nil
}

func (t *inscriptionTx) FirstWaitlisted(ctx context.Context, eventID string) (*domain.Inscription, error) {
	query := `
		SELECT ` + inscriptionColumns + `
		FROM inscriptions
		WHERE event_id = $1 AND status = 'waitlist'
		ORDER BY waitlist_position ASC
		LIMIT 1
	`
	ins, err := scanInscription(t.q.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if isMissingRow(err) {
			return nil, domain.ErrInscriptionNotFound
		}
		return nil, err
	}
	return ins, nil
}

func (t *inscriptionTx) Insert(ctx context.Context, ins *domain.Inscription) error {
	query := `
		INSERT INTO inscriptions (event_id, user_id, status, waitlist_position, payment_status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := t.q.QueryRowContext(ctx, query,
		ins.EventID, ins.UserID, string(ins.Status), nullPosition(ins.WaitlistPosition),
		string(ins.PaymentStatus), ins.Notes, ins.CreatedAt, ins.UpdatedAt,
	).Scan(&ins.ID)
	if err != nil {
		if hasCode(err, codeUniqueViolation) {
			return domain.ErrDuplicateRegistration
		}
		return err
	}
	return nil
}

func (t *inscriptionTx) Update(ctx context.Context, ins *domain.Inscription) error {
	query := `
		UPDATE inscriptions
		SET status = $2, waitlist_position = $3, payment_status = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := t.q.ExecContext(ctx, query,
		ins.ID, string(ins.Status), nullPosition(ins.WaitlistPosition), string(ins.PaymentStatus), ins.UpdatedAt,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInscriptionNotFound
	}
	return nil
}

func (t *inscriptionTx) ShiftWaitlist(ctx context.Context, eventID string, after int, at time.Time) error {
	query := `
		UPDATE inscriptions
		SET waitlist_position = waitlist_position - 1, updated_at = $3
		WHERE event_id = $1 AND status = 'waitlist' AND waitlist_position > $2
	`
	_, err := t.q.ExecContext(ctx, query, eventID, after, at)
	return err
}

func getInscription(ctx context.Context, q queryer, id string) (*domain.Inscription, error) {
	query := `
		SELECT ` + inscriptionColumns + `
		FROM inscriptions
		WHERE id = $1
	`
	ins, err := scanInscription(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if isMissingRow(err) {
			return nil, domain.ErrInscriptionNotFound
		}
		return nil, err
	}
	return ins, nil
}

func listInscriptions(ctx context.Context, q queryer, query string, arg string) ([]*domain.Inscription, error) {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		if hasCode(err, codeInvalidTextFormat) {
			return make([]*domain.Inscription, 0), nil
		}
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Inscription, 0)
	for rows.Next() {
		ins, err := scanInscription(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, ins)
	}
	return list, rows.Err()
}

func scanInscription(row rowScanner) (*domain.Inscription, error) {
	ins := &domain.Inscription{}
	var status, payment string
	var position sql.NullInt64
	var notes sql.NullString
	if err := row.Scan(&ins.ID, &ins.EventID, &ins.UserID, &status, &position, &payment, &notes, &ins.CreatedAt, &ins.UpdatedAt); err != nil {
		return nil, err
	}
	ins.Status = domain.InscriptionStatus(status)
	ins.PaymentStatus = domain.PaymentStatus(payment)
	ins.Notes = notes.String
	if position.Valid {
		p := int(position.Int64)
		ins.WaitlistPosition = &p
	}
	if err := ins.Validate(); err != nil {
		return nil, err
	}
	return ins, nil
}

func nullPosition(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
