package postgres

import (
	"context"
	"database/sql"

	"membershipevents/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns the event catalog backed by the events table.
func NewEventRepository(db *sql.DB) domain.EventCatalog {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetEvent(ctx context.Context, id string) (*domain.EventSnapshot, error) {
	query := `
		SELECT id, title, capacity, confirmed_count, published, registration_open, start_date, price
		FROM events
		WHERE id = $1
	`
	e := &domain.EventSnapshot{}
	var titleNull sql.NullString
	var priceNull sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &titleNull, &e.Capacity, &e.ConfirmedCount, &e.Published, &e.RegistrationOpen, &e.StartDate, &priceNull,
	)
	if err != nil {
		if isMissingRow(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	e.Title = titleNull.String
	e.Price = priceNull.Int64
	return e, nil
}
