package postgres

import (
	"context"
	"database/sql"

	"membershipevents/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns the member directory backed by the users table.
func NewUserRepository(db *sql.DB) domain.UserDirectory {
	return &userRepository{DB: db}
}

func (r *userRepository) GetUser(ctx context.Context, id string) (*domain.UserSnapshot, error) {
	query := `
		SELECT id, email, name, last_name
		FROM users
		WHERE id = $1
	`
	u := &domain.UserSnapshot{}
	var name, lastName sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &name, &lastName)
	if err != nil {
		if isMissingRow(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Name = name.String
	u.LastName = lastName.String
	return u, nil
}
