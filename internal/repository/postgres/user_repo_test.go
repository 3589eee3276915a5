package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"membershipevents/internal/domain"
)

func TestUserRepository_GetUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.UserSnapshot
		wantErr error
	}{
		{
			name: "success",
			id:   "user-uuid-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, email, name, last_name\s+FROM users`).
					WithArgs("user-uuid-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "last_name"}).
						AddRow("user-uuid-1", "alice@example.com", "Alice", nil))
			},
			want: &domain.UserSnapshot{ID: "user-uuid-1", Email: "alice@example.com", Name: "Alice"},
		},
		{
			name: "not found",
			id:   "nonexistent",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users`).
					WithArgs("nonexistent").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name: "malformed id",
			id:   "abc",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users`).
					WithArgs("abc").
					WillReturnError(&pq.Error{Code: "22P02"})
			},
			wantErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewUserRepository(db).GetUser(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
