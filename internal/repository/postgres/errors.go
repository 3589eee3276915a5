package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes the repositories translate into domain errors.
const (
	codeUniqueViolation   = "23505"
	codeInvalidTextFormat = "22P02"
)

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

// isMissingRow reports whether a single-row lookup found nothing. An id that
// is not a valid uuid cannot match a row, so the cast failure counts as missing.
func isMissingRow(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || hasCode(err, codeInvalidTextFormat)
}
