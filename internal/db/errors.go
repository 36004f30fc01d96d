package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level database error sentinels.
var (
	// Content errors
	ErrContentNotFound = errors.New("content not found")
	ErrDuplicateSlug   = errors.New("slug already exists")

	// Lead errors
	ErrLeadNotFound = errors.New("lead not found")
)

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
