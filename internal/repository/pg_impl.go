package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// --- PostgreSQL dialect ---

const pgUniqueViolation = "23505"

type pgDialect struct{}

func (pgDialect) lockSuffix() string { return " FOR UPDATE" }

// Chunking to avoid the 65535 parameter limit
func (pgDialect) chunkSize() int { return 2000 }

func (pgDialect) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
