package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// --- SQLite dialect ---

// sqliteDialect relies on the connection settings for locking: the in-memory database runs on a
// single connection and file databases open transactions with BEGIN IMMEDIATE.
type sqliteDialect struct{}

func (sqliteDialect) lockSuffix() string { return "" }

// 100 rows of a few columns stay well within the default variable limit
func (sqliteDialect) chunkSize() int { return 100 }

func (sqliteDialect) isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
