package storage

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateName is returned when creating a project whose name is taken.
	ErrDuplicateName = errors.New("name already exists")

	// ErrNonceReplayed is returned when a (client, nonce) pair was already
	// registered within the retention window.
	ErrNonceReplayed = errors.New("nonce already used")
)

// isConstraintViolation reports whether err is a SQLite UNIQUE or PRIMARY
// KEY constraint failure. Only these two extended codes count: other
// constraint classes (foreign key, NOT NULL, CHECK) are storage failures,
// not duplicates, and must not map to the duplicate/replay sentinels.
func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
