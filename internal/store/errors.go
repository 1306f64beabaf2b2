package store

import (
	"errors"

	"modernc.org/sqlite"
)

// Sentinel errors returned by store operations. Callers branch with
// errors.Is instead of inspecting driver errors.
var (
	// ErrNotFound is returned when a caller explicitly requires an
	// existing record, e.g. removing a favorite that was never added.
	// Plain lookups report a miss as (nil, nil) instead.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicate is returned when a create hits a unique constraint
	// on the record's own identity.
	ErrDuplicate = errors.New("store: duplicate record")

	// ErrAssociationConflict is returned when two entities are already
	// associated. Callers treat it as already-satisfied.
	ErrAssociationConflict = errors.New("store: association already exists")
)

// SQLite extended result codes for unique-constraint violations.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqliteConstraintUnique || se.Code() == sqliteConstraintPrimaryKey
}
