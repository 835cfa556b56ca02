package database

import (
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
)

// IsUniqueViolation reports whether err was raised by a unique (or primary key) constraint, on any supported engine.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgerrcode.UniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// TrapWriteErr classifies err as core.ErrUniqueViolation when applicable, and wraps it with msg.
func TrapWriteErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return errors.Wrapf(core.ErrUniqueViolation, "%s: %v", msg, err)
	}
	return errors.Wrap(err, msg)
}
