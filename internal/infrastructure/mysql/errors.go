package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Server error numbers the repositories react to.
const (
	ErrNumDuplicateEntry  = 1062
	ErrNumLockWaitTimeout = 1205
	ErrNumDeadlock        = 1213
	ErrNumRowIsReferenced = 1451
	ErrNumNoReferencedRow = 1452
	ErrNumCheckConstraint = 3819
)

func errNumber(err error) (uint16, bool) {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number, true
	}
	return 0, false
}

// IsDeadlock reports errors worth retrying the whole transaction for.
func IsDeadlock(err error) bool {
	n, ok := errNumber(err)
	return ok && (n == ErrNumDeadlock || n == ErrNumLockWaitTimeout)
}

func IsDuplicateEntry(err error) bool {
	n, ok := errNumber(err)
	return ok && n == ErrNumDuplicateEntry
}

func IsCheckViolation(err error) bool {
	n, ok := errNumber(err)
	return ok && n == ErrNumCheckConstraint
}

// IsForeignKeyViolation covers both deleting a referenced parent and
// inserting a child whose parent does not exist.
func IsForeignKeyViolation(err error) bool {
	n, ok := errNumber(err)
	return ok && (n == ErrNumRowIsReferenced || n == ErrNumNoReferencedRow)
}
