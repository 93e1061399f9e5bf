package store

import (
	"errors"
	"fmt"

	"pharmacy-store/internal/util"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is a unique constraint violation, e.g. a (cart, product)
	// pair that already exists.
	ErrDuplicate = errors.New("duplicate row")
	// ErrMissingReference is a foreign key violation on insert or update.
	ErrMissingReference  = errors.New("referenced row does not exist")
	ErrCheckViolation    = errors.New("check constraint violated")
	ErrInvalidTransition = errors.New("invalid payment status transition")
	ErrReadOnly          = errors.New("read-only connection")
	// ErrImmutable is an update to a column that is fixed after insert.
	ErrImmutable         = errors.New("column cannot be changed")
)

// IntegrityError carries the storage engine's error unchanged next to the
// classified kind, so both errors.Is(err, ErrDuplicate) and
// errors.As(err, &pqErr) keep working.
type IntegrityError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *IntegrityError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// classify maps postgres and sqlite constraint failures onto the package
// sentinels. Anything else is returned as is.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var kind error
	var constraint string

	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pqErr):
		constraint = pqErr.Constraint
		switch pqErr.Code {
		case "23505":
			kind = ErrDuplicate
		case "23503":
			kind = ErrMissingReference
		case "23514":
			kind = ErrCheckViolation
		case "25006":
			kind = ErrReadOnly
		}
	case errors.As(err, &liteErr):
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			kind = ErrDuplicate
		case sqlite3.ErrConstraintForeignKey:
			kind = ErrMissingReference
		case sqlite3.ErrConstraintCheck:
			kind = ErrCheckViolation
		}
		if liteErr.Code == sqlite3.ErrReadonly {
			kind = ErrReadOnly
		}
	}

	if kind == nil {
		return err
	}
	if kind != ErrReadOnly {
		util.IntegrityViolationsTotal.WithLabelValues(violationLabel(kind)).Inc()
	}
	return &IntegrityError{Kind: kind, Constraint: constraint, Err: err}
}

func violationLabel(kind error) string {
	switch kind {
	case ErrDuplicate:
		return "unique"
	case ErrMissingReference:
		return "foreign_key"
	case ErrCheckViolation:
		return "check"
	}
	return "other"
}
