package table

import (
	"errors"
	"fmt"
)

var (
	ErrColumnNotFound      = errors.New("column not found")
	ErrInvalidArguments    = errors.New("invalid arguments")
	ErrUnsupportedEncoding = errors.New("unsupported cell encoding: invalid utf-8")
	ErrDuplicateColumn     = errors.New("duplicate column name")
	ErrNoColumns           = errors.New("no columns")
	ErrRaggedRow           = errors.New("row has more fields than the header")
)

// ColumnError records an operation that failed on a specific column.
type ColumnError struct {
	Op     string
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }
