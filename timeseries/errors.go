package timeseries

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrAlignment        = errors.New("alignment failed")
	ErrInsufficientData = errors.New("insufficient data")
	ErrDomain           = errors.New("value outside domain")
)

// AlignmentError reports that input series do not share a usable date overlap.
type AlignmentError struct {
	Reason string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment: %s", e.Reason)
}

// Is reports whether target is ErrAlignment.
func (e *AlignmentError) Is(target error) bool {
	return target == ErrAlignment
}

// InsufficientDataError reports too few rows for an operation.
type InsufficientDataError struct {
	Op   string
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: have %d rows, need at least %d", e.Op, e.Have, e.Need)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// DomainError reports a value an operation is undefined for, such as the
// logarithm of a non-positive number. Row is -1 when not tied to a row.
type DomainError struct {
	Op    string
	Row   int
	Value float64
}

func (e *DomainError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: value %g outside domain", e.Op, e.Value)
	}
	return fmt.Sprintf("%s: value %g at row %d outside domain", e.Op, e.Value, e.Row)
}

// Is reports whether target is ErrDomain.
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}
