package contracts

import "errors"

// Error taxonomy for the scan and its collaborators.
//
// ErrDataUnavailable marks a symbol/date with no usable market data; the
// symbol is skipped for the current evaluation only and retried on the
// next invocation.
//
// ErrNotFound marks a lookup miss on the query surface (unknown alert id).
//
// ErrInvariantViolation marks a broken ledger invariant, e.g. an exit
// firing for a position that does not exist. It is never swallowed.
var (
	ErrDataUnavailable    = errors.New("market data unavailable")
	ErrNotFound           = errors.New("not found")
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// IsDataUnavailable reports whether err is a non-fatal data gap
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}

// IsNotFound reports whether err is a query-surface lookup miss
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvariantViolation reports whether err signals a broken core invariant
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}
