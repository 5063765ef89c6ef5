package smartsearch

import "github.com/cockroachdb/errors"

// ErrorCode represents specific error codes for search operations.
type ErrorCode int

const (
	// ErrCodeInvalidOption is returned when an invalid option is provided.
	ErrCodeInvalidOption ErrorCode = iota + 1000

	// ErrCodeInvalidExpression is returned when an invalid expression is provided.
	ErrCodeInvalidExpression

	// ErrCodeTimeout is returned when a search operation times out.
	ErrCodeTimeout

	// ErrCodeCanceled is returned when a search operation is canceled.
	ErrCodeCanceled

	// ErrCodeBackendUnavailable is returned when a listing source is unavailable.
	ErrCodeBackendUnavailable

	// ErrCodeInvalidListing is returned when a listing cannot be stored.
	ErrCodeInvalidListing
)

// String returns the human-readable string representation of the error code.
// This implements the fmt.Stringer interface.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeInvalidOption:
		return "invalid option"
	case ErrCodeInvalidExpression:
		return "invalid expression"
	case ErrCodeTimeout:
		return "operation timed out"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	case ErrCodeInvalidListing:
		return "invalid listing"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

// Common errors returned by searchers and listing sources. Ranking itself
// never fails: empty queries, empty collections and no-match conditions
// all produce empty results.
var (
	// ErrInvalidOption is returned when an invalid option is provided.
	ErrInvalidOption = newErrorWithCode(ErrCodeInvalidOption, "smartsearch: invalid option")

	// ErrInvalidExpression is returned when an invalid expression is provided.
	ErrInvalidExpression = newErrorWithCode(ErrCodeInvalidExpression, "smartsearch: invalid expression")

	// ErrTimeout is returned when a search operation times out.
	ErrTimeout = newErrorWithCode(ErrCodeTimeout, "smartsearch: operation timed out")

	// ErrCanceled is returned when a search operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "smartsearch: operation canceled")

	// ErrBackendUnavailable is returned when a listing source is unavailable.
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "smartsearch: backend unavailable")

	// ErrInvalidListing is returned when a listing has no ID.
	ErrInvalidListing = newErrorWithCode(ErrCodeInvalidListing, "smartsearch: invalid listing")
)
