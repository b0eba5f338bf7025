package orders

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientStock rejects an order line that would drive a product's
// stock negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// ValidationError rejects malformed input before any write happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown order, customer or product id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }

// PolicyError rejects a transition the state machine does not allow. The
// order is left unchanged.
type PolicyError struct {
	Msg string
}

func (e *PolicyError) Error() string { return e.Msg }

func policyErrorf(format string, args ...interface{}) error {
	return &PolicyError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPolicy reports whether err is a policy violation.
func IsPolicy(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}

// isUniqueViolation detects primary-key and unique-index conflicts from the
// drivers we ship (sqlite3 and postgres). Used to retry order-ID allocation
// when two same-day creations race.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
