package ledger

import "errors"

// Sentinel errors handlers translate into HTTP statuses.
var (
	// ErrNoActiveOrder means no active order matches the desk/customer pair.
	ErrNoActiveOrder = errors.New("no active order for this desk and customer")

	// ErrDeskOccupied means another customer holds an active order at the desk.
	ErrDeskOccupied = errors.New("desk is occupied by another customer")

	// ErrCustomerBusy means the customer already holds an active order at a
	// different desk.
	ErrCustomerBusy = errors.New("customer already has an active order at another desk")
)

// ValidationError rejects malformed input before it reaches storage.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
