package checkout

import "fmt"

// ValidationError is a local, recoverable guard failure: no transition
// happens and no state is mutated.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// CollaboratorError wraps a failed order-creation call. The machine stays at
// the payment stage and the attempt can be retried as-is.
type CollaboratorError struct {
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("order creation failed: %v", e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
