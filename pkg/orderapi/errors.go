package orderapi

import "fmt"

// NetworkError wraps transport-level failures. Never retried automatically.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("order api unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NotFoundError means the referenced order does not exist on the server.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID)
}

// ConflictError means the server rejected a status transition. Message is
// the server's own text, surfaced verbatim with no client-side correction.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
