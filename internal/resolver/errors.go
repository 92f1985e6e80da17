package resolver

import "fmt"

// ValidationError reports empty or malformed user input. Non-fatal;
// the caller reports it inline and keeps its current state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// ResolutionError reports an incomplete source config handed to the
// resolver. Raised before any I/O is attempted.
type ResolutionError struct {
	Reason string
}

func (e *ResolutionError) Error() string {
	return "resolution: " + e.Reason
}

// NetworkError wraps a failed remote call. The session reverts to its
// last stable state and surfaces a transient notice.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
