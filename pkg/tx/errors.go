package tx

import "fmt"

// Error codes carried by the typed errors below.
const (
	ErrInvalidAddress = "INVALID_ADDRESS" // Recipient does not decode to a 20-byte hash
	ErrInvalidAmount  = "INVALID_AMOUNT"  // Zero, or more than the funding output holds
	ErrInvalidInput   = "INVALID_INPUT"   // Funding outpoint or owner key unusable
	ErrAlreadySigned  = "ALREADY_SIGNED"  // Second signing attempt
	ErrNotSigned      = "NOT_SIGNED"      // Serialization attempted before signing
)

// BuildError indicates a transaction could not be assembled from the
// supplied parameters.
type BuildError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable description
	Cause   error  // Underlying error, if any
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *BuildError) Unwrap() error { return e.Cause }

// SignError indicates digest computation or signature installation failed.
type SignError struct {
	Code    string
	Message string
	Cause   error
}

func (e *SignError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *SignError) Unwrap() error { return e.Cause }

// ExtractError indicates a transaction was not ready for final
// serialization.
type ExtractError struct {
	Code    string
	Message string
	State   State // Lifecycle state at the time of the failure
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("[%s] %s (state: %s)", e.Code, e.Message, e.State)
}
