package txerror

import "errors"

type ErrorType string

const (
	UserRejected       ErrorType = "USER_REJECTED"
	NetworkError       ErrorType = "NETWORK_ERROR"
	WalletDisconnected ErrorType = "WALLET_DISCONNECTED"
	TransactionFailed  ErrorType = "TRANSACTION_FAILED"
	Timeout            ErrorType = "TIMEOUT"
	Unknown            ErrorType = "UNKNOWN"
)

// ClassifiedError is the uniform failure value handed to callers. Message
// is safe to show to a user; OriginalError is kept for diagnostics only.
type ClassifiedError struct {
	Type          ErrorType
	Message       string
	OriginalError any
	ShouldLog     bool
}

func (e *ClassifiedError) Error() string {
	return e.Message
}

// Unwrap exposes the original error, if it was one, to errors.Is/As.
func (e *ClassifiedError) Unwrap() error {
	if err, ok := e.OriginalError.(error); ok {
		return err
	}
	return nil
}

// New builds a ClassifiedError with the default ShouldLog for t.
func New(t ErrorType, message string, original any) *ClassifiedError {
	return &ClassifiedError{
		Type:          t,
		Message:       message,
		OriginalError: original,
		ShouldLog:     DefaultShouldLog(t),
	}
}

// As returns the ClassifiedError in err's chain, if any.
func As(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsType reports whether err carries a ClassifiedError of type t.
func IsType(err error, t ErrorType) bool {
	ce, ok := As(err)
	return ok && ce.Type == t
}
