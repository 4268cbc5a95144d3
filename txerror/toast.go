package txerror

type ToastType string

const (
	ToastError ToastType = "error"
	ToastWarn  ToastType = "warn"
	ToastInfo  ToastType = "info"
)

type severity struct {
	toast     ToastType
	shouldLog bool
}

var severities = map[ErrorType]severity{
	UserRejected:       {ToastInfo, false},
	Timeout:            {ToastInfo, true},
	WalletDisconnected: {ToastWarn, true},
	NetworkError:       {ToastWarn, true},
	TransactionFailed:  {ToastError, true},
	Unknown:            {ToastError, true},
}

// ToastTypeForError maps an error type to the severity of the notice a UI
// should show. Unrecognized types are treated as UNKNOWN.
func ToastTypeForError(t ErrorType) ToastType {
	if s, ok := severities[t]; ok {
		return s.toast
	}
	return ToastError
}

// DefaultShouldLog is false only for USER_REJECTED: cancelling in the wallet
// is an expected action.
func DefaultShouldLog(t ErrorType) bool {
	if s, ok := severities[t]; ok {
		return s.shouldLog
	}
	return true
}

// Retryable reports whether an operation that failed with t can be
// resubmitted automatically. Once a transaction id was recorded the
// transaction may have reached consensus, so only the user can decide. A
// timeout never qualifies: the submission state is unknown.
func Retryable(t ErrorType, transactionID string) bool {
	if transactionID != "" {
		return false
	}
	return t == NetworkError || t == WalletDisconnected
}
