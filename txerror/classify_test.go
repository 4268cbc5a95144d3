package txerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type codeErr struct{ code int }

func (e codeErr) Error() string  { return fmt.Sprintf("sdk error %d", e.code) }
func (e codeErr) ErrorCode() int { return e.code }

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestClassifyIsTotal(t *testing.T) {
	var nilErr *WalletRPCError
	var nilClassified *ClassifiedError
	inputs := []any{
		nil,
		"",
		"something",
		errors.New(""),
		map[string]any{},
		map[string]any{"txError": nil, "queryError": nil},
		map[string]any{"error": "not an object"},
		map[string]any{"code": "5000"},
		[]byte("{not json"),
		[]byte(`null`),
		42,
		3.14,
		struct{}{},
		[]string{"USER_REJECT"},
		nilErr,
		nilClassified,
		&SignerError{},
		stringer{},
	}
	for _, in := range inputs {
		ce := Classify(in)
		require.NotNil(t, ce, "input %#v", in)
		assert.NotEmpty(t, ce.Message, "input %#v", in)
		assert.Contains(t, severities, ce.Type)
	}
}

func TestClassifyStrings(t *testing.T) {
	cases := []struct {
		in   string
		want ErrorType
	}{
		{"USER_REJECT", UserRejected},
		{"Error: USER_REJECT by wallet", UserRejected},
		{"Query.fromBytes() not implemented for type getByKey", NetworkError},
		{"DAppSigner failed to sign", NetworkError},
		{"dappsigner: QUERY.FROMBYTES missing", NetworkError},
		{"no signer for account 0.0.2", NetworkError},
		{"user_reject", Unknown},
		{"wallet disconnected", WalletDisconnected},
		{"Wallet is not connected", WalletDisconnected},
		{"request timeout", Timeout},
		{"operation timed out after 60s", Timeout},
		{"Transaction failed: INVALID_SIGNATURE", TransactionFailed},
		{"boom", Unknown},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.in).Type)
			assert.Equal(t, c.want, Classify(errors.New(c.in)).Type)
			assert.Equal(t, c.want, Classify(map[string]any{"message": c.in}).Type)
		})
	}
}

func TestUserRejectedIsNotLogged(t *testing.T) {
	ce := Classify("USER_REJECT")
	assert.False(t, ce.ShouldLog)
	assert.Equal(t, ToastInfo, ToastTypeForError(ce.Type))

	for _, typ := range []ErrorType{NetworkError, WalletDisconnected, TransactionFailed, Timeout, Unknown} {
		assert.True(t, DefaultShouldLog(typ), typ)
	}
}

func TestRejectionWinsOverQueryFailure(t *testing.T) {
	m := map[string]any{
		"txError":    map[string]any{"message": "USER_REJECT"},
		"queryError": map[string]any{"message": "Query.fromBytes() not implemented"},
	}
	ce := Classify(m)
	assert.Equal(t, UserRejected, ce.Type)
	assert.False(t, ce.ShouldLog)

	typed := &SignerError{
		Tx:    errors.New("USER_REJECT"),
		Query: errors.New("Query.fromBytes() not implemented"),
	}
	assert.Equal(t, UserRejected, Classify(typed).Type)
	assert.Equal(t, UserRejected, Classify(fmt.Errorf("execute: %w", typed)).Type)
}

func TestCompoundQueryFailureIsNetwork(t *testing.T) {
	m := map[string]any{
		"txError":    map[string]any{"message": "INSUFFICIENT_PAYER_BALANCE"},
		"queryError": map[string]any{"message": "Query.fromBytes() not implemented"},
	}
	assert.Equal(t, NetworkError, Classify(m).Type)

	onlyQuery := &SignerError{Query: errors.New("Query.fromBytes() not implemented")}
	assert.Equal(t, NetworkError, Classify(onlyQuery).Type)
}

func TestCompoundWithoutKnownShapeFallsThrough(t *testing.T) {
	typed := &SignerError{Tx: errors.New("wallet disconnected")}
	assert.Equal(t, WalletDisconnected, Classify(typed).Type)
}

func TestClassifyRPCShapes(t *testing.T) {
	nested := map[string]any{"error": map[string]any{"code": float64(5000), "message": "User rejected."}}
	assert.Equal(t, UserRejected, Classify(nested).Type)

	other := map[string]any{"error": map[string]any{"code": float64(-32000), "message": "request timed out"}}
	assert.Equal(t, Timeout, Classify(other).Type)

	assert.Equal(t, UserRejected, Classify(&WalletRPCError{Code: 5000, Message: "nope"}).Type)
	assert.Equal(t, WalletDisconnected,
		Classify(fmt.Errorf("sign: %w", &WalletRPCError{Code: 1, Message: "wallet not connected"})).Type)
}

func TestClassifyTopLevelCode(t *testing.T) {
	assert.Equal(t, UserRejected, Classify(map[string]any{"code": float64(4001), "message": "x"}).Type)
	assert.Equal(t, UserRejected, Classify(codeErr{code: 4001}).Type)
	assert.Equal(t, Unknown, Classify(codeErr{code: 7}).Type)
	assert.Equal(t, Timeout, Classify(map[string]any{"code": float64(7), "message": "timeout"}).Type)
}

func TestClassifyJSONPayload(t *testing.T) {
	raw := []byte(`{"txError":{"message":"USER_REJECT"},"queryError":{"message":"Query.fromBytes() not implemented"}}`)
	ce := Classify(raw)
	assert.Equal(t, UserRejected, ce.Type)
	assert.Equal(t, raw, ce.OriginalError)

	assert.Equal(t, Timeout, Classify([]byte("plain timeout text")).Type)
}

func TestClassifiedErrorUnwrap(t *testing.T) {
	cause := errors.New("Transaction failed: DUPLICATE_TRANSACTION")
	ce := Classify(fmt.Errorf("submit: %w", cause))
	assert.Equal(t, TransactionFailed, ce.Type)
	assert.ErrorIs(t, ce, cause)

	wrapped := fmt.Errorf("step: %w", ce)
	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, ce, got)
	assert.True(t, IsType(wrapped, TransactionFailed))
	assert.Same(t, ce, Classify(wrapped), "already classified errors are kept")
}

func TestToastTable(t *testing.T) {
	assert.Equal(t, ToastInfo, ToastTypeForError(Timeout))
	assert.Equal(t, ToastWarn, ToastTypeForError(WalletDisconnected))
	assert.Equal(t, ToastWarn, ToastTypeForError(NetworkError))
	assert.Equal(t, ToastError, ToastTypeForError(TransactionFailed))
	assert.Equal(t, ToastError, ToastTypeForError(Unknown))
	assert.Equal(t, ToastError, ToastTypeForError("SOMETHING_ELSE"))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(NetworkError, ""))
	assert.True(t, Retryable(WalletDisconnected, ""))
	assert.False(t, Retryable(NetworkError, "0.0.1@1.1"))
	assert.False(t, Retryable(Timeout, ""))
	assert.False(t, Retryable(UserRejected, ""))
	assert.False(t, Retryable(TransactionFailed, ""))
}
