package txerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// RejectionSentinel is what wallets put in the message when the user
	// declines to sign.
	RejectionSentinel = "USER_REJECT"
	// FromBytesNotImplemented shows up when the signer bridge cannot
	// rebuild a query, which in practice means the relay connection is gone.
	FromBytesNotImplemented = "Query.fromBytes() not implemented"
	// RPCRejectionCode is the wallet bridge JSON-RPC code for a rejected
	// request.
	RPCRejectionCode = 5000
)

// Codes the signing SDK reserves for "user rejected the request".
var sdkRejectionCodes = map[int]bool{
	4001:             true,
	RPCRejectionCode: true,
}

// networkSubstrings are matched against the lower-cased message.
var networkSubstrings = []string{
	"query.frombytes",
	"dappsigner",
	"signer is not connected",
	"no signer",
}

const (
	msgUserRejected       = "Transaction was rejected in your wallet."
	msgNetworkError       = "Could not reach your wallet. Please check your connection and try again."
	msgWalletDisconnected = "Your wallet is not connected. Please reconnect and try again."
	msgTimeout            = "The transaction timed out. It may still have been processed, check the explorer before retrying."
	msgUnknown            = "An unexpected error occurred. Please try again."
)

// CompoundError is the shape of failures reported by signers that run a
// transaction and a query side by side.
type CompoundError interface {
	TxError() any
	QueryError() any
}

// RPCError follows the JSON-RPC {code, message} convention used by wallet
// bridges.
type RPCError interface {
	RPCErrorCode() int
	RPCErrorMessage() string
}

// CodedError carries a numeric SDK status code at the top level.
type CodedError interface {
	ErrorCode() int
}

type matcher struct {
	name  string
	match func(v any) (*ClassifiedError, bool)
}

// Evaluated in order; the first match wins. Structured shapes come before
// the plain error message so that a rejection nested inside a compound
// error is not masked by its outer message.
var matchers []matcher

func init() {
	matchers = []matcher{
		{"classified", matchClassified},
		{"string", matchString},
		{"json", matchJSON},
		{"compound", matchCompound},
		{"rpc", matchRPC},
		{"code", matchCode},
		{"error", matchError},
		{"message", matchMessageField},
	}
}

// Classify maps any failure value into the closed error taxonomy. It never
// panics and never returns nil.
func Classify(v any) (ce *ClassifiedError) {
	defer func() {
		if r := recover(); r != nil {
			ce = New(Unknown, msgUnknown, v)
		}
	}()
	if v == nil {
		return New(Unknown, msgUnknown, nil)
	}
	for _, m := range matchers {
		if res, ok := m.match(v); ok {
			return res
		}
	}
	return New(Unknown, msgUnknown, v)
}

// ClassifyMessage applies only the message rules.
func ClassifyMessage(msg string, original any) *ClassifiedError {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, RejectionSentinel):
		return New(UserRejected, msgUserRejected, original)
	case containsAny(lower, networkSubstrings):
		return New(NetworkError, msgNetworkError, original)
	case strings.Contains(lower, "wallet") &&
		(strings.Contains(lower, "disconnect") || strings.Contains(lower, "not connected")):
		return New(WalletDisconnected, msgWalletDisconnected, original)
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		return New(Timeout, msgTimeout, original)
	case strings.Contains(lower, "transaction failed"):
		return New(TransactionFailed, msg, original)
	}
	return New(Unknown, msgUnknown, original)
}

func matchClassified(v any) (*ClassifiedError, bool) {
	if c, ok := v.(ClassifiedError); ok {
		return &c, true
	}
	if c, ok := findAs[*ClassifiedError](v); ok && c != nil {
		return c, true
	}
	return nil, false
}

func matchString(v any) (*ClassifiedError, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	return ClassifyMessage(s, v), true
}

// matchJSON decodes raw payloads coming from a wallet bridge and classifies
// the decoded value, keeping the raw bytes as the original error.
func matchJSON(v any) (*ClassifiedError, bool) {
	var raw []byte
	switch b := v.(type) {
	case []byte:
		raw = b
	case json.RawMessage:
		raw = b
	default:
		return nil, false
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ClassifyMessage(string(raw), v), true
	}
	res := Classify(decoded)
	res.OriginalError = v
	return res, true
}

func matchCompound(v any) (*ClassifiedError, bool) {
	tx, hasTx, query, hasQuery := compoundParts(v)
	if hasTx && hasQuery {
		if msg, ok := messageOf(tx); ok && msg == RejectionSentinel {
			return New(UserRejected, msgUserRejected, v), true
		}
	}
	if hasQuery {
		if msg, ok := messageOf(query); ok && strings.Contains(msg, FromBytesNotImplemented) {
			return New(NetworkError, msgNetworkError, v), true
		}
	}
	return nil, false
}

func compoundParts(v any) (tx any, hasTx bool, query any, hasQuery bool) {
	if m, ok := v.(map[string]any); ok {
		tx, hasTx = m["txError"]
		query, hasQuery = m["queryError"]
		hasTx = hasTx && isObject(tx)
		hasQuery = hasQuery && isObject(query)
		return
	}
	if c, ok := findAs[CompoundError](v); ok {
		tx, query = c.TxError(), c.QueryError()
		return tx, tx != nil, query, query != nil
	}
	return nil, false, nil, false
}

func matchRPC(v any) (*ClassifiedError, bool) {
	code, msg, ok := rpcParts(v)
	if !ok {
		return nil, false
	}
	if code == RPCRejectionCode {
		return New(UserRejected, msgUserRejected, v), true
	}
	if msg == "" {
		return nil, false
	}
	return ClassifyMessage(msg, v), true
}

func rpcParts(v any) (code int, msg string, ok bool) {
	if m, isMap := v.(map[string]any); isMap {
		inner, isInner := m["error"].(map[string]any)
		if !isInner {
			return 0, "", false
		}
		code, hasCode := intOf(inner["code"])
		msg, _ = inner["message"].(string)
		return code, msg, hasCode
	}
	if r, found := findAs[RPCError](v); found {
		return r.RPCErrorCode(), r.RPCErrorMessage(), true
	}
	return 0, "", false
}

func matchCode(v any) (*ClassifiedError, bool) {
	var code int
	var ok bool
	if m, isMap := v.(map[string]any); isMap {
		code, ok = intOf(m["code"])
	} else if c, found := findAs[CodedError](v); found {
		code, ok = c.ErrorCode(), true
	}
	if ok && sdkRejectionCodes[code] {
		return New(UserRejected, msgUserRejected, v), true
	}
	return nil, false
}

func matchError(v any) (*ClassifiedError, bool) {
	err, ok := v.(error)
	if !ok {
		return nil, false
	}
	return ClassifyMessage(err.Error(), v), true
}

func matchMessageField(v any) (*ClassifiedError, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	msg, ok := m["message"].(string)
	if !ok {
		return nil, false
	}
	return ClassifyMessage(msg, v), true
}

// findAs looks for T on v directly, then along v's error chain.
func findAs[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var target T
	if err, ok := v.(error); ok && errors.As(err, &target) {
		return target, true
	}
	return target, false
}

func messageOf(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case error:
		return x.Error(), true
	case map[string]any:
		s, ok := x["message"].(string)
		return s, ok
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

func isObject(v any) bool {
	switch v.(type) {
	case nil, bool, float64, int, string:
		return false
	}
	return true
}

func intOf(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case json.Number:
		i, err := n.Int64()
		if err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
