package txerror

import "fmt"

// WalletRPCError is a JSON-RPC error returned over a wallet bridge.
type WalletRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *WalletRPCError) Error() string {
	return fmt.Sprintf("wallet rpc error %d: %s", e.Code, e.Message)
}

func (e *WalletRPCError) RPCErrorCode() int       { return e.Code }
func (e *WalletRPCError) RPCErrorMessage() string { return e.Message }

// SignerError carries both the transaction-side and the query-side failure
// reported by a signer. Either side may be nil.
type SignerError struct {
	Tx    error
	Query error
}

func (e *SignerError) Error() string {
	switch {
	case e.Tx != nil && e.Query != nil:
		return fmt.Sprintf("signer failed: tx: %s; query: %s", e.Tx, e.Query)
	case e.Tx != nil:
		return fmt.Sprintf("signer failed: tx: %s", e.Tx)
	case e.Query != nil:
		return fmt.Sprintf("signer failed: query: %s", e.Query)
	}
	return "signer failed"
}

func (e *SignerError) TxError() any {
	if e.Tx == nil {
		return nil
	}
	return e.Tx
}

func (e *SignerError) QueryError() any {
	if e.Query == nil {
		return nil
	}
	return e.Query
}
