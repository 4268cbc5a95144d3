package hedera

const (
	StatusSuccess                         = "SUCCESS"
	StatusTokenAlreadyAssociatedToAccount = "TOKEN_ALREADY_ASSOCIATED_TO_ACCOUNT"
)

// Receipt is the confirmation record of a submitted transaction as observed
// on the read side.
type Receipt struct {
	// Status is the ledger result string, e.g. SUCCESS or INVALID_SIGNATURE.
	Status string `json:"result"`
	// EntityID is set for transactions that create an entity (topic,
	// account, token).
	EntityID           string `json:"entity_id,omitempty"`
	TransactionID      string `json:"transaction_id,omitempty"`
	ConsensusTimestamp string `json:"consensus_timestamp,omitempty"`
}

// IsSuccess reports whether the status counts as success. Association
// that already exists is treated as an idempotent success.
func (r *Receipt) IsSuccess() bool {
	if r == nil {
		return false
	}
	return IsSuccessStatus(r.Status)
}

func IsSuccessStatus(status string) bool {
	return status == StatusSuccess || status == StatusTokenAlreadyAssociatedToAccount
}
