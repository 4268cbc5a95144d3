package reader

import (
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found on mirror node")

// HTTPError is a non-2xx answer from a mirror node.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("mirror node %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// Temporary reports whether retrying the same request later can help.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

type ChunkInfo struct {
	InitialTransactionID TransactionIDRecord `json:"initial_transaction_id"`
	Number               int                 `json:"number"`
	Total                int                 `json:"total"`
}

type TransactionIDRecord struct {
	AccountID             string `json:"account_id"`
	Nonce                 int    `json:"nonce"`
	Scheduled             bool   `json:"scheduled"`
	TransactionValidStart string `json:"transaction_valid_start"`
}

func (t TransactionIDRecord) String() string {
	return fmt.Sprintf("%s@%s", t.AccountID, t.TransactionValidStart)
}

// TopicMessage is one consensus message as served by
// /api/v1/topics/{id}/messages.
type TopicMessage struct {
	ConsensusTimestamp string     `json:"consensus_timestamp"`
	TopicID            string     `json:"topic_id"`
	PayerAccountID     string     `json:"payer_account_id"`
	SequenceNumber     int64      `json:"sequence_number"`
	RunningHash        string     `json:"running_hash"`
	Message            string     `json:"message"`
	ChunkInfo          *ChunkInfo `json:"chunk_info,omitempty"`
}

// Decode returns the raw message bytes.
func (m TopicMessage) Decode() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(m.Message)
	if err != nil {
		return nil, fmt.Errorf("message %d of topic %s is not valid base64: %w", m.SequenceNumber, m.TopicID, err)
	}
	return b, nil
}

type Links struct {
	Next string `json:"next"`
}

type topicMessagesResponse struct {
	Messages []TopicMessage `json:"messages"`
	Links    Links          `json:"links"`
}

// TransactionRecord is one entry of /api/v1/transactions/{id}. A single
// transaction id maps to several records when child transactions ran.
type TransactionRecord struct {
	ConsensusTimestamp string `json:"consensus_timestamp"`
	EntityID           string `json:"entity_id"`
	Name               string `json:"name"`
	Nonce              int    `json:"nonce"`
	Result             string `json:"result"`
	Scheduled          bool   `json:"scheduled"`
	TransactionID      string `json:"transaction_id"`
	MemoBase64         string `json:"memo_base64"`
}

type transactionsResponse struct {
	Transactions []TransactionRecord `json:"transactions"`
}

type AccountInfo struct {
	Account    string `json:"account"`
	Alias      string `json:"alias"`
	EVMAddress string `json:"evm_address"`
	Memo       string `json:"memo"`
	Deleted    bool   `json:"deleted"`
}

type TopicInfo struct {
	TopicID            string `json:"topic_id"`
	Memo               string `json:"memo"`
	CreatedTimestamp   string `json:"created_timestamp"`
	Deleted            bool   `json:"deleted"`
	AutoRenewAccountID string `json:"auto_renew_account"`
}
