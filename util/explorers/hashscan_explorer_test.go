package explorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashScanTransactionURL(t *testing.T) {
	e := NewTestnetHashScan()
	assert.Equal(t,
		"https://hashscan.io/testnet/transaction/0.0.123-1700000000-000000001",
		e.TransactionURL("0.0.123@1700000000.000000001"),
	)
	// already in mirror form
	assert.Equal(t,
		"https://hashscan.io/testnet/transaction/0.0.123-1700000000-000000001",
		e.TransactionURL("0.0.123-1700000000-000000001"),
	)
}

func TestHashScanEntityURLs(t *testing.T) {
	e := NewHashScanExplorer("https://hashscan.io/", "mainnet")
	assert.Equal(t, "https://hashscan.io/mainnet/topic/0.0.9", e.TopicURL("0.0.9"))
	assert.Equal(t, "https://hashscan.io/mainnet/account/0.0.2", e.AccountURL("0.0.2"))
	assert.Equal(t, "HashScan", e.Name())
}
