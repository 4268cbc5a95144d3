package explorers

// Explorer builds links that a user can open to verify ledger state
// independently of this client, typically after a receipt could not be
// confirmed locally.
type Explorer interface {
	Name() string
	TransactionURL(transactionID string) string
	TopicURL(topicID string) string
	AccountURL(accountID string) string
}

func NewMainnetHashScan() *HashScanExplorer {
	return NewHashScanExplorer("https://hashscan.io", "mainnet")
}

func NewTestnetHashScan() *HashScanExplorer {
	return NewHashScanExplorer("https://hashscan.io", "testnet")
}

func NewPreviewnetHashScan() *HashScanExplorer {
	return NewHashScanExplorer("https://hashscan.io", "previewnet")
}
