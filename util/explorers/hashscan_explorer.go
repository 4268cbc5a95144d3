package explorers

import (
	"fmt"
	"strings"

	"github.com/tranvictor/hsocial/hedera"
)

type HashScanExplorer struct {
	Domain  string
	Network string
}

func NewHashScanExplorer(domain, network string) *HashScanExplorer {
	return &HashScanExplorer{
		Domain:  strings.TrimRight(domain, "/"),
		Network: network,
	}
}

func (he *HashScanExplorer) Name() string {
	return "HashScan"
}

// TransactionURL accepts either transaction id form; HashScan routes on
// the mirror node form.
func (he *HashScanExplorer) TransactionURL(transactionID string) string {
	return fmt.Sprintf(
		"%s/%s/transaction/%s",
		he.Domain,
		he.Network,
		hedera.ToMirrorFormat(transactionID),
	)
}

func (he *HashScanExplorer) TopicURL(topicID string) string {
	return fmt.Sprintf("%s/%s/topic/%s", he.Domain, he.Network, topicID)
}

func (he *HashScanExplorer) AccountURL(accountID string) string {
	return fmt.Sprintf("%s/%s/account/%s", he.Domain, he.Network, accountID)
}
