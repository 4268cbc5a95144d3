package networks

import (
	"time"

	"github.com/tranvictor/hsocial/util/explorers"
)

type Network interface {
	GetName() string
	GetLedgerID() uint64
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64
	// GetMirrorLag is the typical delay between consensus and the mirror
	// node serving the record.
	GetMirrorLag() time.Duration

	GetMirrorNodeVariableName() string
	GetDefaultMirrorNode() string
	// GetMirrorNodeURL returns the env override if set, otherwise the
	// default mirror node.
	GetMirrorNodeURL() string

	GetExplorer() explorers.Explorer

	MarshalJSON() ([]byte, error)
}
