package networks

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/tranvictor/hsocial/util/explorers"
)

type GenericMirrorNetworkConfig struct {
	Name               string   `json:"name"`
	AlternativeNames   []string `json:"alternative_names"`
	LedgerID           uint64   `json:"ledger_id"`
	NativeTokenSymbol  string   `json:"native_token_symbol"`
	NativeTokenDecimal uint64   `json:"native_token_decimal"`
	// MirrorLag in milliseconds
	MirrorLag              uint64 `json:"mirror_lag"`
	MirrorNodeVariableName string `json:"mirror_node_variable_name"`
	DefaultMirrorNode      string `json:"default_mirror_node"`
	ExplorerURL            string `json:"explorer_url"`
	ExplorerNetwork        string `json:"explorer_network"`
}

// GenericMirrorNetwork is a network read through a Hedera mirror node REST
// API and browsed through a HashScan-like explorer.
type GenericMirrorNetwork struct {
	explorer *explorers.HashScanExplorer
	config   GenericMirrorNetworkConfig
}

func NewGenericMirrorNetwork(config GenericMirrorNetworkConfig) *GenericMirrorNetwork {
	if config.NativeTokenSymbol == "" {
		config.NativeTokenSymbol = "HBAR"
		config.NativeTokenDecimal = 8
	}
	explorerNetwork := config.ExplorerNetwork
	if explorerNetwork == "" {
		explorerNetwork = config.Name
	}
	explorerURL := config.ExplorerURL
	if explorerURL == "" {
		explorerURL = "https://hashscan.io"
	}
	return &GenericMirrorNetwork{
		explorer: explorers.NewHashScanExplorer(explorerURL, explorerNetwork),
		config:   config,
	}
}

func (gn *GenericMirrorNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericMirrorNetwork) GetLedgerID() uint64 {
	return gn.config.LedgerID
}

func (gn *GenericMirrorNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericMirrorNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericMirrorNetwork) GetNativeTokenDecimal() uint64 {
	return gn.config.NativeTokenDecimal
}

func (gn *GenericMirrorNetwork) GetMirrorLag() time.Duration {
	return time.Duration(gn.config.MirrorLag) * time.Millisecond
}

func (gn *GenericMirrorNetwork) GetMirrorNodeVariableName() string {
	return gn.config.MirrorNodeVariableName
}

func (gn *GenericMirrorNetwork) GetDefaultMirrorNode() string {
	return gn.config.DefaultMirrorNode
}

func (gn *GenericMirrorNetwork) GetMirrorNodeURL() string {
	if gn.config.MirrorNodeVariableName != "" {
		if url := strings.TrimSpace(os.Getenv(gn.config.MirrorNodeVariableName)); url != "" {
			return strings.TrimRight(url, "/")
		}
	}
	return strings.TrimRight(gn.config.DefaultMirrorNode, "/")
}

func (gn *GenericMirrorNetwork) GetExplorer() explorers.Explorer {
	return gn.explorer
}

func (gn *GenericMirrorNetwork) MarshalJSON() ([]byte, error) {
	return json.Marshal(gn.config)
}
