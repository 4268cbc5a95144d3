package util

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/config"
	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/listtopic"
	"github.com/tranvictor/hsocial/networks"
	"github.com/tranvictor/hsocial/profile"
	"github.com/tranvictor/hsocial/util/monitor"
	"github.com/tranvictor/hsocial/util/reader"
)

var (
	txIDPattern   = regexp.MustCompile(`\d+\.\d+\.\d+(@\d+\.\d+|-\d+-\d+)`)
	entityPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)
	evmPattern    = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)
)

// ScanForTransactionIDs finds transaction ids in free text such as a pasted
// explorer link, in either form, and returns them in SDK form.
func ScanForTransactionIDs(text string) []string {
	result := []string{}
	seen := map[string]bool{}
	for _, m := range txIDPattern.FindAllString(text, -1) {
		id, err := hedera.ParseTransactionID(m)
		if err != nil {
			continue
		}
		if key := id.MirrorFormat(); !seen[key] {
			seen[key] = true
			result = append(result, id.String())
		}
	}
	return result
}

// ScanForEntityIDs finds account, topic and file ids in text. Payers inside
// transaction ids are skipped.
func ScanForEntityIDs(text string) []string {
	text = txIDPattern.ReplaceAllString(text, " ")
	result := []string{}
	for _, m := range entityPattern.FindAllString(text, -1) {
		if hedera.IsEntityID(m) {
			result = append(result, m)
		}
	}
	return result
}

func ScanForEVMAddresses(text string) []common.Address {
	result := []common.Address{}
	for _, m := range evmPattern.FindAllString(text, -1) {
		result = append(result, common.HexToAddress(m))
	}
	return result
}

// MirrorNodes returns the mirror nodes to read network through. An explicit
// override replaces the network's own nodes.
func MirrorNodes(network networks.Network, override string) map[string]string {
	if u := strings.TrimSpace(override); u != "" {
		return map[string]string{"custom-node": u}
	}
	nodes := map[string]string{
		network.GetName() + "-default": network.GetDefaultMirrorNode(),
	}
	if u := network.GetMirrorNodeURL(); u != network.GetDefaultMirrorNode() {
		nodes["env-node"] = u
	}
	return nodes
}

func MirrorReader(network networks.Network, s config.Settings, logger *zap.Logger) (*reader.MirrorReader, error) {
	nodes := MirrorNodes(network, s.MirrorURL)
	for name, u := range nodes {
		if u == "" {
			return nil, fmt.Errorf("network %s has no mirror node configured (%s)", network.GetName(), name)
		}
	}
	return reader.NewMirrorReaderGeneric(nodes,
		reader.WithPageSize(s.Timing.MirrorPageLimit),
		reader.WithHTTPClient(&http.Client{Timeout: s.Timing.MirrorTimeout.Std()}),
		reader.WithLogger(logger),
	), nil
}

func ReceiptMonitor(r *reader.MirrorReader, s config.Settings, logger *zap.Logger) *monitor.TxMonitor {
	return monitor.NewGenericTxMonitor(r,
		monitor.WithBackoff(s.Timing.ReceiptBackoffDurations()...),
		monitor.WithLostAfter(s.Timing.ReceiptLostAfter.Std()),
		monitor.WithLogger(logger),
	)
}

// Executor returns a transaction executor that gives up after the
// configured timeout and points users at network's explorer when a
// transaction could not be confirmed.
func Executor(network networks.Network, s config.Settings, logger *zap.Logger) *executor.Executor {
	return executor.NewExecutor(
		executor.WithTimeout(s.Timing.TransactionTimeout.Std()),
		executor.WithExplorer(network.GetExplorer()),
		executor.WithLogger(logger),
	)
}

// ListConfig completes cfg with the shared executor and the configured
// settle delay. Values already set in cfg win.
func ListConfig(cfg listtopic.Config, exec *executor.Executor, s config.Settings) listtopic.Config {
	if cfg.Executor == nil {
		cfg.Executor = exec
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = s.Timing.SettleDelay.Std()
	}
	return cfg
}

// CreationDeps is ListConfig for profile creation.
func CreationDeps(deps profile.CreationDeps, exec *executor.Executor, s config.Settings) profile.CreationDeps {
	if deps.Executor == nil {
		deps.Executor = exec
	}
	if deps.SettleDelay <= 0 {
		deps.SettleDelay = s.Timing.SettleDelay.Std()
	}
	return deps
}
