package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/hsocial/config"
	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/listtopic"
	"github.com/tranvictor/hsocial/networks"
	"github.com/tranvictor/hsocial/profile"
	"github.com/tranvictor/hsocial/txerror"
)

func TestScanForTransactionIDs(t *testing.T) {
	text := `see https://hashscan.io/testnet/transaction/0.0.2-1700000000-000000001
	and 0.0.2@1700000000.000000001 again, plus 0.0.3@1700000001.5`

	assert.Equal(t, []string{
		"0.0.2@1700000000.000000001",
		"0.0.3@1700000001.5",
	}, ScanForTransactionIDs(text))
	assert.Empty(t, ScanForTransactionIDs("nothing here"))
}

func TestScanForEntityIDs(t *testing.T) {
	text := "topic 0.0.9, payer of 0.0.2@1700000000.000000001 and account 0.0.1234"
	assert.Equal(t, []string{"0.0.9", "0.0.1234"}, ScanForEntityIDs(text))
}

func TestScanForEVMAddresses(t *testing.T) {
	addrs := ScanForEVMAddresses("owner 0x00000000000000000000000000000000000004d2.")
	if assert.Len(t, addrs, 1) {
		assert.Equal(t, byte(0xd2), addrs[0][19])
	}
}

func TestMirrorNodes(t *testing.T) {
	t.Setenv(networks.Testnet.GetMirrorNodeVariableName(), "")
	nodes := MirrorNodes(networks.Testnet, "")
	assert.Equal(t, map[string]string{
		"testnet-default": "https://testnet.mirrornode.hedera.com",
	}, nodes)

	nodes = MirrorNodes(networks.Testnet, " http://localhost:5551 ")
	assert.Equal(t, map[string]string{"custom-node": "http://localhost:5551"}, nodes)

	t.Setenv(networks.Testnet.GetMirrorNodeVariableName(), "http://mirror.internal")
	nodes = MirrorNodes(networks.Testnet, "")
	assert.Equal(t, "http://mirror.internal", nodes["env-node"])
	assert.Len(t, nodes, 2)
}

// stuckWallet submits everything and never sees a receipt.
type stuckWallet struct {
	release chan struct{}
}

func (w stuckWallet) Freeze(ctx context.Context, tx executor.Transaction) (executor.Transaction, error) {
	return tx, nil
}

func (w stuckWallet) Submit(ctx context.Context, signed executor.Transaction) (*executor.Response, error) {
	return &executor.Response{TransactionID: "0.0.2@1700000000.000000001"}, nil
}

func (w stuckWallet) Watch(ctx context.Context, transactionID string) (*hedera.Receipt, error) {
	<-w.release
	return nil, context.Canceled
}

func TestExecutorUsesConfiguredTimeoutAndExplorer(t *testing.T) {
	s := config.DefaultSettings()
	s.Timing.TransactionTimeout = config.Duration(50 * time.Millisecond)
	wallet := stuckWallet{release: make(chan struct{})}
	t.Cleanup(func() { close(wallet.release) })

	start := time.Now()
	res := Executor(networks.Testnet, s, nil).Execute(context.Background(), executor.Request{
		Transaction: "memo update",
		Signer:      wallet,
		Watcher:     wallet,
	})
	assert.Less(t, time.Since(start), 5*time.Second)
	require.NotNil(t, res.Error)
	assert.Equal(t, txerror.Timeout, res.Error.Type)
	assert.Equal(t, "0.0.2@1700000000.000000001", res.TransactionID)
	assert.Contains(t, res.Error.Message, "HashScan")
	assert.Contains(t, res.Error.Message, "/testnet/transaction/0.0.2-1700000000-000000001")
}

func TestFlowConfigsTakeSettings(t *testing.T) {
	s := config.DefaultSettings()
	s.Timing.SettleDelay = config.Duration(750 * time.Millisecond)
	exec := Executor(networks.Testnet, s, nil)

	cfg := ListConfig(listtopic.Config{Kind: listtopic.Channels}, exec, s)
	assert.Same(t, exec, cfg.Executor)
	assert.Equal(t, 750*time.Millisecond, cfg.SettleDelay)

	cfg = ListConfig(listtopic.Config{SettleDelay: time.Millisecond}, exec, s)
	assert.Equal(t, time.Millisecond, cfg.SettleDelay, "an explicit delay wins")

	deps := CreationDeps(profile.CreationDeps{}, exec, s)
	assert.Same(t, exec, deps.Executor)
	assert.Equal(t, 750*time.Millisecond, deps.SettleDelay)
}
