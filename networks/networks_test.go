package networks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNetworkByNameAndAlias(t *testing.T) {
	n, err := GetNetwork("testnet")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n.GetLedgerID())

	alias, err := GetNetwork("hedera")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", alias.GetName())

	_, err = GetNetwork("ropsten")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestMirrorNodeEnvOverride(t *testing.T) {
	t.Setenv("HEDERA_TESTNET_MIRROR", "http://localhost:5551/")
	assert.Equal(t, "http://localhost:5551", NewTestnet().GetMirrorNodeURL())
}

func TestNewNetworkFromJSON(t *testing.T) {
	n, err := NewNetworkFromJSON([]byte(`{
		"name": "solo",
		"ledger_id": 298,
		"mirror_lag": 1500,
		"default_mirror_node": "http://localhost:8081",
		"explorer_url": "http://localhost:8080",
		"explorer_network": "devnet"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "HBAR", n.GetNativeTokenSymbol())
	assert.Equal(t, 1500*time.Millisecond, n.GetMirrorLag())
	assert.Equal(t, "http://localhost:8080/devnet/topic/0.0.5", n.GetExplorer().TopicURL("0.0.5"))

	_, err = NewNetworkFromJSON([]byte(`{"name": "broken"}`))
	assert.Error(t, err)
}

func TestAddNetworkPersists(t *testing.T) {
	dir := t.TempDir()
	old := CustomNetworksDir
	CustomNetworksDir = dir
	t.Cleanup(func() { CustomNetworksDir = old })

	n := NewGenericMirrorNetwork(GenericMirrorNetworkConfig{
		Name:              "local-node-test",
		LedgerID:          4242,
		DefaultMirrorNode: "http://localhost:5551",
	})
	require.NoError(t, AddNetwork(n))

	got, err := GetNetworkByID(4242)
	require.NoError(t, err)
	assert.Equal(t, "local-node-test", got.GetName())

	_, err = os.Stat(filepath.Join(dir, "local-node-test.json"))
	assert.NoError(t, err)

	assert.Error(t, AddNetwork(n), "duplicate names are rejected")

	moved := NewGenericMirrorNetwork(GenericMirrorNetworkConfig{
		Name:              "local-node-test",
		LedgerID:          4242,
		DefaultMirrorNode: "http://localhost:5552",
	})
	require.NoError(t, ReplaceNetwork(moved))
	got, err = GetNetwork("local-node-test")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5552", got.GetDefaultMirrorNode())

	loaded, err := loadCustomNetworks(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "http://localhost:5552", loaded[0].GetMirrorNodeURL())
}

func TestSetNetworkFallsBackToTestnet(t *testing.T) {
	assert.False(t, SetNetwork("nope"))
	assert.Equal(t, "testnet", CurrentNetwork().GetName())
	assert.True(t, SetNetwork("previewnet"))
	assert.Equal(t, "previewnet", CurrentNetwork().GetName())
}
