package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, 60*time.Second, s.Timing.TransactionTimeout.Std())
}

func TestLoadOverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network: mainnet
timing:
  settle_delay: 500ms
  receipt_backoff: [250ms, 1s]
`), 0644))
	t.Setenv(EnvMirrorURL, "http://localhost:5551")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", s.Network)
	assert.Equal(t, "http://localhost:5551", s.MirrorURL)
	assert.Equal(t, 500*time.Millisecond, s.Timing.SettleDelay.Std())
	assert.Equal(t, []time.Duration{250 * time.Millisecond, time.Second}, s.Timing.ReceiptBackoffDurations())
	// untouched keys keep their defaults
	assert.Equal(t, 60*time.Second, s.Timing.TransactionTimeout.Std())
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("timing:\n  settle_delay: soon\n"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("timing:\n  receipt_backoff: []\n"), 0644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "receipt_backoff")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	s := DefaultSettings()
	s.Network = "previewnet"
	s.Timing.SettleDelay = Duration(1500 * time.Millisecond)
	require.NoError(t, Save(path, s))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestApplyFlags(t *testing.T) {
	s := DefaultSettings()
	old := Network
	Network = "mainnet"
	t.Cleanup(func() { Network = old })
	s.ApplyFlags()
	assert.Equal(t, "mainnet", s.Network)
	assert.Equal(t, "console", s.Log.Format)
}
