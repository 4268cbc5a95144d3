package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvNetwork   = "HSOCIAL_NETWORK"
	EnvMirrorURL = "HSOCIAL_MIRROR_URL"
	EnvLogLevel  = "HSOCIAL_LOG_LEVEL"
)

// Duration is a time.Duration written as "1500ms" or "2s" in YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

type Settings struct {
	Network   string         `yaml:"network"`
	MirrorURL string         `yaml:"mirror_url,omitempty"`
	Log       LogSettings    `yaml:"log"`
	Timing    TimingSettings `yaml:"timing"`
}

type LogSettings struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// TimingSettings holds the delays tuned for ledger and mirror node
// propagation. None of them is load bearing; they only trade latency for
// fewer wasted polls.
type TimingSettings struct {
	TransactionTimeout Duration   `yaml:"transaction_timeout"`
	SettleDelay        Duration   `yaml:"settle_delay"`
	ReceiptBackoff     []Duration `yaml:"receipt_backoff"`
	ReceiptLostAfter   Duration   `yaml:"receipt_lost_after"`
	MirrorTimeout      Duration   `yaml:"mirror_timeout"`
	MirrorPageLimit    int        `yaml:"mirror_page_limit"`
}

func DefaultSettings() Settings {
	return Settings{
		Network: "testnet",
		Log: LogSettings{
			Level:  "info",
			Format: "console",
		},
		Timing: TimingSettings{
			TransactionTimeout: Duration(60 * time.Second),
			SettleDelay:        Duration(2 * time.Second),
			ReceiptBackoff: []Duration{
				Duration(1 * time.Second),
				Duration(2 * time.Second),
				Duration(3 * time.Second),
				Duration(5 * time.Second),
			},
			ReceiptLostAfter: Duration(2 * time.Minute),
			MirrorTimeout:    Duration(10 * time.Second),
			MirrorPageLimit:  100,
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hsocial", "config.yaml")
}

// ReceiptBackoffDurations returns the backoff schedule as plain durations.
func (t TimingSettings) ReceiptBackoffDurations() []time.Duration {
	res := make([]time.Duration, 0, len(t.ReceiptBackoff))
	for _, d := range t.ReceiptBackoff {
		res = append(res, d.Std())
	}
	return res
}

// Load reads settings from path on top of the defaults, then applies env
// overrides. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := DefaultSettings()
	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return s, fmt.Errorf("couldn't read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(content, &s); err != nil {
				return s, fmt.Errorf("couldn't parse %s: %w", path, err)
			}
		}
	}
	s.applyEnv()
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Settings) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvNetwork)); v != "" {
		s.Network = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMirrorURL)); v != "" {
		s.MirrorURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		s.Log.Level = v
	}
}

// ApplyFlags lets non-empty flag globals win over file and env values.
func (s *Settings) ApplyFlags() {
	if Network != "" {
		s.Network = Network
	}
	if MirrorURL != "" {
		s.MirrorURL = MirrorURL
	}
	if LogLevel != "" {
		s.Log.Level = LogLevel
	}
	if LogFormat != "" {
		s.Log.Format = LogFormat
	}
}

func (s Settings) Validate() error {
	if s.Timing.TransactionTimeout <= 0 {
		return fmt.Errorf("timing.transaction_timeout must be positive")
	}
	if s.Timing.SettleDelay < 0 {
		return fmt.Errorf("timing.settle_delay must not be negative")
	}
	if len(s.Timing.ReceiptBackoff) == 0 {
		return fmt.Errorf("timing.receipt_backoff must have at least one entry")
	}
	for i, d := range s.Timing.ReceiptBackoff {
		if d <= 0 {
			return fmt.Errorf("timing.receipt_backoff[%d] must be positive", i)
		}
	}
	if s.Timing.MirrorPageLimit <= 0 || s.Timing.MirrorPageLimit > 100 {
		return fmt.Errorf("timing.mirror_page_limit must be between 1 and 100")
	}
	return nil
}

// Save writes s as YAML, creating the parent directory.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("couldn't create %s: %w", filepath.Dir(path), err)
	}
	content, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("couldn't marshal settings: %w", err)
	}
	return os.WriteFile(path, content, 0644)
}
