package config

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Default values for optional configuration fields.
const (
	DefaultWSURL  = "wss://advanced-trade-ws.coinbase.com"
	DefaultPair   = "BTC-USD"
	DefaultPinCPU = 0
)

// DefaultRoot returns the data root: $HOME/hft-data, or /tmp/hft-data
// when HOME is unset.
func DefaultRoot() string {
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, "hft-data")
	}
	return "/tmp/hft-data"
}

// Default returns a fully-populated configuration so the binary runs
// with no config file and no flags.
func Default() *RecorderConfig {
	cfg := &RecorderConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *RecorderConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = uuid.NewString()
	}
	if c.Feed.WSURL == "" {
		c.Feed.WSURL = DefaultWSURL
	}
	if c.Feed.Pair == "" {
		c.Feed.Pair = DefaultPair
	}
	if c.Feed.PinCPU == nil {
		cpu := DefaultPinCPU
		c.Feed.PinCPU = &cpu
	}
	if c.Storage.Root == "" {
		c.Storage.Root = DefaultRoot()
	}
}
