package config

import (
	"fmt"
	"strings"
)

// Validate checks a configuration after defaults have been applied.
func (c *RecorderConfig) Validate() error {
	if c.Feed.Pair == "" {
		return fmt.Errorf("feed.pair is required")
	}
	if !strings.HasPrefix(c.Feed.WSURL, "wss://") && !strings.HasPrefix(c.Feed.WSURL, "ws://") {
		return fmt.Errorf("feed.ws_url must be a ws:// or wss:// URL, got %q", c.Feed.WSURL)
	}
	if c.Storage.Root == "" {
		return fmt.Errorf("storage.root is required")
	}
	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port %d out of range", c.Health.Port)
	}
	return nil
}
