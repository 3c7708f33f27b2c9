package config

import (
	"fmt"

	"github.com/tzoracle/oracled/internal/core/address"
)

// Validate checks the configuration for values that would make the daemon
// misbehave at runtime.
func Validate(c *Config) error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}

	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not a known level", c.Log.Level)
	}

	// Genesis identities must be well-formed addresses; a typo here would
	// permanently lock the admin role on a fresh data dir.
	if c.Genesis.Admin != "" {
		if err := address.Check(c.Genesis.Admin); err != nil {
			return fmt.Errorf("genesis.admin %q: %w", c.Genesis.Admin, err)
		}
	}
	for _, w := range c.Genesis.Whitelist {
		if err := address.Check(w); err != nil {
			return fmt.Errorf("genesis.whitelist entry %q: %w", w, err)
		}
	}
	for _, p := range c.Genesis.SupportedPairs {
		if p == "" {
			return fmt.Errorf("genesis.supported_pairs contains an empty symbol")
		}
	}

	for target := range c.Targets {
		if err := address.Check(target); err != nil {
			return fmt.Errorf("targets key %q: %w", target, err)
		}
	}
	return nil
}
