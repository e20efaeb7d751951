package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using its
// `env` and `envDefault` tags.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadWithPrefix is like Load but every tag is looked up with prefix
// prepended, so `env:"DB"` with prefix "REVIEWCTL_" reads REVIEWCTL_DB.
func LoadWithPrefix(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse config with prefix %s: %w", prefix, err)
	}
	return nil
}
