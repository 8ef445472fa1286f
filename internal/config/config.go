// Package config reads service configuration from the environment.
package config

import (
	"strings"

	"github.com/joeshaw/envdecode"
)

type Config struct {
	// Port the HTTP server listens on.
	Port int `env:"PORT,default=8080"`
	// DatabaseURL is a Postgres DSN. When empty the service runs on the
	// in-memory store.
	DatabaseURL string `env:"DATABASE_URL"`
	// KafkaBrokers is a comma-separated broker list. When empty no transfer
	// events are published.
	KafkaBrokers string `env:"KAFKA_BROKERS"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Brokers splits KafkaBrokers into individual addresses.
func (c Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
