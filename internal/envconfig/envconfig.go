// Package envconfig reads the environment variables that shape the example
// cmd/extra-server binary. It deliberately knows nothing about
// httpserver.Config beyond what it needs to populate — the core httpwire,
// httpclient and httpserver packages stay collaborator-agnostic and never
// import this package themselves.
package envconfig

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the CLI-surface settings sourced from the environment.
type Config struct {
	Host string
	Port int

	HTTPProxy  string
	HTTPSProxy string

	// LogOutput is a file path for the server's JSON log, or "" for stderr.
	LogOutput string

	// NoColor and ForceColor mirror the conventional NO_COLOR/FORCE_COLOR
	// signals. Each is set independently when its variable is non-empty;
	// Load does not resolve one against the other.
	NoColor    bool
	ForceColor bool
}

// Load reads Config from the process environment, applying the same
// defaults an operator would get by leaving every variable unset.
func Load() (Config, error) {
	cfg := Config{
		Host:       getEnv("HOST", "0.0.0.0"),
		Port:       8080,
		HTTPProxy:  os.Getenv("HTTP_PROXY"),
		HTTPSProxy: os.Getenv("HTTPS_PROXY"),
		LogOutput:  os.Getenv("EXTRA_LOG_OUTPUT"),
		NoColor:    os.Getenv("NO_COLOR") != "",
		ForceColor: os.Getenv("FORCE_COLOR") != "",
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("envconfig: invalid PORT %q: %w", raw, err)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Addr formats Host/Port as a net.Listen-compatible address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
