// Package config loads the service's runtime configuration with viper:
// defaults, an optional YAML file, and LEQO_-prefixed environment
// variables overriding both, in that order (spec.md §5's per-request
// timeout and §4.2's unroll ceiling both live here as server-wide
// defaults a request can't exceed).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the service's runtime configuration.
type Config struct {
	// Debug enables debug-level logging (internal/logger).
	Debug bool
	// Port is the HTTP listen port.
	Port int
	// Optimize is loaded (default true) but the compile path does not read
	// it: a request that omits options.optimize gets graphbuilder.Decode's
	// own default of true.
	Optimize bool
	// UnrollCeiling bounds a repeat node's iteration count server-wide;
	// a request asking for more fails with UnrollBoundExceeded rather
	// than silently clamping (spec.md §4.2).
	UnrollCeiling int
	// RequestTimeout bounds a single compile job end to end (spec.md §5).
	RequestTimeout time.Duration
}

const envPrefix = "LEQO"

// Load reads defaults, then an optional YAML file at path (skipped
// entirely when path is empty), then LEQO_-prefixed environment
// variables, in increasing priority.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("debug", false)
	v.SetDefault("port", 8080)
	v.SetDefault("optimize", true)
	v.SetDefault("unroll_ceiling", 1024)
	v.SetDefault("request_timeout", 30*time.Second)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return &Config{
		Debug:          v.GetBool("debug"),
		Port:           v.GetInt("port"),
		Optimize:       v.GetBool("optimize"),
		UnrollCeiling:  v.GetInt("unroll_ceiling"),
		RequestTimeout: v.GetDuration("request_timeout"),
	}, nil
}
