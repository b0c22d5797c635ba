// Package config loads rdf-fetch settings from a file and RDFFETCH_*
// environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/geoknoesis/rdf-fetch/fetch"
	"github.com/geoknoesis/rdf-fetch/rdf"
)

// EnvPrefix prefixes environment overrides, e.g. RDFFETCH_HTTP_TIMEOUT.
const EnvPrefix = "RDFFETCH"

// Config holds all rdf-fetch configuration.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Decode  DecodeConfig  `mapstructure:"decode"`
	Resolve ResolveConfig `mapstructure:"resolve"`
	Log     LogConfig     `mapstructure:"log"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	// RateLimit is in requests per second; 0 disables throttling.
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

type DecodeConfig struct {
	MaxLineBytes int   `mapstructure:"max_line_bytes"`
	MaxQuads     int64 `mapstructure:"max_quads"`
}

type ResolveConfig struct {
	// Order lists resolution steps by name: explicit, lookup, metadata.
	Order []string `mapstructure:"order"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "rdf-fetch")
	v.SetDefault("http.rate_limit", 0.0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("decode.max_line_bytes", rdf.DefaultMaxLineBytes)
	v.SetDefault("decode.max_quads", int64(rdf.DefaultMaxQuads))
	v.SetDefault("resolve.order", []string{"explicit", "lookup", "metadata"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := load(viper.New())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from path and the environment. An empty path
// uses defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.HTTP.Timeout < 0 {
		warnings = append(warnings, fmt.Sprintf("http.timeout %s is negative", c.HTTP.Timeout))
	}
	if c.HTTP.RateLimit < 0 {
		warnings = append(warnings, fmt.Sprintf("http.rate_limit %.2f is negative, throttling disabled", c.HTTP.RateLimit))
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.Burst < 1 {
		warnings = append(warnings, fmt.Sprintf("http.burst %d is below 1, using 1", c.HTTP.Burst))
	}
	if c.Decode.MaxQuads < 0 {
		warnings = append(warnings, fmt.Sprintf("decode.max_quads %d is negative, no limit applied", c.Decode.MaxQuads))
	}
	if _, err := c.ResolutionOrder(); err != nil {
		warnings = append(warnings, err.Error())
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		warnings = append(warnings, fmt.Sprintf("log.format %q is unknown, using text", c.Log.Format))
	}

	return warnings
}

// ResolutionOrder parses Resolve.Order.
func (c *Config) ResolutionOrder() ([]fetch.ResolutionStep, error) {
	steps := make([]fetch.ResolutionStep, 0, len(c.Resolve.Order))
	for _, name := range c.Resolve.Order {
		step, err := fetch.ParseResolutionStep(name)
		if err != nil {
			return nil, fmt.Errorf("resolve.order: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// DecodeOptions converts the decode section into decoder limits.
func (c *Config) DecodeOptions() rdf.DecodeOptions {
	opts := rdf.DefaultDecodeOptions()
	if c.Decode.MaxLineBytes != 0 {
		opts.MaxLineBytes = c.Decode.MaxLineBytes
	}
	if c.Decode.MaxQuads > 0 {
		opts.MaxQuads = c.Decode.MaxQuads
	}
	return opts
}
