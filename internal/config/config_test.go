package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdf-fetch/fetch"
	"github.com/geoknoesis/rdf-fetch/rdf"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "rdf-fetch", cfg.HTTP.UserAgent)
	assert.Equal(t, rdf.DefaultMaxLineBytes, cfg.Decode.MaxLineBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Validate())

	order, err := cfg.ResolutionOrder()
	require.NoError(t, err)
	assert.Equal(t, fetch.DefaultResolutionOrder, order)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rdf-fetch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  timeout: 5s
  rate_limit: 2.5
  burst: 4
decode:
  max_quads: 1000
resolve:
  order: [metadata, explicit]
log:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2.5, cfg.HTTP.RateLimit)
	assert.Equal(t, 4, cfg.HTTP.Burst)
	assert.Equal(t, "rdf-fetch", cfg.HTTP.UserAgent, "unset keys keep defaults")
	assert.Equal(t, int64(1000), cfg.DecodeOptions().MaxQuads)
	assert.Equal(t, "json", cfg.Log.Format)

	order, err := cfg.ResolutionOrder()
	require.NoError(t, err)
	assert.Equal(t, []fetch.ResolutionStep{fetch.StepMetadata, fetch.StepExplicit}, order)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RDFFETCH_HTTP_TIMEOUT", "750ms")
	t.Setenv("RDFFETCH_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.HTTP.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative timeout", func(c *Config) { c.HTTP.Timeout = -time.Second }, "http.timeout"},
		{"negative rate", func(c *Config) { c.HTTP.RateLimit = -1 }, "http.rate_limit"},
		{"zero burst", func(c *Config) { c.HTTP.RateLimit = 1; c.HTTP.Burst = 0 }, "http.burst"},
		{"negative quads", func(c *Config) { c.Decode.MaxQuads = -1 }, "decode.max_quads"},
		{"unknown step", func(c *Config) { c.Resolve.Order = []string{"accept"} }, "resolve.order"},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			warnings := cfg.Validate()
			require.Len(t, warnings, 1)
			assert.True(t, strings.Contains(warnings[0], tt.want), warnings[0])
		})
	}
}
