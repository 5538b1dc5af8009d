package filestore

import (
	"testing"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("localhost:9000", "minioadmin", "minioadmin")

	assert.Equal(t, ProviderMinIO, cfg.Provider)
	assert.Equal(t, "tablescope-snapshots", cfg.DefaultBucket)
	assert.False(t, cfg.UseSSL)
	assert.True(t, cfg.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Enabled(t *testing.T) {
	var nilCfg *Config
	assert.False(t, nilCfg.Enabled())
	assert.False(t, DefaultConfig("", "", "").Enabled())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"provider", func(c *Config) { c.Provider = "gcs" }},
		{"access key", func(c *Config) { c.AccessKey = "" }},
		{"secret key", func(c *Config) { c.SecretKey = "" }},
		{"bucket", func(c *Config) { c.DefaultBucket = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("localhost:9000", "ak", "sk")
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}
}
