// Package config loads tablescope settings from an optional YAML file and
// then applies TABLESCOPE_* environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/koustreak/tablescope/internal/database"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/logger"
	"github.com/koustreak/tablescope/internal/schema"
	"go.yaml.in/yaml/v3"
)

// Config is the full runtime configuration.
type Config struct {
	Database  database.Config  `yaml:"database"`
	Log       logger.Config    `yaml:"log"`
	HTTP      HTTPConfig       `yaml:"http"`
	FileStore filestore.Config `yaml:"filestore"`

	// DecodePolicy is "abort" or "skip"; see schema.ParseDecodePolicy.
	DecodePolicy string `yaml:"decode_policy"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	PresignTTL      time.Duration `yaml:"presign_ttl"`
}

// Default returns a config that only lacks a database DSN.
func Default() *Config {
	fs := filestore.DefaultConfig("", "", "")
	return &Config{
		Database: *database.DefaultConfig(""),
		Log:      *logger.DefaultConfig(),
		HTTP: HTTPConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			PresignTTL:      15 * time.Minute,
		},
		FileStore:    *fs,
		DecodePolicy: schema.PolicyAbort.String(),
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config file "+path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy returns the parsed decode policy.
func (c *Config) Policy() schema.DecodePolicy {
	p, _ := schema.ParseDecodePolicy(c.DecodePolicy)
	return p
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if !logger.ValidLevel(c.Log.Level) {
		return errs.Newf(errs.ErrKindInvalidInput, "invalid log level %q: must be debug, info, warn, or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "invalid log format %q: must be json or console", c.Log.Format)
	}
	if c.HTTP.ListenAddr == "" {
		return errs.New(errs.ErrKindInvalidInput, "http listen_addr is required")
	}
	if c.HTTP.PresignTTL < time.Second || c.HTTP.PresignTTL > 7*24*time.Hour {
		return errs.Newf(errs.ErrKindInvalidInput, "http presign_ttl %s must be between 1s and 7 days", c.HTTP.PresignTTL)
	}
	if _, err := schema.ParseDecodePolicy(c.DecodePolicy); err != nil {
		return err
	}
	if c.FileStore.Enabled() {
		if err := c.FileStore.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString("TABLESCOPE_DB_DRIVER", (*string)(&c.Database.Driver))
	setString("TABLESCOPE_DB_DSN", &c.Database.DSN)
	setString("TABLESCOPE_LOG_LEVEL", &c.Log.Level)
	setString("TABLESCOPE_LOG_FORMAT", &c.Log.Format)
	setString("TABLESCOPE_LISTEN_ADDR", &c.HTTP.ListenAddr)
	setString("TABLESCOPE_DECODE_POLICY", &c.DecodePolicy)
	setString("TABLESCOPE_FILESTORE_ENDPOINT", &c.FileStore.Endpoint)
	setString("TABLESCOPE_FILESTORE_ACCESS_KEY", &c.FileStore.AccessKey)
	setString("TABLESCOPE_FILESTORE_SECRET_KEY", &c.FileStore.SecretKey)
	setString("TABLESCOPE_FILESTORE_BUCKET", &c.FileStore.DefaultBucket)
	setString("TABLESCOPE_FILESTORE_REGION", &c.FileStore.Region)

	return errors.Join(
		setInt32("TABLESCOPE_DB_MAX_CONNS", &c.Database.MaxConns),
		setInt32("TABLESCOPE_DB_MIN_CONNS", &c.Database.MinConns),
		setDuration("TABLESCOPE_DB_CONNECT_TIMEOUT", &c.Database.ConnectTimeout),
		setDuration("TABLESCOPE_DB_QUERY_TIMEOUT", &c.Database.QueryTimeout),
		setBool("TABLESCOPE_FILESTORE_USE_SSL", &c.FileStore.UseSSL),
	)
}

func setString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func setInt32(key string, dst *int32) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
	if err != nil || n < 0 {
		return envError(key, v, "must be a non-negative integer", err)
	}
	*dst = int32(n)
	return nil
}

func setDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d < 0 {
		return envError(key, v, "must be a non-negative duration", err)
	}
	*dst = d
	return nil
}

func setBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return envError(key, v, "must be a boolean", err)
	}
	*dst = b
	return nil
}

func envError(key, value, want string, cause error) error {
	msg := fmt.Sprintf("invalid %s value %q: %s", key, value, want)
	if cause == nil {
		return errs.New(errs.ErrKindInvalidInput, msg)
	}
	return errs.Wrap(errs.ErrKindInvalidInput, msg, cause)
}
