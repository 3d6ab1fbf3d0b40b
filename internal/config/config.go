// Package config loads the duckgate server configuration from an optional
// YAML file plus DUCKGATE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/errs"
	"github.com/koustreak/duckgate/internal/filestore"
	"github.com/koustreak/duckgate/internal/logger"
)

// Config is the root of the configuration file.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Pool   PoolConfig   `yaml:"pool"`
	Export ExportConfig `yaml:"export"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig mirrors logger.Config.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	TimeFormat string `yaml:"time_format"`
}

// PoolConfig tunes the pool opened for every session.
type PoolConfig struct {
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

// ExportConfig points table exports at an object store. An empty Endpoint
// disables exports.
type ExportConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
}

// Default returns a configuration that works for local development.
func Default() *Config {
	pool := database.DefaultConfig()
	lg := logger.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			CORSOrigins:     []string{"http://localhost:5173"},
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level:      lg.Level,
			Format:     lg.Format,
			TimeFormat: lg.TimeFormat,
		},
		Pool: PoolConfig{
			MaxConns:        pool.MaxConns,
			MinConns:        pool.MinConns,
			MaxConnLifetime: pool.MaxConnLifetime,
			MaxConnIdleTime: pool.MaxConnIdleTime,
			ConnectTimeout:  pool.ConnectTimeout,
		},
		Export: ExportConfig{
			Bucket: "duckgate-exports",
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindValidation, "failed to read config file", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindValidation, "failed to parse config file", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"DUCKGATE_ADDR":              &c.Server.Addr,
		"DUCKGATE_LOG_LEVEL":         &c.Log.Level,
		"DUCKGATE_LOG_FORMAT":        &c.Log.Format,
		"DUCKGATE_EXPORT_ENDPOINT":   &c.Export.Endpoint,
		"DUCKGATE_EXPORT_ACCESS_KEY": &c.Export.AccessKey,
		"DUCKGATE_EXPORT_SECRET_KEY": &c.Export.SecretKey,
		"DUCKGATE_EXPORT_BUCKET":     &c.Export.Bucket,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("DUCKGATE_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("DUCKGATE_EXPORT_USE_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.Newf(errs.ErrKindValidation, "DUCKGATE_EXPORT_USE_SSL: invalid boolean %q", v)
		}
		c.Export.UseSSL = b
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Server.Addr) == "":
		return errs.New(errs.ErrKindValidation, "server.addr is required")
	case c.Pool.MaxConns <= 0:
		return errs.Newf(errs.ErrKindValidation, "pool.max_conns must be positive, got %d", c.Pool.MaxConns)
	case c.Pool.MinConns < 0 || c.Pool.MinConns > c.Pool.MaxConns:
		return errs.Newf(errs.ErrKindValidation, "pool.min_conns must be between 0 and %d", c.Pool.MaxConns)
	case !logger.ValidLevel(c.Log.Level):
		return errs.Newf(errs.ErrKindValidation, "log.level: unknown level %q", c.Log.Level)
	case c.Log.Format != "json" && c.Log.Format != "console":
		return errs.Newf(errs.ErrKindValidation, "log.format must be json or console, got %q", c.Log.Format)
	case c.Export.Endpoint != "" && c.Export.Bucket == "":
		return errs.New(errs.ErrKindValidation, "export.bucket is required when export.endpoint is set")
	}
	return nil
}

// Logger converts the log section into a logger.Config.
func (c *Config) Logger() *logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	if c.Log.TimeFormat != "" {
		lc.TimeFormat = c.Log.TimeFormat
	}
	return lc
}

// Database converts the pool section into the per-session pool template.
func (c *Config) Database() *database.Config {
	dc := database.DefaultConfig()
	dc.MaxConns = c.Pool.MaxConns
	dc.MinConns = c.Pool.MinConns
	dc.MaxConnLifetime = c.Pool.MaxConnLifetime
	dc.MaxConnIdleTime = c.Pool.MaxConnIdleTime
	dc.ConnectTimeout = c.Pool.ConnectTimeout
	return dc
}

// FileStore converts the export section, or returns nil when exports are off.
func (c *Config) FileStore() *filestore.Config {
	if c.Export.Endpoint == "" {
		return nil
	}
	fc := filestore.DefaultConfig(c.Export.Endpoint, c.Export.AccessKey, c.Export.SecretKey)
	fc.UseSSL = c.Export.UseSSL
	fc.Region = c.Export.Region
	fc.Bucket = c.Export.Bucket
	return fc
}

// String summarises the effective settings without secrets.
func (c *Config) String() string {
	export := "disabled"
	if c.Export.Endpoint != "" {
		export = c.Export.Endpoint + "/" + c.Export.Bucket
	}
	return fmt.Sprintf("addr=%s log=%s/%s pool=%d export=%s",
		c.Server.Addr, c.Log.Level, c.Log.Format, c.Pool.MaxConns, export)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
