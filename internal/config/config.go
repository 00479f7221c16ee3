// Package config loads and validates the chinspect configuration.
//
// Configuration is layered: compiled-in defaults, then an optional YAML
// file, then environment variables for secrets. Each section has a
// Build method that converts it into the config type of the subsystem
// it describes, so the CLI never assembles driver configs by hand.
package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/chinspect/chinspect/internal/archive"
	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/errs"
	"github.com/chinspect/chinspect/internal/inspect"
	"github.com/chinspect/chinspect/internal/logger"
	"github.com/chinspect/chinspect/internal/server"
)

// DefaultPath is the config file name looked up in the working
// directory when no explicit path is given.
const DefaultPath = "chinspect.yaml"

// Config is the root of the chinspect configuration file.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Inspect  InspectConfig  `yaml:"inspect"`
	Generate GenerateConfig `yaml:"generate"`
	Server   ServerConfig   `yaml:"server"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CatalogConfig describes the ClickHouse connection.
type CatalogConfig struct {
	// Protocol is "native", "mysql", or "postgres".
	Protocol string `yaml:"protocol"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`

	// Password may also come from CHINSPECT_DB_PASSWORD, which wins
	// over the file value.
	Password string `yaml:"password"`

	MaxConns        int32    `yaml:"max_conns"`
	MinConns        int32    `yaml:"min_conns"`
	MaxConnLifetime Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  Duration `yaml:"connect_timeout"`
	QueryTimeout    Duration `yaml:"query_timeout"`
}

// Build converts the section into the catalog driver config.
func (c CatalogConfig) Build() *catalog.Config {
	return &catalog.Config{
		Protocol:        catalog.Protocol(c.Protocol),
		Host:            c.Host,
		Port:            c.Port,
		Database:        c.Database,
		Username:        c.Username,
		Password:        c.Password,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime.Std(),
		MaxConnIdleTime: c.MaxConnIdleTime.Std(),
		ConnectTimeout:  c.ConnectTimeout.Std(),
		QueryTimeout:    c.QueryTimeout.Std(),
	}
}

// InspectConfig describes which tables to introspect.
type InspectConfig struct {
	// Tables, when non-empty, restricts introspection to exactly these
	// tables and skips catalog listing.
	Tables []string `yaml:"tables"`

	// IncludeViews includes views when listing the catalog.
	IncludeViews bool `yaml:"include_views"`

	// Ignore names tables to skip in either mode.
	Ignore []string `yaml:"ignore"`
}

// Build converts the section into introspector options.
func (i InspectConfig) Build() inspect.Options {
	return inspect.Options{
		Tables:       i.Tables,
		IncludeViews: i.IncludeViews,
		Ignore:       i.Ignore,
	}
}

// GenerateConfig describes model generation output.
type GenerateConfig struct {
	// Package is the package name of the generated file.
	Package string `yaml:"package"`

	// Output is the path the generated file is written to.
	// "-" writes to stdout.
	Output string `yaml:"output"`
}

// ServerConfig describes the HTTP API listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Build converts the section into the HTTP server config.
func (s ServerConfig) Build() *server.Config {
	return &server.Config{
		Addr:            s.Addr,
		ReadTimeout:     s.ReadTimeout.Std(),
		WriteTimeout:    s.WriteTimeout.Std(),
		ShutdownTimeout: s.ShutdownTimeout.Std(),
	}
}

// ArchiveConfig describes the snapshot storage backend.
type ArchiveConfig struct {
	// Endpoint is the host:port of the storage server. An empty
	// endpoint disables snapshots.
	Endpoint string `yaml:"endpoint"`

	// AccessKey and SecretKey may also come from
	// CHINSPECT_ARCHIVE_ACCESS_KEY / CHINSPECT_ARCHIVE_SECRET_KEY,
	// which win over the file values.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	UseSSL bool   `yaml:"use_ssl"`
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// Enabled reports whether snapshot storage is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Endpoint != ""
}

// Build converts the section into the archive store config.
func (a ArchiveConfig) Build() *archive.Config {
	return &archive.Config{
		Provider:  archive.ProviderMinIO,
		Endpoint:  a.Endpoint,
		AccessKey: a.AccessKey,
		SecretKey: a.SecretKey,
		UseSSL:    a.UseSSL,
		Region:    a.Region,
		Bucket:    a.Bucket,
		Prefix:    a.Prefix,
	}
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	TimeFormat string `yaml:"time_format"`
}

// Build converts the section into the logger config.
func (l LoggingConfig) Build() *logger.Config {
	return &logger.Config{
		Level:      l.Level,
		Format:     l.Format,
		TimeFormat: l.TimeFormat,
	}
}

// Default returns the compiled-in configuration.
func Default() *Config {
	cat := catalog.DefaultConfig()
	return &Config{
		Catalog: CatalogConfig{
			Protocol:        string(cat.Protocol),
			Host:            cat.Host,
			Database:        cat.Database,
			Username:        cat.Username,
			MaxConns:        cat.MaxConns,
			MinConns:        cat.MinConns,
			MaxConnLifetime: Duration(cat.MaxConnLifetime),
			MaxConnIdleTime: Duration(cat.MaxConnIdleTime),
			ConnectTimeout:  Duration(cat.ConnectTimeout),
			QueryTimeout:    Duration(cat.QueryTimeout),
		},
		Generate: GenerateConfig{
			Package: "models",
			Output:  "models.go",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(10 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Archive: ArchiveConfig{
			Prefix: "chinspect",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			TimeFormat: "rfc3339",
		},
	}
}

// Load builds a Config in three layers: Default values, then the YAML
// file at path, then environment overrides. An empty path skips the
// file layer. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			kind := errs.ErrKindInvalidInput
			if os.IsNotExist(err) {
				kind = errs.ErrKindNotFound
			}
			return nil, errs.Wrap(kind, fmt.Sprintf("cannot read config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("cannot parse config file %s", path), err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover returns DefaultPath if it exists in the working directory,
// or "" when there is none.
func Discover() string {
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// applyEnv copies secrets from the environment so config files can stay
// checked in without credentials.
func (c *Config) applyEnv() {
	if v := os.Getenv("CHINSPECT_DB_PASSWORD"); v != "" {
		c.Catalog.Password = v
	}
	if v := os.Getenv("CHINSPECT_ARCHIVE_ACCESS_KEY"); v != "" {
		c.Archive.AccessKey = v
	}
	if v := os.Getenv("CHINSPECT_ARCHIVE_SECRET_KEY"); v != "" {
		c.Archive.SecretKey = v
	}
}

// Validate reports the first problem that would make the configuration
// unusable at runtime.
func (c *Config) Validate() error {
	switch catalog.Protocol(c.Catalog.Protocol) {
	case catalog.ProtocolNative, catalog.ProtocolMySQL, catalog.ProtocolPostgres:
	default:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown catalog protocol %q", c.Catalog.Protocol))
	}
	if c.Catalog.Host == "" {
		return errs.New(errs.ErrKindInvalidInput, "catalog host must not be empty")
	}
	if c.Catalog.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "catalog database must not be empty")
	}
	if c.Catalog.Port < 0 || c.Catalog.Port > 65535 {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("catalog port %d out of range", c.Catalog.Port))
	}
	if c.Generate.Package == "" {
		return errs.New(errs.ErrKindInvalidInput, "generate package must not be empty")
	}
	if c.Archive.Enabled() && c.Archive.Bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "archive bucket must not be empty when an endpoint is set")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown log level %q", c.Logging.Level))
	}
	return nil
}
