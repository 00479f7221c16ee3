package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinspect/chinspect/internal/archive"
	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/errs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chinspect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "native", cfg.Catalog.Protocol)
	assert.Equal(t, "localhost", cfg.Catalog.Host)
	assert.Equal(t, "default", cfg.Catalog.Database)
	assert.Equal(t, 30*time.Second, cfg.Catalog.QueryTimeout.Std())
	assert.Equal(t, "models", cfg.Generate.Package)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "chinspect", cfg.Archive.Prefix)
	assert.False(t, cfg.Archive.Enabled())
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	path := writeConfig(t, `
catalog:
  protocol: postgres
  port: 9005
  password: filepass
inspect:
  include_views: true
  ignore: [migrations]
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden by the file.
	assert.Equal(t, "postgres", cfg.Catalog.Protocol)
	assert.Equal(t, 9005, cfg.Catalog.Port)
	assert.Equal(t, "filepass", cfg.Catalog.Password)
	assert.True(t, cfg.Inspect.IncludeViews)
	assert.Equal(t, []string{"migrations"}, cfg.Inspect.Ignore)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched defaults survive.
	assert.Equal(t, "localhost", cfg.Catalog.Host)
	assert.Equal(t, "models", cfg.Generate.Package)
	assert.Equal(t, 30*time.Second, cfg.Catalog.QueryTimeout.Std())
}

func TestLoadParsesDurations(t *testing.T) {
	path := writeConfig(t, `
catalog:
  connect_timeout: 2s
  max_conn_lifetime: 1h
server:
  read_timeout: 500ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Catalog.ConnectTimeout.Std())
	assert.Equal(t, time.Hour, cfg.Catalog.MaxConnLifetime.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.Server.ReadTimeout.Std())
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := writeConfig(t, `
catalog:
  connect_timeout: banana
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
catalog:
  password: filepass
archive:
  endpoint: localhost:9000
  bucket: snapshots
  access_key: filekey
  secret_key: filesecret
`)

	t.Setenv("CHINSPECT_DB_PASSWORD", "envpass")
	t.Setenv("CHINSPECT_ARCHIVE_ACCESS_KEY", "envkey")
	t.Setenv("CHINSPECT_ARCHIVE_SECRET_KEY", "envsecret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "envpass", cfg.Catalog.Password)
	assert.Equal(t, "envkey", cfg.Archive.AccessKey)
	assert.Equal(t, "envsecret", cfg.Archive.SecretKey)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "native", cfg.Catalog.Protocol)
	assert.Equal(t, "localhost", cfg.Catalog.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "catalog: [not: a: mapping\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown protocol", func(c *Config) { c.Catalog.Protocol = "http" }, "protocol"},
		{"empty host", func(c *Config) { c.Catalog.Host = "" }, "host"},
		{"empty database", func(c *Config) { c.Catalog.Database = "" }, "database"},
		{"port out of range", func(c *Config) { c.Catalog.Port = 70000 }, "port"},
		{"empty generate package", func(c *Config) { c.Generate.Package = "" }, "package"},
		{"archive without bucket", func(c *Config) { c.Archive.Endpoint = "localhost:9000" }, "bucket"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, "level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.Equal(t, "", Discover())

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultPath), []byte("logging:\n  level: info\n"), 0o600))
	assert.Equal(t, DefaultPath, Discover())
}

func TestBuildBridges(t *testing.T) {
	cfg := Default()
	cfg.Catalog.Protocol = "mysql"
	cfg.Catalog.Port = 9004
	cfg.Catalog.Password = "secret"
	cfg.Archive.Endpoint = "localhost:9000"
	cfg.Archive.Bucket = "snapshots"

	cat := cfg.Catalog.Build()
	assert.Equal(t, catalog.ProtocolMySQL, cat.Protocol)
	assert.Equal(t, 9004, cat.Port)
	assert.Equal(t, "secret", cat.Password)
	assert.Equal(t, 30*time.Minute, cat.MaxConnLifetime)
	assert.Equal(t, 10*time.Second, cat.ConnectTimeout)

	arc := cfg.Archive.Build()
	assert.Equal(t, archive.ProviderMinIO, arc.Provider)
	assert.Equal(t, "localhost:9000", arc.Endpoint)
	assert.Equal(t, "snapshots", arc.Bucket)
	assert.Equal(t, "chinspect", arc.Prefix)

	opts := cfg.Inspect.Build()
	assert.Empty(t, opts.Tables)
	assert.False(t, opts.IncludeViews)

	log := cfg.Logging.Build()
	assert.Equal(t, "info", log.Level)
	assert.Equal(t, "json", log.Format)

	srv := cfg.Server.Build()
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)
}
