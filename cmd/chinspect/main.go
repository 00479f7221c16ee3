// Command chinspect reverse-engineers ClickHouse schemas into typed
// Go models. It connects over the native TCP protocol or one of the
// SQL compatibility ports, decodes the compact column type strings,
// and emits table descriptors, generated structs, or an HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/catalog/mysql"
	"github.com/chinspect/chinspect/internal/catalog/native"
	"github.com/chinspect/chinspect/internal/catalog/postgres"
	"github.com/chinspect/chinspect/internal/config"
	"github.com/chinspect/chinspect/internal/errs"
	"github.com/chinspect/chinspect/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "chinspect",
		Usage:   "Reverse-engineer ClickHouse schemas into typed Go models",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Sources: cli.EnvVars("CHINSPECT_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "protocol",
				Usage: "connection protocol: native, mysql, or postgres",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "server host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "server port (default: the protocol's standard port)",
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "database to introspect",
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "database username",
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "database password",
				Sources: cli.EnvVars("CHINSPECT_DB_PASSWORD"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			inspectCommand(),
			generateCommand(),
			serveCommand(),
			snapshotCommand(),
			settingsCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file under any connection flags given on
// the command line. Flags win over the file; the file wins over the
// compiled-in defaults.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	if path == "" {
		path = config.Discover()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v := cmd.String("protocol"); v != "" {
		cfg.Catalog.Protocol = v
	}
	if v := cmd.String("host"); v != "" {
		cfg.Catalog.Host = v
	}
	if v := int(cmd.Int("port")); v != 0 {
		cfg.Catalog.Port = v
	}
	if v := cmd.String("database"); v != "" {
		cfg.Catalog.Database = v
	}
	if v := cmd.String("username"); v != "" {
		cfg.Catalog.Username = v
	}
	if v := cmd.String("password"); v != "" {
		cfg.Catalog.Password = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the config, honoring the
// --verbose flag.
func newLogger(cmd *cli.Command, cfg *config.Config) *logger.Logger {
	lc := cfg.Logging.Build()
	if cmd.Bool("verbose") {
		lc.Level = "debug"
	}
	return logger.New(lc)
}

// openCatalog constructs the driver selected by the configured protocol
// and validates the connection.
func openCatalog(ctx context.Context, cfg *config.Config) (catalog.Catalog, error) {
	cat := cfg.Catalog.Build()
	switch cat.Protocol {
	case catalog.ProtocolNative:
		return native.New(ctx, cat)
	case catalog.ProtocolMySQL:
		return mysql.New(ctx, cat)
	case catalog.ProtocolPostgres:
		return postgres.New(ctx, cat)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown catalog protocol %q", cat.Protocol))
	}
}

// writeOutput writes data to path, or to stdout when path is "" or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
