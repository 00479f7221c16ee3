package main

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/chinspect/chinspect/internal/inspect"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Introspect tables and print their descriptors as JSON",
		ArgsUsage: "[tables...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "include-views",
				Usage: "also introspect views",
			},
			&cli.StringSliceFlag{
				Name:  "ignore",
				Usage: "table names to skip (repeatable)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   `output path, "-" for stdout`,
			},
		},
		Action: runInspect,
	}
}

func runInspect(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	cat, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	opts := cfg.Inspect.Build()
	if tables := cmd.Args().Slice(); len(tables) > 0 {
		opts.Tables = tables
	}
	if cmd.Bool("include-views") {
		opts.IncludeViews = true
	}
	if ignore := cmd.StringSlice("ignore"); len(ignore) > 0 {
		opts.Ignore = append(opts.Ignore, ignore...)
	}

	res, err := inspect.New(cat, log, opts).Run(ctx)
	if err != nil {
		return err
	}
	if n := len(res.Problems); n > 0 {
		log.Warnf("%d problem(s) during introspection", n)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')

	return writeOutput(cmd.String("out"), out)
}
