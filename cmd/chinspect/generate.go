package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/chinspect/chinspect/internal/gen"
	"github.com/chinspect/chinspect/internal/inspect"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Generate Go structs for the introspected tables",
		ArgsUsage: "[tables...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "package",
				Aliases: []string{"p"},
				Usage:   "package name of the generated file (default: from config)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   `output path, "-" for stdout (default: from config)`,
			},
			&cli.BoolFlag{
				Name:  "include-views",
				Usage: "also generate structs for views",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(ctx context.Context, cmd *cli.Command) error {
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

	res, err := inspect.New(cat, log, opts).Run(ctx)
	if err != nil {
		return err
	}
	if n := len(res.Problems); n > 0 {
		log.Warnf("%d problem(s) during introspection", n)
	}

	pkg := firstNonEmpty(cmd.String("package"), cfg.Generate.Package)
	src, err := gen.Render(res, gen.Options{Package: pkg})
	if err != nil {
		return err
	}

	outPath := firstNonEmpty(cmd.String("out"), cfg.Generate.Output)
	if err := writeOutput(outPath, src); err != nil {
		return err
	}
	if outPath != "" && outPath != "-" {
		log.Infof("wrote %d table model(s) to %s", len(res.Tables), outPath)
	}
	return nil
}
