package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/chinspect/chinspect/internal/archive"
	"github.com/chinspect/chinspect/internal/archive/minio"
	"github.com/chinspect/chinspect/internal/errs"
	"github.com/chinspect/chinspect/internal/gen"
	"github.com/chinspect/chinspect/internal/inspect"
)

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Upload the schema descriptors and generated models to the archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "package",
				Aliases: []string{"p"},
				Usage:   "package name of the generated models (default: from config)",
			},
			&cli.DurationFlag{
				Name:  "presign",
				Usage: "also print presigned download URLs valid for this long",
			},
		},
		Action: runSnapshot,
	}
}

func runSnapshot(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	if !cfg.Archive.Enabled() {
		return errs.New(errs.ErrKindInvalidInput, "no archive endpoint configured")
	}

	cat, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	res, err := inspect.New(cat, log, cfg.Inspect.Build()).Run(ctx)
	if err != nil {
		return err
	}
	if n := len(res.Problems); n > 0 {
		log.Warnf("%d problem(s) during introspection", n)
	}

	schemaJSON, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}

	pkg := firstNonEmpty(cmd.String("package"), cfg.Generate.Package)
	models, err := gen.Render(res, gen.Options{Package: pkg})
	if err != nil {
		return err
	}

	store, err := minio.New(ctx, cfg.Archive.Build())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	info, err := archive.WriteSnapshot(ctx, store, cfg.Archive.Prefix, time.Now(), []archive.Artifact{
		{Name: "schema.json", ContentType: "application/json", Body: schemaJSON},
		{Name: "models.go", ContentType: "text/x-go", Body: models},
	})
	if err != nil {
		return err
	}

	log.Infof("snapshot %s uploaded (%d objects)", info.Key, len(info.Objects))

	ttl := cmd.Duration("presign")
	for _, obj := range info.Objects {
		if ttl > 0 {
			u, err := store.Presign(ctx, obj.Key, ttl)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", obj.Key, u)
		} else {
			fmt.Println(obj.Key)
		}
	}
	return nil
}
