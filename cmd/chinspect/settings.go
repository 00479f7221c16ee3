package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chinspect/chinspect/internal/inspect"
)

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "List the names of all settings the server exposes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output as a JSON array",
			},
		},
		Action: runSettings,
	}
}

func runSettings(ctx context.Context, cmd *cli.Command) error {
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

	names, err := inspect.New(cat, log, inspect.Options{}).SettingNames(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
