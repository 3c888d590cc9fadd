package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jonwraymond/assetops/config"
)

var errManifestRequired = errors.New("manifest path is required")

func warmCommand() *cli.Command {
	return &cli.Command{
		Name:      "warm",
		Usage:     "build the bundles listed in a manifest",
		ArgsUsage: "MANIFEST",
		Action:    warmAction,
	}
}

func warmAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errManifestRequired
	}
	manifest, err := config.LoadManifest(cmd.Args().First())
	if err != nil {
		return err
	}

	env, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	store, err := env.cfg.NewFileStore()
	if err != nil {
		return err
	}
	engine, err := env.cfg.NewEngine(store, env.mw)
	if err != nil {
		return err
	}

	for i, mg := range manifest.Groups {
		kind, group, err := mg.Group()
		if err != nil {
			return fmt.Errorf("group %d: %w", i, err)
		}
		fmt.Fprintf(env.out, "# %s %s\n", kind, mg.Position)
		for _, entry := range engine.OptimizeGroup(ctx, kind, group) {
			fmt.Fprintln(env.out, entry.ID)
		}
	}
	return nil
}
