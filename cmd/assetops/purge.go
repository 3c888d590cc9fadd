package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jonwraymond/assetops/cache"
)

func purgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "remove bundles older than the retention period",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "max-age",
				Usage: "override store.retention; 0 keeps everything",
			},
		},
		Action: purgeAction,
	}
}

func purgeAction(ctx context.Context, cmd *cli.Command) error {
	env, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	store, err := env.cfg.NewFileStore()
	if err != nil {
		return err
	}

	policy := env.cfg.RetentionPolicy()
	if cmd.IsSet("max-age") {
		policy = cache.RetentionPolicy{MaxAge: cmd.Duration("max-age")}
	}
	if !policy.ShouldPurge() {
		fmt.Fprintln(env.out, "retention disabled, nothing purged")
		return nil
	}

	res, err := store.Purge(ctx, policy)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "removed %d, kept %d, freed %d bytes\n", res.Removed, res.Kept, res.Bytes)
	return nil
}
