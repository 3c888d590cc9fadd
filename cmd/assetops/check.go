package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jonwraymond/assetops/health"
)

var errUnhealthy = errors.New("unhealthy")

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "verify the webroot and bundle directories",
		Action: checkAction,
	}
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	env, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	store, err := env.cfg.NewFileStore()
	if err != nil {
		return err
	}

	agg := health.NewAggregator()
	agg.Register(health.NewWebrootChecker(env.cfg.Asset.Webroot))
	agg.Register(health.NewStoreChecker(store))

	report := agg.CheckAll(ctx)
	for _, r := range report.Results {
		fmt.Fprintf(env.out, "%-8s %-9s %s\n", r.Name, r.Status, r.Message)
	}
	if report.Status == health.StatusUnhealthy {
		return errUnhealthy
	}
	return nil
}
