package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/jonwraymond/assetops/config"
	"github.com/jonwraymond/assetops/observe"
)

const configFlag = "config"

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "assetops",
		Usage: "combine, minify and cache page assets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration",
				Value:   "assetops.yaml",
				Sources: cli.EnvVars("ASSETOPS_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			warmCommand(),
			purgeCommand(),
			checkCommand(),
		},
	}
}

// env is what every subcommand needs: the loaded configuration and the
// telemetry built from it.
type env struct {
	cfg *config.Config
	obs observe.Observer
	mw  *observe.Middleware
	out io.Writer
}

func setup(ctx context.Context, cmd *cli.Command) (*env, error) {
	cfg, err := config.Load(ctx, cmd.String(configFlag))
	if err != nil {
		return nil, err
	}
	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("observe: %w", err)
	}
	return &env{cfg: cfg, obs: obs, mw: mw, out: cmd.Root().Writer}, nil
}

func (e *env) close(ctx context.Context) {
	if err := e.obs.Shutdown(ctx); err != nil {
		e.obs.Logger().Warn(ctx, "telemetry shutdown failed", observe.Field{Key: "error", Value: err.Error()})
	}
}
