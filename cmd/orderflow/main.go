package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/baechuer/orderflow/internal/bootstrap"
	"github.com/baechuer/orderflow/internal/config"
	"github.com/baechuer/orderflow/internal/logger"
)

// runner abstracts the application lifecycle.
// Start may block; Stop performs a graceful shutdown.
type runner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// builder constructs the application instance and returns a cleanup function.
type builder func() (runner, func(), error)

// Run bootstraps the app, starts it and waits for a signal or a crash,
// then stops it within stopWait. It returns a process exit code.
func Run(build builder, sigCh <-chan os.Signal, stopWait time.Duration, lg zerolog.Logger) int {
	app, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := app.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		lg.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		lg.Error().Err(err).Msg("app crashed")
		return 1
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopWait)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		lg.Error().Err(err).Msg("graceful stop failed")
		return 1
	}

	lg.Info().Msg("shutdown complete")
	return 0
}

// exitCode lets an Action report a non-zero status without printing twice.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func serve(name string, wire func(*config.Config, zerolog.Logger) (runner, func(), error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		lg := zlog.Logger.With().Str("app", name).Logger()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		build := func() (runner, func(), error) { return wire(cfg, lg) }
		if code := Run(build, sigCh, cfg.ShutdownWait, lg); code != 0 {
			return exitCode(code)
		}
		return nil
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "orderflow",
		Usage: "Order intake and notification pipeline over Kafka",
		Commands: []*cli.Command{
			{
				Name:  "intake",
				Usage: "Run the order intake HTTP API and event publisher",
				Action: serve("intake", func(cfg *config.Config, lg zerolog.Logger) (runner, func(), error) {
					return bootstrap.NewIntakeApp(cfg, lg)
				}),
			},
			{
				Name:  "notifier",
				Usage: "Run the order event consumer and notification channels",
				Action: serve("notifier", func(cfg *config.Config, lg zerolog.Logger) (runner, func(), error) {
					return bootstrap.NewNotifierApp(cfg, lg)
				}),
			},
			{
				Name:  "topics",
				Usage: "Manage Kafka topics",
				Commands: []*cli.Command{
					{
						Name:  "create",
						Usage: "Create the order events topic if it does not exist",
						Flags: []cli.Flag{
							&cli.DurationFlag{
								Name:  "timeout",
								Value: 30 * time.Second,
								Usage: "Give up after this long",
							},
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							cfg, err := config.Load()
							if err != nil {
								return err
							}
							ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
							defer cancel()
							return bootstrap.CreateTopics(ctx, cfg, zlog.Logger)
						},
					},
				},
			},
		},
	}
}

func main() {
	logger.Init()

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		var code exitCode
		if !errors.As(err, &code) {
			zlog.Error().Err(err).Msg("command failed")
			code = 1
		}
		os.Exit(int(code))
	}
}
