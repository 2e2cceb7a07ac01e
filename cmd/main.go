package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"feedctl/config"
	"feedctl/internal/adapter/in/cli"
	"feedctl/internal/adapter/in/tui"
	"feedctl/internal/adapter/out/pubsub/inmemory"
	"feedctl/internal/app"
	"feedctl/internal/service"
	"feedctl/pkg/logger"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := pflag.NewFlagSet("feedctl", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	configPath := global.String("config", "", "path to a YAML config file")
	logLevel := global.String("log-level", "", "log level (debug, info, warn, error)")
	rest := args
	switch err := global.Parse(args); {
	case errors.Is(err, pflag.ErrHelp):
		rest = []string{"--help"}
	case err != nil:
		fmt.Fprintf(stderr, "feedctl: %v\n", err)
		return 2
	default:
		rest = global.Args()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "feedctl: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log, err := logger.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "feedctl: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	var closers []*app.App
	defer func() {
		for _, a := range closers {
			if err := a.Close(); err != nil {
				log.Warn("close app", "error", err)
			}
		}
	}()
	build := func(ctx context.Context, opts app.Options) (*app.App, error) {
		a, err := app.New(ctx, cfg, opts)
		if err != nil {
			return nil, err
		}
		closers = append(closers, a)
		return a, nil
	}

	root := cli.NewRoot(cli.Env{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Services: func(ctx context.Context, r service.Renderer, n service.Notifier) (cli.Services, error) {
			a, err := build(ctx, app.Options{Renderer: r, Notifier: n})
			if err != nil {
				return cli.Services{}, err
			}
			return cli.Services{Feed: a.Feed, Auth: a.Auth}, nil
		},
		RunTUI: func(ctx context.Context) error {
			level, err := logger.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			// The alternate screen owns the terminal; records go to the
			// status bar instead of stderr.
			logs := tui.NewLogHandler(max(level, slog.LevelWarn))
			ctx = logger.WithLogger(ctx, slog.New(logs))

			bus := inmemory.New(0)
			a, err := build(ctx, app.Options{Renderer: bus, Notifier: bus})
			if err != nil {
				return err
			}

			go func() {
				if err := a.ServeMetrics(ctx); err != nil {
					logger.FromContext(ctx).Error("metrics server stopped", "error", err)
				}
			}()
			return tui.Run(ctx, a.Feed, bus, logs)
		},
	})

	if err := root.Execute(ctx, rest); err != nil {
		switch {
		case errors.Is(err, cli.ErrUsage):
			fmt.Fprintf(stderr, "feedctl: %v\n", err)
			return 2
		case service.IsReported(err):
			// already shown by the notifier
		default:
			fmt.Fprintf(stderr, "feedctl: %v\n", err)
		}
		return 1
	}
	return 0
}
