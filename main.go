package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fedragon/go-imgsift/internal"
	"github.com/fedragon/go-imgsift/internal/config"
	"github.com/fedragon/go-imgsift/internal/logging"
	"github.com/fedragon/go-imgsift/internal/models"

	"github.com/urfave/cli/v2"
)

const (
	exitFailure     = 1
	exitConfigError = 2
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if err := newApp(stdout, stderr).Run(args); err != nil {
		fmt.Fprintf(stderr, "imgsift: %v\n", err)
		if errors.Is(err, models.ErrInvalidConfig) {
			return exitConfigError
		}
		return exitFailure
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            "imgsift",
		Usage:           "Relocate images matching the wanted aspect ratios and minimum resolution",
		ArgsUsage:       "<source directory>",
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dst",
				Usage: "target directory for all matched files",
			},
			&cli.BoolFlag{
				Name:    "list-signatures",
				Aliases: []string{"list-sigs"},
				Usage:   "group all files by their leading bytes and list them",
			},
			&cli.IntFlag{
				Name:  "min-width",
				Value: config.DefaultMinWidth,
				Usage: "minimum width to include in results",
			},
			&cli.IntFlag{
				Name:  "min-height",
				Value: config.DefaultMinHeight,
				Usage: "minimum height to include in results",
			},
			&cli.StringSliceFlag{
				Name:  "aspect",
				Value: cli.NewStringSlice(config.DefaultAspect),
				Usage: "aspect ratios to match as W:H, repeatable or comma separated",
			},
			&cli.BoolFlag{
				Name:  "copy-only",
				Usage: "copy matched files (keeping their metadata) instead of moving them",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "report what would be relocated without touching any file",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "gitignore-style pattern of paths to skip, repeatable",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "number of files classified concurrently (default: number of CPUs)",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "TOML file providing defaults for the flags above",
				EnvVars: []string{"IMGSIFT_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
		},
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			opts, err := options(c)
			if err != nil {
				return err
			}

			cfg, err := config.New(opts)
			if err != nil {
				return err
			}

			logger := logging.New(stderr, c.Bool("debug"))
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(contextOf(c), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return internal.NewRunner(logger, cfg, stdout, stderr).Run(ctx)
		},
	}
}

// options resolves defaults, then the config file, then explicitly set flags.
func options(c *cli.Context) (config.Options, error) {
	opts := config.DefaultOptions()

	if path := c.String("config"); path != "" {
		f, err := config.Load(path)
		if err != nil {
			return opts, err
		}
		opts = opts.Apply(f)
	}

	if c.NArg() != 1 {
		return opts, fmt.Errorf("%w: expected exactly one source directory, got %d arguments", models.ErrInvalidConfig, c.NArg())
	}
	opts.Source = c.Args().First()
	opts.Destination = c.String("dst")
	opts.ListSignatures = c.Bool("list-signatures")
	opts.DryRun = c.Bool("dry-run")

	if c.IsSet("min-width") {
		opts.MinWidth = c.Int("min-width")
	}
	if c.IsSet("min-height") {
		opts.MinHeight = c.Int("min-height")
	}
	if c.IsSet("aspect") {
		opts.Aspects = c.StringSlice("aspect")
	}
	if c.IsSet("copy-only") {
		opts.CopyOnly = c.Bool("copy-only")
	}
	if c.IsSet("exclude") {
		opts.Exclude = c.StringSlice("exclude")
	}
	if c.IsSet("workers") {
		opts.Workers = c.Int("workers")
	}

	return opts, nil
}

func contextOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
