package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/cli/config"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/errutil"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var telemetryCfg config.Telemetry
	var envFile string
	var closers []func()

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "Load environment variables from this file; a missing file is ignored",
			Value:       ".env",
			Destination: &envFile,
		},
	}
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, telemetryCfg.Flags()...)

	app := &cli.Command{
		Name:    "swarm",
		Usage:   "Audit, fix and test Python files with a team of LLM agents",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := loadEnvFile(envFile); err != nil {
				return ctx, err
			}

			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			shutdown, err := telemetryCfg.Configure(ctx, version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, shutdown)

			logging.Default().Debug("Starting swarm",
				"version", version,
				"logger", loggerCfg,
				"sentry", sentryCfg.LogAttrs(),
				"telemetry", telemetryCfg.LogAttrs(),
			)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdRun(),
			cmdModels(),
			cmdPrompt(),
			cmdLog(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return errutil.Handle(ctx, err, "failed to run swarm")
	}

	return nil
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}

// output returns the writer for user facing text of c
func output(c *cli.Command) io.Writer {
	if root := c.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// input returns the reader for user supplied text of c
func input(c *cli.Command) io.Reader {
	if root := c.Root(); root != nil && root.Reader != nil {
		return root.Reader
	}
	return os.Stdin
}
