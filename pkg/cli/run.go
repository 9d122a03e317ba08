package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/agent/auditor"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/agent/fixer"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/agent/judge"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/cli/config"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/pylint"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/pytest"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/recorder"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/usecase"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var targetDir string
	var geminiCfg config.Gemini
	var sandboxCfg config.Sandbox
	var pipelineCfg config.Pipeline
	var recorderCfg config.Recorder
	var archiveCfg config.Archive

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "target-dir",
			Aliases:     []string{"t"},
			Usage:       "Directory of Python files to refactor (required)",
			Sources:     cli.EnvVars("SWARM_TARGET_DIR"),
			Destination: &targetDir,
		},
	}
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, sandboxCfg.Flags()...)
	flags = append(flags, pipelineCfg.Flags()...)
	flags = append(flags, recorderCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Audit, fix and test every Python file of a directory",
		ArgsUsage: "[target-dir]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if targetDir == "" {
				targetDir = c.Args().First()
			}
			if targetDir == "" {
				return goerr.Wrap(config.ErrMissingTarget, "set --target-dir or pass the directory as argument")
			}

			logger := logging.Default()

			settings, err := pipelineCfg.Configure(c, sandboxCfg.Recursive())
			if err != nil {
				return goerr.Wrap(err, "invalid pipeline configuration")
			}

			store, err := sandboxCfg.Configure(targetDir, settings.Recursive)
			if err != nil {
				return err
			}

			gateway, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}

			repo, err := recorderCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close experiment log", "error", err.Error())
				}
			}()

			logger.Info("Run configuration",
				"target_dir", targetDir,
				"sandbox_root", store.Root(),
				"gemini", geminiCfg.LogAttrs(),
				"pipeline", pipelineCfg.LogAttrs(),
				"recorder", recorderCfg.LogAttrs(),
				"archive", archiveCfg.LogAttrs(),
			)

			rec := recorder.New(repo)
			prompts := settings.PromptBuilder()

			executor := pytest.New(store,
				pytest.WithCommand(settings.PytestCommand[0], settings.PytestCommand[1:]...),
				pytest.WithTimeout(settings.TestTimeout),
			)

			deps := usecase.Dependencies{
				Files:  store,
				Scorer: pylint.New(store, pylint.WithPython(settings.Python)),
				Auditor: auditor.New(gateway, rec,
					auditor.WithPrompts(prompts),
					auditor.WithPlanStore(store),
				),
				Fixer: fixer.New(gateway, rec, store,
					fixer.WithPrompts(prompts),
					fixer.WithBackupStore(store),
				),
				Judge: judge.New(gateway, rec, store, executor,
					judge.WithPrompts(prompts),
					judge.WithAttempts(settings.Attempts),
					judge.WithRetryDelay(settings.RetryDelay),
				),
				Recorder: rec,
			}

			opts := []usecase.Option{
				usecase.WithConfig(settings.Usecase),
				usecase.WithProgress(usecase.NewProgress(output(c), settings.NoColor)),
				usecase.WithFinalizer(rec),
			}

			if archiveCfg.IsEnabled() {
				logPath := recorderCfg.LogPath()
				if logPath == "" {
					logger.Warn("Archive is only supported with the json log backend, skipping upload")
				} else {
					arch, err := archiveCfg.Configure(ctx)
					if err != nil {
						return err
					}
					defer func() {
						if err := arch.Close(); err != nil {
							logger.Error("failed to close archive client", "error", err.Error())
						}
					}()
					opts = append(opts, usecase.WithArchiver(arch, logPath))
				}
			}

			uc := usecase.New(deps, opts...)

			batch, err := uc.Refactor.ProcessDirectory(ctx, targetDir)
			if err != nil {
				return goerr.Wrap(err, "refactoring run aborted", goerr.V("target_dir", targetDir))
			}

			if len(batch.Errors) > 0 {
				return goerr.New(fmt.Sprintf("%d file(s) could not be processed", len(batch.Errors)),
					goerr.V("target_dir", targetDir))
			}
			return nil
		},
	}
}
