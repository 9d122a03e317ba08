package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/cli"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/repository/jsonfile"
	"github.com/m-mizutani/gt"
)

func run(args ...string) error {
	return cli.Run(context.Background(), append([]string{"swarm", "--log-level", "error"}, args...), "test")
}

func TestRun_RunCommand(t *testing.T) {
	t.Run("target directory is required", func(t *testing.T) {
		err := run("run", "--gemini-api-key", "dummy", "--log-backend", "memory")
		gt.Error(t, err)
	})

	t.Run("missing target directory exits with error", func(t *testing.T) {
		err := run("run",
			"--gemini-api-key", "dummy",
			"--log-backend", "memory",
			"--target-dir", filepath.Join(t.TempDir(), "missing"),
		)
		gt.Error(t, err)
	})

	t.Run("target outside sandbox exits with error", func(t *testing.T) {
		err := run("run",
			"--gemini-api-key", "dummy",
			"--log-backend", "memory",
			"--sandbox-root", t.TempDir(),
			"--target-dir", t.TempDir(),
		)
		gt.Error(t, err)
	})

	t.Run("empty directory completes and finalizes the log", func(t *testing.T) {
		dir := t.TempDir()
		logFile := filepath.Join(t.TempDir(), "experiment_data.json")

		err := run("run",
			"--gemini-api-key", "dummy",
			"--log-file", logFile,
			"--no-color",
			dir,
		)
		gt.NoError(t, err)

		entries, err := jsonfile.New(logFile).List(context.Background())
		gt.NoError(t, err)
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Agent).Equal("System")
	})

	t.Run("unknown telemetry exporter", func(t *testing.T) {
		err := run("--telemetry-exporter", "zipkin", "run",
			"--gemini-api-key", "dummy",
			"--log-backend", "memory",
			t.TempDir(),
		)
		gt.Error(t, err)
	})

	t.Run("invalid pipeline configuration", func(t *testing.T) {
		err := run("run",
			"--gemini-api-key", "dummy",
			"--log-backend", "memory",
			"--fast-path-threshold", "12",
			t.TempDir(),
		)
		gt.Error(t, err)
	})
}

func TestRun_PromptCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "auditor.txt")
	content := "You are a senior Python auditor agent. Your mission is to review the code provided in the context " +
		"below and list concrete problems such as bugs, bad practices, missing tests and missing docstrings. " +
		"Output format: a report with one issue per line. Focus only on the code provided and do not hallucinate issues."
	gt.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	gt.NoError(t, run("prompt", "--prompts-dir", dir, "save", "--file", src, "auditor_system"))
	gt.Error(t, run("prompt", "--prompts-dir", dir, "save", "--file", src, "auditor_system"))
	gt.NoError(t, run("prompt", "--prompts-dir", dir, "save", "--file", src, "--overwrite", "auditor_system"))

	gt.NoError(t, run("prompt", "--prompts-dir", dir, "show", "auditor_system"))
	gt.NoError(t, run("prompt", "--prompts-dir", dir, "show", "fixer"))
	gt.NoError(t, run("prompt", "--prompts-dir", dir, "list"))
	gt.NoError(t, run("prompt", "--prompts-dir", dir, "check", "auditor_system"))
	gt.Error(t, run("prompt", "--prompts-dir", dir, "show", "unknown"))
}

func TestRun_LogCommand(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "experiment_data.json")
	repo := jsonfile.New(logFile)
	for _, agent := range []string{"AuditorAgent", "FixerAgent", "AuditorAgent"} {
		gt.NoError(t, repo.Append(context.Background(), &model.LogEntry{
			ID:        model.NewLogEntryID(),
			Timestamp: time.Now().UTC(),
			Agent:     agent,
			Model:     "gemini-2.5-flash",
			Action:    types.ActionAnalysis,
			Details: map[string]any{
				model.DetailInputPrompt:    "p",
				model.DetailOutputResponse: "r",
			},
			Status: types.StatusSuccess,
		}))
	}

	gt.NoError(t, run("log", "--log-file", logFile))
	gt.NoError(t, run("log", "--log-file", logFile, "--agent", "FixerAgent", "--limit", "1"))
	gt.Error(t, run("log", "--log-backend", "kafka"))
}

func TestFilterEntries(t *testing.T) {
	entries := []*model.LogEntry{
		{Agent: "AuditorAgent", Status: types.StatusSuccess},
		{Agent: "FixerAgent", Status: types.StatusFailure},
		{Agent: "AuditorAgent", Status: types.StatusFailure},
	}

	gt.Array(t, cli.FilterEntries(entries, "", "")).Length(3)
	gt.Array(t, cli.FilterEntries(entries, "AuditorAgent", "")).Length(2)
	gt.Array(t, cli.FilterEntries(entries, "", "FAILURE")).Length(2)
	gt.Array(t, cli.FilterEntries(entries, "AuditorAgent", "FAILURE")).Length(1)

	counts := cli.CountByAgent(entries)
	gt.Value(t, counts["AuditorAgent"]).Equal(2)
	gt.Value(t, counts["FixerAgent"]).Equal(1)
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		gt.NoError(t, cli.LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("variables are loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		gt.NoError(t, os.WriteFile(path, []byte("SWARM_TEST_ENV_VALUE=loaded\n"), 0o644))
		t.Cleanup(func() { _ = os.Unsetenv("SWARM_TEST_ENV_VALUE") })

		gt.NoError(t, cli.LoadEnvFile(path))
		gt.Value(t, os.Getenv("SWARM_TEST_ENV_VALUE")).Equal("loaded")
	})
}
