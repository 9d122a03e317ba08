package config_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/cli/config"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/gt"
)

type credentials struct {
	Project string
	Token   string `masq:"secret"`
}

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		t.Run(input, func(t *testing.T) {
			got, err := config.ParseLevel(input)
			gt.NoError(t, err)
			gt.Value(t, got).Equal(want)
		})
	}

	_, err := config.ParseLevel("verbose")
	gt.Bool(t, errors.Is(err, config.ErrInvalidLogLevel)).True()
}

func TestLogger_NewLogger(t *testing.T) {
	t.Run("json format masks secret fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("info", "json", "stderr").NewLogger(&buf)
		gt.NoError(t, err)

		logger.Info("calling gemini",
			"credentials", credentials{Project: "demo", Token: "AIza-very-secret"},
			"file", "calc.py",
		)
		gt.Bool(t, strings.Contains(buf.String(), "AIza-very-secret")).False()
		gt.Bool(t, strings.Contains(buf.String(), "calc.py")).True()
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("warn", "json", "stderr").NewLogger(&buf)
		gt.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown")
		gt.Bool(t, strings.Contains(buf.String(), "hidden")).False()
		gt.Bool(t, strings.Contains(buf.String(), "shown")).True()
	})

	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("debug", "console", "stderr").NewLogger(&buf)
		gt.NoError(t, err)
		logger.Info("console line")
		gt.Bool(t, strings.Contains(buf.String(), "console line")).True()
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stderr").NewLogger(&bytes.Buffer{})
		gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
	})
}

func TestLogger_Configure(t *testing.T) {
	orig := logging.Default()
	t.Cleanup(func() { logging.SetDefault(orig) })

	path := filepath.Join(t.TempDir(), "swarm.log")
	closer, err := config.NewLoggerForTest("info", "json", path).Configure()
	gt.NoError(t, err)

	logging.Default().Info("written to file")
	closer()

	raw, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.Bool(t, strings.Contains(string(raw), "written to file")).True()
}
