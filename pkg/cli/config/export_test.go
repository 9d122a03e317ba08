package config

import (
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/agent/judge"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/pylint"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/pytest"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/usecase"
)

var ParseLevel = parseLevel

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(backend, apiKey, modelName, baseURL string, timeout time.Duration) *Gemini {
	return &Gemini{
		backend:   backend,
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   baseURL,
		timeout:   timeout,
		location:  "us-central1",
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRecorderForTest creates a Recorder config for testing purposes
func NewRecorderForTest(backend, logFile, sqlitePath string) *Recorder {
	return &Recorder{backend: backend, logFile: logFile, sqlitePath: sqlitePath}
}

// NewPipelineForTest creates a Pipeline config holding the flag defaults
func NewPipelineForTest(configPath string) *Pipeline {
	return &Pipeline{
		configPath:    configPath,
		maxFixRetries: usecase.DefaultMaxFixRetries,
		fastPath:      usecase.DefaultFastPathThreshold,
		alreadyGood:   usecase.DefaultAlreadyGoodThreshold,
		regression:    usecase.DefaultRegressionTolerance,
		feedbackLines: usecase.DefaultFeedbackLines,
		attempts:      judge.DefaultAttempts,
		retryDelay:    judge.DefaultRetryDelay,
		testTimeout:   pytest.DefaultTimeout,
		pytestCommand: pytest.DefaultCommand,
		python:        pylint.DefaultPython,
	}
}

// NewSandboxForTest creates a Sandbox config for testing purposes
func NewSandboxForTest(root string) *Sandbox {
	return &Sandbox{root: root}
}

// NewTelemetryForTest creates a Telemetry config for testing purposes
func NewTelemetryForTest(exporter, output string) *Telemetry {
	return &Telemetry{exporter: exporter, output: output}
}
