package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/agent/judge"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/prompt"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/pylint"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/pytest"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// pipelineFile is the layout of the optional TOML configuration file
type pipelineFile struct {
	Pipeline struct {
		MaxFixRetries        *int     `toml:"max_fix_retries"`
		FastPathThreshold    *float64 `toml:"fast_path_threshold"`
		AlreadyGoodThreshold *float64 `toml:"already_good_threshold"`
		RegressionTolerance  *float64 `toml:"regression_tolerance"`
		FeedbackLines        *int     `toml:"feedback_lines"`
		Recursive            *bool    `toml:"recursive"`
	} `toml:"pipeline"`
	Judge struct {
		GenerationAttempts *int   `toml:"generation_attempts"`
		RetryDelay         string `toml:"retry_delay"`
		TestTimeout        string `toml:"test_timeout"`
	} `toml:"judge"`
}

// Pipeline holds the decision thresholds, judge settings and external
// tool commands of a refactoring run
type Pipeline struct {
	configPath    string
	maxFixRetries int
	fastPath      float64
	alreadyGood   float64
	regression    float64
	feedbackLines int
	attempts      int
	retryDelay    time.Duration
	testTimeout   time.Duration
	pytestCommand string
	python        string
	promptsDir    string
	systemPrompts bool
	noColor       bool
}

// PipelineSettings is the resolved pipeline configuration
type PipelineSettings struct {
	Usecase       usecase.Config
	Recursive     bool
	Attempts      int
	RetryDelay    time.Duration
	TestTimeout   time.Duration
	PytestCommand []string
	Python        string
	PromptsDir    string
	SystemPrompts bool
	NoColor       bool
}

// Flags returns CLI flags for pipeline configuration
func (p *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML pipeline configuration file",
			Category:    "Pipeline",
			Sources:     cli.EnvVars("SWARM_CONFIG"),
			Destination: &p.configPath,
		},
		&cli.IntFlag{
			Name:        "max-fix-retries",
			Usage:       "Feedback driven fix cycles after the first failing test run",
			Value:       usecase.DefaultMaxFixRetries,
			Category:    "Pipeline",
			Sources:     cli.EnvVars("SWARM_MAX_FIX_RETRIES"),
			Destination: &p.maxFixRetries,
		},
		&cli.FloatFlag{
			Name:        "fast-path-threshold",
			Usage:       "Score at or above which a file with passing tests is skipped",
			Value:       usecase.DefaultFastPathThreshold,
			Category:    "Pipeline",
			Sources:     cli.EnvVars("SWARM_FAST_PATH_THRESHOLD"),
			Destination: &p.fastPath,
		},
		&cli.FloatFlag{
			Name:        "already-good-threshold",
			Usage:       "Score at or above which a failed audit leaves a file with passing tests untouched",
			Value:       usecase.DefaultAlreadyGoodThreshold,
			Category:    "Pipeline",
			Sources:     cli.EnvVars("SWARM_ALREADY_GOOD_THRESHOLD"),
			Destination: &p.alreadyGood,
		},
		&cli.FloatFlag{
			Name:        "regression-tolerance",
			Usage:       "Score drop after a fix that triggers restoring the original content",
			Value:       usecase.DefaultRegressionTolerance,
			Category:    "Pipeline",
			Sources:     cli.EnvVars("SWARM_REGRESSION_TOLERANCE"),
			Destination: &p.regression,
		},
		&cli.IntFlag{
			Name:        "feedback-lines",
			Usage:       "Lines of test output passed back to the fixer",
			Value:       usecase.DefaultFeedbackLines,
			Category:    "Pipeline",
			Sources:     cli.EnvVars("SWARM_FEEDBACK_LINES"),
			Destination: &p.feedbackLines,
		},
		&cli.IntFlag{
			Name:        "generation-attempts",
			Usage:       "Test generation attempts on transport failures",
			Value:       judge.DefaultAttempts,
			Category:    "Judge",
			Sources:     cli.EnvVars("SWARM_GENERATION_ATTEMPTS"),
			Destination: &p.attempts,
		},
		&cli.DurationFlag{
			Name:        "retry-delay",
			Usage:       "Delay between test generation attempts",
			Value:       judge.DefaultRetryDelay,
			Category:    "Judge",
			Sources:     cli.EnvVars("SWARM_RETRY_DELAY"),
			Destination: &p.retryDelay,
		},
		&cli.DurationFlag{
			Name:        "test-timeout",
			Usage:       "Timeout of a single test run",
			Value:       pytest.DefaultTimeout,
			Category:    "Judge",
			Sources:     cli.EnvVars("SWARM_TEST_TIMEOUT"),
			Destination: &p.testTimeout,
		},
		&cli.StringFlag{
			Name:        "pytest-command",
			Usage:       "Test command, split on spaces; the test file is appended",
			Value:       pytest.DefaultCommand,
			Category:    "Tools",
			Sources:     cli.EnvVars("SWARM_PYTEST_COMMAND"),
			Destination: &p.pytestCommand,
		},
		&cli.StringFlag{
			Name:        "python",
			Usage:       "Python interpreter used to run pylint",
			Value:       pylint.DefaultPython,
			Category:    "Tools",
			Sources:     cli.EnvVars("SWARM_PYTHON"),
			Destination: &p.python,
		},
		&cli.StringFlag{
			Name:        "prompts-dir",
			Usage:       "Prompt library directory; <role>_system.txt overrides a built-in system prompt",
			Value:       "prompts",
			Category:    "Prompts",
			Sources:     cli.EnvVars("SWARM_PROMPTS_DIR"),
			Destination: &p.promptsDir,
		},
		&cli.BoolFlag{
			Name:        "system-prompts",
			Usage:       "Prepend the agent system prompt to every request",
			Category:    "Prompts",
			Sources:     cli.EnvVars("SWARM_SYSTEM_PROMPTS"),
			Destination: &p.systemPrompts,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored status lines",
			Sources:     cli.EnvVars("NO_COLOR"),
			Destination: &p.noColor,
		},
	}
}

// LogAttrs returns log attributes for the pipeline configuration
func (p *Pipeline) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("config", p.configPath),
		slog.Int("max_fix_retries", p.maxFixRetries),
		slog.Float64("fast_path_threshold", p.fastPath),
		slog.Float64("already_good_threshold", p.alreadyGood),
		slog.Float64("regression_tolerance", p.regression),
		slog.Int("feedback_lines", p.feedbackLines),
		slog.Int("generation_attempts", p.attempts),
		slog.Duration("retry_delay", p.retryDelay),
		slog.Duration("test_timeout", p.testTimeout),
		slog.String("pytest_command", p.pytestCommand),
		slog.String("python", p.python),
	}
}

// PromptsDir returns the prompt library directory
func (p *Pipeline) PromptsDir() string {
	return p.promptsDir
}

// isSet reports whether a flag was given on the command line or by env.
// cmd may be nil in tests.
func isSet(cmd *cli.Command, name string) bool {
	return cmd != nil && cmd.IsSet(name)
}

// Configure merges the TOML file (if any) with the flags. Flags that were
// set explicitly win over file values. recursiveFlag is the sandbox
// --recursive value.
func (p *Pipeline) Configure(cmd *cli.Command, recursiveFlag bool) (*PipelineSettings, error) {
	s := &PipelineSettings{
		Usecase: usecase.Config{
			MaxFixRetries:        p.maxFixRetries,
			FastPathThreshold:    p.fastPath,
			AlreadyGoodThreshold: p.alreadyGood,
			RegressionTolerance:  p.regression,
			FeedbackLines:        p.feedbackLines,
		},
		Recursive:     recursiveFlag,
		Attempts:      p.attempts,
		RetryDelay:    p.retryDelay,
		TestTimeout:   p.testTimeout,
		PytestCommand: strings.Fields(p.pytestCommand),
		Python:        p.python,
		PromptsDir:    p.promptsDir,
		SystemPrompts: p.systemPrompts,
		NoColor:       p.noColor,
	}

	if p.configPath != "" {
		file, err := loadPipelineFile(p.configPath)
		if err != nil {
			return nil, err
		}
		if err := file.apply(cmd, s); err != nil {
			return nil, goerr.Wrap(err, "invalid configuration file", goerr.V(ConfigPathKey, p.configPath))
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadPipelineFile(path string) (*pipelineFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "configuration file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read configuration file", goerr.V(ConfigPathKey, path))
	}

	var file pipelineFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse configuration file", goerr.V(ConfigPathKey, path))
	}
	return &file, nil
}

func (f *pipelineFile) apply(cmd *cli.Command, s *PipelineSettings) error {
	pl := f.Pipeline
	if pl.MaxFixRetries != nil && !isSet(cmd, "max-fix-retries") {
		s.Usecase.MaxFixRetries = *pl.MaxFixRetries
	}
	if pl.FastPathThreshold != nil && !isSet(cmd, "fast-path-threshold") {
		s.Usecase.FastPathThreshold = *pl.FastPathThreshold
	}
	if pl.AlreadyGoodThreshold != nil && !isSet(cmd, "already-good-threshold") {
		s.Usecase.AlreadyGoodThreshold = *pl.AlreadyGoodThreshold
	}
	if pl.RegressionTolerance != nil && !isSet(cmd, "regression-tolerance") {
		s.Usecase.RegressionTolerance = *pl.RegressionTolerance
	}
	if pl.FeedbackLines != nil && !isSet(cmd, "feedback-lines") {
		s.Usecase.FeedbackLines = *pl.FeedbackLines
	}
	if pl.Recursive != nil && !isSet(cmd, "recursive") {
		s.Recursive = *pl.Recursive
	}

	jd := f.Judge
	if jd.GenerationAttempts != nil && !isSet(cmd, "generation-attempts") {
		s.Attempts = *jd.GenerationAttempts
	}
	if jd.RetryDelay != "" && !isSet(cmd, "retry-delay") {
		d, err := time.ParseDuration(jd.RetryDelay)
		if err != nil {
			return goerr.Wrap(err, "invalid judge.retry_delay", goerr.V(ValueKey, jd.RetryDelay))
		}
		s.RetryDelay = d
	}
	if jd.TestTimeout != "" && !isSet(cmd, "test-timeout") {
		d, err := time.ParseDuration(jd.TestTimeout)
		if err != nil {
			return goerr.Wrap(err, "invalid judge.test_timeout", goerr.V(ValueKey, jd.TestTimeout))
		}
		s.TestTimeout = d
	}
	return nil
}

// Validate checks the resolved settings
func (s *PipelineSettings) Validate() error {
	if err := s.Usecase.Validate(); err != nil {
		return goerr.Wrap(err, "invalid pipeline thresholds")
	}
	if s.Attempts <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "generation attempts must be positive", goerr.V(ValueKey, s.Attempts))
	}
	if s.RetryDelay < 0 {
		return goerr.Wrap(ErrInvalidConfig, "retry delay must not be negative", goerr.V(ValueKey, s.RetryDelay))
	}
	if s.TestTimeout <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "test timeout must be positive", goerr.V(ValueKey, s.TestTimeout))
	}
	if len(s.PytestCommand) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "pytest command is empty")
	}
	if s.Python == "" {
		return goerr.Wrap(ErrInvalidConfig, "python interpreter is empty")
	}
	return nil
}

// PromptBuilder creates the prompt builder shared by the agents
func (s *PipelineSettings) PromptBuilder() *prompt.Builder {
	opts := []prompt.BuilderOption{prompt.WithSystemPrompts(s.SystemPrompts)}
	if s.PromptsDir != "" {
		opts = append(opts, prompt.WithLibrary(prompt.NewLibrary(s.PromptsDir)))
	}
	return prompt.NewBuilder(opts...)
}
