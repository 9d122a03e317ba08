package pytest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/process"
)

const (
	DefaultCommand = "pytest"
	DefaultTimeout = 60 * time.Second
)

// PathResolver confines test files to the sandbox
type PathResolver interface {
	Resolve(op, path string) (string, error)
}

// Runner executes a test file with pytest in the file's directory so the
// generated "from module import ..." statements resolve
type Runner struct {
	resolver  PathResolver
	command   string
	args      []string
	timeout   time.Duration
	maxOutput int
}

var _ interfaces.TestExecutor = &Runner{}

// Option is a functional option for Runner configuration
type Option func(*Runner)

// WithCommand replaces the test command. args are placed before the test file.
func WithCommand(name string, args ...string) Option {
	return func(r *Runner) {
		r.command = name
		r.args = args
	}
}

// WithTimeout bounds a single test run
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithMaxOutput caps each captured stream
func WithMaxOutput(n int) Option {
	return func(r *Runner) {
		r.maxOutput = n
	}
}

// New creates a Runner
func New(resolver PathResolver, opts ...Option) *Runner {
	r := &Runner{
		resolver:  resolver,
		command:   DefaultCommand,
		timeout:   DefaultTimeout,
		maxOutput: process.DefaultMaxOutput,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs testFile. Failing tests, timeouts and a missing test
// command all report passed=false with explanatory output; only sandbox
// violations are returned as errors.
func (r *Runner) Execute(ctx context.Context, testFile string) (bool, string, error) {
	abs, err := r.resolver.Resolve("execute", testFile)
	if err != nil {
		return false, "", err
	}

	args := append(append([]string{}, r.args...), abs)
	res, err := process.Run(ctx, process.Command{
		Name:      r.command,
		Args:      args,
		Dir:       filepath.Dir(abs),
		Timeout:   r.timeout,
		MaxOutput: r.maxOutput,
	})

	logger := logging.From(ctx)
	switch {
	case errors.Is(err, process.ErrTimeout):
		logger.Warn("Test execution timed out", "file", abs, "timeout", r.timeout)
		return false, res.Output + fmt.Sprintf("\ntest run timed out after %s", r.timeout), nil
	case err != nil:
		logger.Warn("Test command could not be started", "file", abs, "error", err)
		return false, res.Output + err.Error(), nil
	}

	output := res.Output
	if res.Truncated {
		output += "\n[output truncated]"
	}
	logger.Debug("Test execution finished", "file", abs, "exit_code", res.ExitCode, "duration", res.Duration)
	return res.ExitCode == 0, output, nil
}
