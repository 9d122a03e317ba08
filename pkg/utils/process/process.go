// Package process runs external tools with a deadline and bounded output.
package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultMaxOutput caps each of stdout and stderr
const DefaultMaxOutput = 64 * 1024

// waitDelay bounds how long Run waits for output pipes after the process
// was killed
const waitDelay = 2 * time.Second

// ErrTimeout is returned when the command exceeded its timeout
var ErrTimeout = goerr.New("command timed out")

// Command describes one invocation
type Command struct {
	Name      string
	Args      []string
	Dir       string
	Timeout   time.Duration
	MaxOutput int
}

// Result of a finished command. Output is stdout followed by stderr.
type Result struct {
	Output    string
	ExitCode  int
	TimedOut  bool
	Truncated bool
	Duration  time.Duration
}

// Run executes cmd. A non-zero exit is not an error; the exit code is
// reported in Result. Errors are returned when the process could not be
// started or timed out, in which case Result still carries the captured
// output.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.MaxOutput <= 0 {
		cmd.MaxOutput = DefaultMaxOutput
	}
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdout, limit: cmd.MaxOutput}
	stderrLimited := &limitedWriter{w: &stderr, limit: cmd.MaxOutput}
	c.Stdout = stdoutLimited
	c.Stderr = stderrLimited

	logging.From(ctx).Debug("Executing command",
		"command", cmd.Name,
		"args", cmd.Args,
		"dir", cmd.Dir,
		"timeout", cmd.Timeout,
	)

	start := time.Now()
	err := c.Run()

	result := &Result{
		Output:    stdout.String() + stderr.String(),
		Truncated: stdoutLimited.truncated || stderrLimited.truncated,
		Duration:  time.Since(start),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = -1
		return result, goerr.Wrap(ErrTimeout, "command exceeded its timeout",
			goerr.V("command", cmd.Name), goerr.V("timeout", cmd.Timeout))
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		return result, goerr.Wrap(err, "failed to execute command", goerr.V("command", cmd.Name))
	}
	return result, nil
}

// limitedWriter discards everything past limit while reporting full
// writes so the child process never blocks on a full pipe
type limitedWriter struct {
	w         io.Writer
	limit     int
	written   int
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.written >= lw.limit {
		lw.truncated = len(p) > 0 || lw.truncated
		return len(p), nil
	}

	chunk := p
	if remaining := lw.limit - lw.written; len(chunk) > remaining {
		chunk = chunk[:remaining]
		lw.truncated = true
	}

	n, err := lw.w.Write(chunk)
	lw.written += n
	return len(p), err
}
