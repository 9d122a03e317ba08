package pylint

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/process"
)

const (
	DefaultPython  = "python3"
	DefaultTimeout = 60 * time.Second

	MaxScore = 10.0
)

// scoreArgs keeps errors, fatals and warnings while ignoring refactor and
// convention messages
var scoreArgs = []string{"--score=y", "--disable=R,C", "--enable=E,F,W"}

var ratedAt = regexp.MustCompile(`rated at (-?[0-9]+(?:\.[0-9]+)?)/10`)

// PathResolver confines scored files to the sandbox
type PathResolver interface {
	Resolve(op, path string) (string, error)
}

// Scorer computes a pylint score for a file
type Scorer struct {
	resolver PathResolver
	command  string
	args     []string
	timeout  time.Duration
}

var _ interfaces.Scorer = &Scorer{}

// Option is a functional option for Scorer configuration
type Option func(*Scorer)

// WithPython runs pylint as a module of the given interpreter
func WithPython(python string) Option {
	return func(s *Scorer) {
		s.command = python
		s.args = []string{"-m", "pylint"}
	}
}

// WithCommand replaces the whole pylint invocation prefix
func WithCommand(name string, args ...string) Option {
	return func(s *Scorer) {
		s.command = name
		s.args = args
	}
}

// WithTimeout bounds one pylint run
func WithTimeout(d time.Duration) Option {
	return func(s *Scorer) {
		s.timeout = d
	}
}

// New creates a Scorer
func New(resolver PathResolver, opts ...Option) *Scorer {
	s := &Scorer{
		resolver: resolver,
		command:  DefaultPython,
		args:     []string{"-m", "pylint"},
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the pylint rating of path in [0,10]. Any failure yields
// 0.0 and a warning log.
func (s *Scorer) Score(ctx context.Context, path string) float64 {
	logger := logging.From(ctx)

	abs, err := s.resolver.Resolve("score", path)
	if err != nil {
		logger.Warn("Refusing to score file", "path", path, "error", err)
		return 0
	}

	args := append(append(append([]string{}, s.args...), abs), scoreArgs...)
	res, err := process.Run(ctx, process.Command{
		Name:    s.command,
		Args:    args,
		Timeout: s.timeout,
	})
	if err != nil {
		logger.Warn("Failed to run pylint", "path", abs, "error", err)
		return 0
	}

	score, ok := ParseScore(res.Output)
	if !ok {
		logger.Warn("No pylint score found", "path", abs, "exit_code", res.ExitCode)
		return 0
	}
	return score
}

// ParseScore extracts the last "rated at X/10" value from pylint output,
// clamped to [0,10]
func ParseScore(output string) (float64, bool) {
	matches := ratedAt.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(matches[len(matches)-1][1], 64)
	if err != nil {
		return 0, false
	}
	switch {
	case v < 0:
		v = 0
	case v > MaxScore:
		v = MaxScore
	}
	return v, true
}
