package usecase

import (
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Default decision thresholds and bounds of the per-file state machine
const (
	DefaultMaxFixRetries        = 3
	DefaultFastPathThreshold    = 9.0
	DefaultAlreadyGoodThreshold = 8.0
	DefaultRegressionTolerance  = 1.0
	DefaultFeedbackLines        = 10
)

// Config holds the decision thresholds of the refactoring pipeline
type Config struct {
	// MaxFixRetries bounds the feedback driven fix cycles after the first
	// failing test run. 1 gives a single retry, 0 disables retries.
	MaxFixRetries        int
	FastPathThreshold    float64
	AlreadyGoodThreshold float64
	RegressionTolerance  float64
	FeedbackLines        int
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		MaxFixRetries:        DefaultMaxFixRetries,
		FastPathThreshold:    DefaultFastPathThreshold,
		AlreadyGoodThreshold: DefaultAlreadyGoodThreshold,
		RegressionTolerance:  DefaultRegressionTolerance,
		FeedbackLines:        DefaultFeedbackLines,
	}
}

// Validate rejects thresholds outside [0,10] and negative bounds
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"fast_path_threshold":    c.FastPathThreshold,
		"already_good_threshold": c.AlreadyGoodThreshold,
		"regression_tolerance":   c.RegressionTolerance,
	} {
		if v < 0 || v > 10 {
			return goerr.Wrap(ErrInvalidConfig, "threshold out of range", goerr.V("name", name), goerr.V("value", v))
		}
	}
	if c.MaxFixRetries < 0 {
		return goerr.Wrap(ErrInvalidConfig, "max fix retries must not be negative", goerr.V("value", c.MaxFixRetries))
	}
	if c.FeedbackLines <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "feedback lines must be positive", goerr.V("value", c.FeedbackLines))
	}
	return nil
}

// Dependencies are the collaborators of the refactoring pipeline
type Dependencies struct {
	Files    interfaces.FileStore
	Scorer   interfaces.Scorer
	Auditor  interfaces.Auditor
	Fixer    interfaces.Fixer
	Judge    interfaces.Judge
	Recorder interfaces.Recorder
}

type UseCases struct {
	config    Config
	progress  *Progress
	finalizer interfaces.Finalizer
	archiver  interfaces.Archiver
	logPath   string
	tracers   trace.TracerProvider
	meters    metric.MeterProvider
	Refactor  *RefactorUseCase
}

type Option func(*UseCases)

// WithConfig overrides DefaultConfig
func WithConfig(cfg Config) Option {
	return func(uc *UseCases) {
		uc.config = cfg
	}
}

// WithProgress prints status lines for every state transition
func WithProgress(p *Progress) Option {
	return func(uc *UseCases) {
		uc.progress = p
	}
}

// WithFinalizer closes every directory run with a System log entry
func WithFinalizer(f interfaces.Finalizer) Option {
	return func(uc *UseCases) {
		uc.finalizer = f
	}
}

// WithArchiver uploads the log file at logPath after every directory run
func WithArchiver(a interfaces.Archiver, logPath string) Option {
	return func(uc *UseCases) {
		uc.archiver = a
		uc.logPath = logPath
	}
}

// WithTelemetry sends spans and metrics to tp and mp instead of the global
// otel providers. A nil provider keeps the global one.
func WithTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) Option {
	return func(uc *UseCases) {
		uc.tracers = tp
		uc.meters = mp
	}
}

func New(deps Dependencies, opts ...Option) *UseCases {
	uc := &UseCases{
		config: DefaultConfig(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Refactor = NewRefactorUseCase(deps, uc.config,
		uc.progress,
		uc.finalizer,
		uc.archiver,
		uc.logPath,
	)
	if uc.tracers != nil || uc.meters != nil {
		tp, mp := uc.tracers, uc.meters
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		if mp == nil {
			mp = otel.GetMeterProvider()
		}
		uc.Refactor.telemetry = buildTelemetry(tp, mp)
	}

	return uc
}
