package recorder

import (
	"context"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// SystemAgent is the agent name of entries written by the pipeline itself
const SystemAgent = "System"

// ExperimentCompleted is the experiment_status value of a finished batch
const ExperimentCompleted = "COMPLETED"

// Recorder validates log entries and appends them to a LogRepository
type Recorder struct {
	repo interfaces.LogRepository
	now  func() time.Time
}

var _ interfaces.Recorder = &Recorder{}

type Option func(*Recorder)

// WithClock replaces time.Now for timestamp stamping
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

func New(repo interfaces.LogRepository, opts ...Option) *Recorder {
	r := &Recorder{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record validates entry, stamps a fresh id and a UTC timestamp and appends
// it. The caller's entry is not modified. A *model.ValidationError is
// returned, and nothing is appended, for malformed entries.
func (r *Recorder) Record(ctx context.Context, entry *model.LogEntry) error {
	if entry == nil {
		return goerr.Wrap(&model.ValidationError{Field: "entry", Reason: "entry is nil"}, "rejected log entry")
	}
	if err := entry.Validate(); err != nil {
		return goerr.Wrap(err, "rejected log entry",
			goerr.V("agent", entry.Agent),
			goerr.V("action", entry.Action),
		)
	}

	stamped := entry.Copy()
	stamped.ID = model.NewLogEntryID()
	stamped.Timestamp = r.now().UTC()

	if err := r.repo.Append(ctx, stamped); err != nil {
		return goerr.Wrap(err, "failed to append log entry", goerr.V("agent", entry.Agent))
	}

	logging.From(ctx).Debug("Recorded log entry",
		"id", stamped.ID,
		"agent", stamped.Agent,
		"action", stamped.Action,
		"status", stamped.Status,
	)
	return nil
}

// Finalize appends the System entry closing an experiment run
func (r *Recorder) Finalize(ctx context.Context, status string) error {
	return r.Record(ctx, &model.LogEntry{
		Agent:  SystemAgent,
		Model:  model.ModelSystem,
		Action: types.ActionAnalysis,
		Details: map[string]any{
			model.DetailInputPrompt:    "Experiment finalization",
			model.DetailOutputResponse: "Experiment status: " + status,
			model.DetailExperiment:     status,
		},
		Status: types.StatusSuccess,
	})
}

// Entries returns every recorded entry in append order
func (r *Recorder) Entries(ctx context.Context) ([]*model.LogEntry, error) {
	entries, err := r.repo.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list log entries")
	}
	return entries, nil
}
