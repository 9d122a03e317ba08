package interfaces

import (
	"context"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
)

// LogRepository persists experiment log entries. Entries are append-only
// and List returns them in append order.
type LogRepository interface {
	// Append stores an already validated entry
	Append(ctx context.Context, entry *model.LogEntry) error

	// List returns every stored entry in append order
	List(ctx context.Context) ([]*model.LogEntry, error)

	// Close releases backend resources
	Close() error
}

// Recorder is the logging capability injected into agents and the orchestrator
type Recorder interface {
	// Record validates and appends an entry. A ValidationError is returned
	// and nothing is appended when mandatory details are missing.
	Record(ctx context.Context, entry *model.LogEntry) error
}

// Finalizer closes an experiment run with a System entry
type Finalizer interface {
	Finalize(ctx context.Context, status string) error
}
