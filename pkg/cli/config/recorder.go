package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/repository/firestore"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/repository/jsonfile"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/repository/memory"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/repository/sqlite"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Log backends
const (
	LogBackendJSON      = "json"
	LogBackendMemory    = "memory"
	LogBackendSQLite    = "sqlite"
	LogBackendFirestore = "firestore"
)

// Recorder holds configuration of the experiment log storage
type Recorder struct {
	backend    string
	logFile    string
	sqlitePath string
	projectID  string
	databaseID string
	collection string
}

// Flags returns CLI flags for the experiment log
func (r *Recorder) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-backend",
			Usage:       "Experiment log backend (json, memory, sqlite, firestore)",
			Value:       LogBackendJSON,
			Category:    "Experiment log",
			Sources:     cli.EnvVars("SWARM_LOG_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "JSON experiment log path (json backend)",
			Value:       jsonfile.DefaultPath,
			Category:    "Experiment log",
			Sources:     cli.EnvVars("SWARM_LOG_FILE"),
			Destination: &r.logFile,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database path (sqlite backend)",
			Value:       "logs/experiment_data.db",
			Category:    "Experiment log",
			Sources:     cli.EnvVars("SWARM_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project ID for Firestore (firestore backend)",
			Category:    "Experiment log",
			Sources:     cli.EnvVars("SWARM_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Category:    "Experiment log",
			Sources:     cli.EnvVars("SWARM_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection of log entries",
			Value:       firestore.DefaultCollection,
			Category:    "Experiment log",
			Sources:     cli.EnvVars("SWARM_FIRESTORE_COLLECTION"),
			Destination: &r.collection,
		},
	}
}

// LogAttrs returns log attributes for the recorder configuration
func (r *Recorder) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("backend", r.backend)}
	switch r.backend {
	case LogBackendJSON, "":
		attrs = append(attrs, slog.String("log_file", r.logFile))
	case LogBackendSQLite:
		attrs = append(attrs, slog.String("sqlite_path", r.sqlitePath))
	case LogBackendFirestore:
		attrs = append(attrs,
			slog.String("project_id", r.projectID),
			slog.String("database_id", r.databaseID),
			slog.String("collection", r.collection),
		)
	}
	return attrs
}

// LogPath returns the JSON log file to archive, or "" for other backends
func (r *Recorder) LogPath() string {
	switch r.backend {
	case LogBackendJSON, "":
		return r.logFile
	default:
		return ""
	}
}

// Configure opens the log repository of the selected backend
func (r *Recorder) Configure(ctx context.Context) (interfaces.LogRepository, error) {
	switch r.backend {
	case LogBackendJSON, "":
		return jsonfile.New(r.logFile), nil

	case LogBackendMemory:
		return memory.New(), nil

	case LogBackendSQLite:
		if dir := filepath.Dir(r.sqlitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, goerr.Wrap(err, "failed to create SQLite directory", goerr.V("dir", dir))
			}
		}
		repo, err := sqlite.New(ctx, r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open SQLite log", goerr.V("path", r.sqlitePath))
		}
		return repo, nil

	case LogBackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingProject, "firestore backend requires --firestore-project-id")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollection(r.collection))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Firestore log",
				goerr.V("project_id", r.projectID),
				goerr.V("database_id", r.databaseID))
		}
		return repo, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unknown log backend", goerr.V(BackendKey, r.backend))
	}
}
