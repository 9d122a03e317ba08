package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS log_entries (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    timestamp TEXT NOT NULL,
    agent TEXT NOT NULL,
    model TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT NOT NULL,
    status TEXT NOT NULL
);
`

// SQLite stores log entries in a SQLite database. Entries are listed in
// insertion order.
type SQLite struct {
	db *sql.DB
}

var _ interfaces.LogRepository = &SQLite{}

// New opens the database at dsn and creates the schema when missing. dsn
// may be a file path or ":memory:".
func New(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("dsn", dsn))
	}
	// a :memory: database lives on a single connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			safe.Close(ctx, db)
			return nil, goerr.Wrap(err, "failed to set pragma", goerr.V("pragma", p))
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		safe.Close(ctx, db)
		return nil, goerr.Wrap(err, "failed to create schema", goerr.V("dsn", dsn))
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Append(ctx context.Context, entry *model.LogEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return goerr.Wrap(err, "failed to encode details", goerr.V("id", entry.ID))
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO log_entries (id, timestamp, agent, model, action, details, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(entry.ID),
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.Agent,
		entry.Model,
		entry.Action.String(),
		string(details),
		entry.Status.String(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert log entry", goerr.V("id", entry.ID))
	}
	return nil
}

func (s *SQLite) List(ctx context.Context) ([]*model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, agent, model, action, details, status
		 FROM log_entries ORDER BY seq ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query log entries")
	}
	defer safe.Close(ctx, rows)

	entries := []*model.LogEntry{}
	for rows.Next() {
		var (
			id, ts, agent, modelName, action, details, status string
		)
		if err := rows.Scan(&id, &ts, &agent, &modelName, &action, &details, &status); err != nil {
			return nil, goerr.Wrap(err, "failed to scan log entry")
		}

		timestamp, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid timestamp", goerr.V("id", id), goerr.V("timestamp", ts))
		}

		entry := &model.LogEntry{
			ID:        model.LogEntryID(id),
			Timestamp: timestamp,
			Agent:     agent,
			Model:     modelName,
			Action:    types.ActionType(action),
			Status:    types.Status(status),
		}
		if err := json.Unmarshal([]byte(details), &entry.Details); err != nil {
			return nil, goerr.Wrap(err, "invalid details", goerr.V("id", id))
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate log entries")
	}
	return entries, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
