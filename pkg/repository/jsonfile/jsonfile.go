package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultPath is where the experiment log is written by default
const DefaultPath = "logs/experiment_data.json"

// File stores the log as a single JSON array. Every Append reads the whole
// array, appends and rewrites the file.
type File struct {
	mu   sync.Mutex
	path string
}

var _ interfaces.LogRepository = &File{}

// New creates a File repository at path. The file is created on first
// Append.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the log file location
func (f *File) Path() string {
	return f.path
}

func (f *File) Append(ctx context.Context, entry *model.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(entries); err != nil {
		return goerr.Wrap(err, "failed to encode log entries", goerr.V(model.PathKey, f.path))
	}
	return f.replace(ctx, buf.Bytes())
}

func (f *File) List(ctx context.Context) ([]*model.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.load(ctx)
}

func (f *File) Close() error {
	return nil
}

// load returns the stored entries. A missing or blank file is an empty
// log; a corrupt file is reported and treated as empty.
func (f *File) load(ctx context.Context) ([]*model.LogEntry, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*model.LogEntry{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read log file", goerr.V(model.PathKey, f.path))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*model.LogEntry{}, nil
	}

	var entries []*model.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.From(ctx).Warn("Log file was corrupt, starting a new list",
			"path", f.path,
			"error", err,
		)
		return []*model.LogEntry{}, nil
	}
	if entries == nil {
		entries = []*model.LogEntry{}
	}
	return entries, nil
}

func (f *File) replace(ctx context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create log directory", goerr.V(model.PathKey, dir))
	}

	tmp, err := os.CreateTemp(dir, ".experiment-*.json")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp log file", goerr.V(model.PathKey, dir))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		safe.Close(ctx, tmp)
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to write log file", goerr.V(model.PathKey, f.path))
	}
	if err := tmp.Close(); err != nil {
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to close log file", goerr.V(model.PathKey, f.path))
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to set log file mode", goerr.V(model.PathKey, f.path))
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to replace log file", goerr.V(model.PathKey, f.path))
	}
	return nil
}
