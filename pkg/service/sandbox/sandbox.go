package sandbox

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// BackupDir holds incremental copies taken before a file is rewritten
	BackupDir = "backups"
	// PlanDir holds the auditor's refactoring plans
	PlanDir = "refactoring_plan"
)

// Store is a file store confined to a root directory
type Store struct {
	root      string
	realRoot  string
	recursive bool
}

var (
	_ interfaces.FileStore   = &Store{}
	_ interfaces.BackupStore = &Store{}
	_ interfaces.PlanStore   = &Store{}
)

// Option configures a Store
type Option func(*Store)

// WithRecursive makes List descend into sub directories
func WithRecursive(recursive bool) Option {
	return func(s *Store) {
		s.recursive = recursive
	}
}

// New creates a Store rooted at root. The root must be an existing
// directory.
func New(root string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve sandbox root", goerr.V(model.RootKey, root))
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, goerr.Wrap(err, "sandbox root is not accessible", goerr.V(model.RootKey, abs))
	}
	info, err := os.Stat(real)
	if err != nil {
		return nil, goerr.Wrap(err, "sandbox root is not accessible", goerr.V(model.RootKey, real))
	}
	if !info.IsDir() {
		return nil, goerr.Wrap(model.ErrNotDirectory, "sandbox root must be a directory", goerr.V(model.RootKey, real))
	}

	s := &Store{root: abs, realRoot: real}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute sandbox root
func (s *Store) Root() string {
	return s.root
}

// Resolve returns the absolute form of path after checking that it stays
// inside the root. The lexical check runs first so an escaping path fails
// without touching the filesystem.
func (s *Store) Resolve(op, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &model.PathError{Op: op, Path: path, Err: err}
	}
	if !within(s.root, abs) {
		return "", &model.PathError{Op: op, Path: path, Err: model.ErrOutsideSandbox}
	}

	real, err := evalExisting(abs)
	if err != nil {
		return "", &model.PathError{Op: op, Path: path, Err: err}
	}
	if !within(s.realRoot, real) {
		return "", &model.PathError{Op: op, Path: path, Err: model.ErrOutsideSandbox}
	}
	return abs, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// evalExisting resolves symbolic links of the deepest existing ancestor of
// path and re-appends the missing tail.
func evalExisting(path string) (string, error) {
	var tail []string
	cur := path
	for {
		real, err := filepath.EvalSymlinks(cur)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				real = filepath.Join(real, tail[i])
			}
			return real, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path, nil
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}

// Read returns the content of a regular file inside the root
func (s *Store) Read(ctx context.Context, path string) (string, error) {
	abs, err := s.Resolve("read", path)
	if err != nil {
		return "", err
	}
	if err := requireRegular("read", path, abs); err != nil {
		return "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read file", goerr.V(model.PathKey, abs))
	}
	return string(data), nil
}

// Write replaces the content of path atomically, creating parent
// directories as needed
func (s *Store) Write(ctx context.Context, path, content string) error {
	abs, err := s.Resolve("write", path)
	if err != nil {
		return err
	}
	return writeAtomic(ctx, abs, []byte(content))
}

// Exists reports whether path exists inside the root
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	abs, err := s.Resolve("stat", path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, goerr.Wrap(err, "failed to stat file", goerr.V(model.PathKey, abs))
	}
}

// List returns the eligible target files of dir in lexical order.
// Generated test files and the store's own bookkeeping directories are
// skipped.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	abs, err := s.Resolve("list", dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &model.PathError{Op: "list", Path: dir, Err: model.ErrNotExist}
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to stat directory", goerr.V(model.PathKey, abs))
	}
	if !info.IsDir() {
		return nil, &model.PathError{Op: "list", Path: dir, Err: model.ErrNotDirectory}
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == abs {
				return nil
			}
			if !s.recursive || skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && model.IsEligible(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list directory", goerr.V(model.PathKey, abs))
	}

	sort.Strings(files)
	logging.From(ctx).Debug("listed target files", "dir", abs, "count", len(files))
	return files, nil
}

func skipDir(name string) bool {
	switch name {
	case BackupDir, PlanDir, "__pycache__":
		return true
	}
	return strings.HasPrefix(name, ".")
}

func requireRegular(op, path, abs string) error {
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return &model.PathError{Op: op, Path: path, Err: model.ErrNotExist}
	}
	if err != nil {
		return goerr.Wrap(err, "failed to stat file", goerr.V(model.PathKey, abs))
	}
	if !info.Mode().IsRegular() {
		return &model.PathError{Op: op, Path: path, Err: model.ErrNotRegular}
	}
	return nil
}

func writeAtomic(ctx context.Context, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V(model.PathKey, dir))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V(model.PathKey, path))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		safe.Close(ctx, tmp)
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to write temp file", goerr.V(model.PathKey, path))
	}
	if err := tmp.Close(); err != nil {
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to close temp file", goerr.V(model.PathKey, path))
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to set file mode", goerr.V(model.PathKey, path))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to replace file", goerr.V(model.PathKey, path))
	}
	return nil
}
