package prompt

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrPromptExists   = goerr.New("prompt already exists")
	ErrPromptNotFound = goerr.New("prompt not found")
	ErrPromptEmpty    = goerr.New("prompt is empty")
	ErrInvalidName    = goerr.New("invalid prompt name")
)

const promptExt = ".txt"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Library stores named prompts as <dir>/<name>.txt
type Library struct {
	dir string
}

// NewLibrary creates a library rooted at dir. The directory is created
// lazily on first Save.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the library directory
func (l *Library) Dir() string {
	return l.dir
}

func (l *Library) path(name string) (string, error) {
	if !namePattern.MatchString(name) || strings.Contains(name, "..") {
		return "", goerr.Wrap(ErrInvalidName, "prompt name must be a plain file name", goerr.V("name", name))
	}
	return filepath.Join(l.dir, name+promptExt), nil
}

// Save stores content under name. An existing prompt is only replaced when
// overwrite is true.
func (l *Library) Save(name, content string, overwrite bool) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create prompt directory", goerr.V("dir", l.dir))
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return goerr.Wrap(ErrPromptExists, "use overwrite to replace it", goerr.V("name", name))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to open prompt file", goerr.V("path", path))
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to write prompt", goerr.V("path", path))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close prompt file", goerr.V("path", path))
	}
	return nil
}

// Load returns the prompt stored under name
func (l *Library) Load(name string) (string, error) {
	path, err := l.path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", goerr.Wrap(ErrPromptNotFound, "save it first", goerr.V("name", name), goerr.V("dir", l.dir))
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to read prompt", goerr.V("path", path))
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", goerr.Wrap(ErrPromptEmpty, "prompt has no content", goerr.V("name", name))
	}
	return string(data), nil
}

// List returns the names of stored prompts in lexical order
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list prompts", goerr.V("dir", l.dir))
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), promptExt) {
			names = append(names, strings.TrimSuffix(e.Name(), promptExt))
		}
	}
	sort.Strings(names)
	return names, nil
}
