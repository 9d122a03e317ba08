package config

import (
	"log/slog"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/sandbox"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sandbox holds configuration of the sandboxed file store
type Sandbox struct {
	root      string
	recursive bool
}

// Flags returns CLI flags for sandbox configuration
func (s *Sandbox) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sandbox-root",
			Usage:       "Directory all file operations are confined to (defaults to the target directory)",
			Category:    "Sandbox",
			Sources:     cli.EnvVars("SWARM_SANDBOX_ROOT"),
			Destination: &s.root,
		},
		&cli.BoolFlag{
			Name:        "recursive",
			Usage:       "Scan sub directories of the target directory",
			Category:    "Sandbox",
			Sources:     cli.EnvVars("SWARM_RECURSIVE"),
			Destination: &s.recursive,
		},
	}
}

// LogAttrs returns log attributes for the sandbox configuration
func (s *Sandbox) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("root", s.root),
		slog.Bool("recursive", s.recursive),
	}
}

// Recursive reports whether --recursive was set
func (s *Sandbox) Recursive() bool {
	return s.recursive
}

// Configure creates the file store. targetDir is used as the root when
// --sandbox-root is empty.
func (s *Sandbox) Configure(targetDir string, recursive bool) (*sandbox.Store, error) {
	root := s.root
	if root == "" {
		root = targetDir
	}
	if root == "" {
		return nil, goerr.Wrap(ErrMissingTarget, "sandbox root is not configured")
	}

	store, err := sandbox.New(root, sandbox.WithRecursive(recursive))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sandbox", goerr.V("root", root))
	}
	return store, nil
}
