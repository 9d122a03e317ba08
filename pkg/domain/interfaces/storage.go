package interfaces

import "context"

// FileStore confines reads and writes to a sandbox root. Every method
// returns *model.PathError before touching the filesystem when path is
// outside the root.
type FileStore interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path, content string) error
	Exists(ctx context.Context, path string) (bool, error)

	// List returns eligible target files of dir in lexical order
	List(ctx context.Context, dir string) ([]string, error)
}

// BackupStore keeps copies of files before they are rewritten
type BackupStore interface {
	Backup(ctx context.Context, path string) (string, error)
}

// PlanStore persists the auditor's refactoring plan of a target file
type PlanStore interface {
	SaveAuditPlan(ctx context.Context, target, plan string) (string, error)
}

// Archiver uploads a finished experiment log to long term storage
type Archiver interface {
	Archive(ctx context.Context, localPath string) (string, error)
}
