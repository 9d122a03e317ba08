package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

var writeBackupData = func(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return err
}

// Backup copies path to <root>/backups/<stem>_backup<N><ext> using the
// first unused N starting from 1, and returns the backup path.
func (s *Store) Backup(ctx context.Context, path string) (string, error) {
	abs, err := s.Resolve("backup", path)
	if err != nil {
		return "", err
	}
	if err := requireRegular("backup", path, abs); err != nil {
		return "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read file for backup", goerr.V(model.PathKey, abs))
	}

	dir := filepath.Join(s.root, BackupDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create backup directory", goerr.V(model.PathKey, dir))
	}

	ext := filepath.Ext(abs)
	stem := strings.TrimSuffix(filepath.Base(abs), ext)
	for n := 1; ; n++ {
		dst := filepath.Join(dir, fmt.Sprintf("%s_backup%d%s", stem, n, ext))
		f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", goerr.Wrap(err, "failed to create backup file", goerr.V(model.PathKey, dst))
		}
		if err := writeBackupData(f, data); err != nil {
			safe.Close(ctx, f)
			safe.Remove(ctx, dst)
			return "", goerr.Wrap(err, "failed to write backup file", goerr.V(model.PathKey, dst))
		}
		if err := f.Close(); err != nil {
			safe.Remove(ctx, dst)
			return "", goerr.Wrap(err, "failed to close backup file", goerr.V(model.PathKey, dst))
		}

		logging.From(ctx).Debug("backup created", "file", abs, "backup", dst, "number", n)
		return dst, nil
	}
}

// SaveAuditPlan writes plan to <root>/refactoring_plan/<stem>_audit_plan.txt,
// replacing any previous plan of the same target
func (s *Store) SaveAuditPlan(ctx context.Context, target, plan string) (string, error) {
	if _, err := s.Resolve("plan", target); err != nil {
		return "", err
	}
	stem := model.ModuleName(target)
	dst := filepath.Join(s.root, PlanDir, stem+"_audit_plan.txt")
	if err := writeAtomic(ctx, dst, []byte(plan)); err != nil {
		return "", err
	}
	return dst, nil
}
