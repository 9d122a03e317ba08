package fixer

import (
	"context"
	"strings"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/prompt"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/codeblock"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Fixer asks the model to rewrite a file and writes the result back
type Fixer struct {
	gateway  interfaces.Gateway
	recorder interfaces.Recorder
	files    interfaces.FileStore
	backups  interfaces.BackupStore
	prompts  *prompt.Builder
}

var _ interfaces.Fixer = &Fixer{}

type Option func(*Fixer)

// WithPrompts replaces the default prompt builder
func WithPrompts(b *prompt.Builder) Option {
	return func(f *Fixer) {
		f.prompts = b
	}
}

// WithBackupStore takes a backup of the file before every write
func WithBackupStore(s interfaces.BackupStore) Option {
	return func(f *Fixer) {
		f.backups = s
	}
}

func New(gateway interfaces.Gateway, recorder interfaces.Recorder, files interfaces.FileStore, opts ...Option) *Fixer {
	f := &Fixer{
		gateway:  gateway,
		recorder: recorder,
		files:    files,
		prompts:  prompt.NewBuilder(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fix returns the rewritten content and persists it to target.Path. When
// the model call fails, or yields no code, content is returned and written
// back unchanged; the paired log entry then has status FAILURE. Errors are
// reserved for path violations and unrecordable log entries.
func (f *Fixer) Fix(ctx context.Context, target *model.TargetFile, content string, issues model.IssueList, feedback string) (string, error) {
	logger := logging.From(ctx)

	p, err := f.prompts.Fix(content, issues, feedback)
	if err != nil {
		return "", err
	}

	entry := &model.LogEntry{
		Agent:  types.RoleFixer.AgentName(),
		Model:  f.gateway.Model(),
		Action: types.ActionFix,
		Details: map[string]any{
			model.DetailInputPrompt: p,
			model.DetailPromptHash:  prompt.Hash(p),
			model.DetailFile:        target.Path,
			model.DetailIssuesFound: []string(issues),
		},
		Status: types.StatusFailure,
	}

	fixed := content
	resp, askErr := f.gateway.Ask(ctx, p)
	switch {
	case askErr != nil:
		logger.Warn("Fix request failed, keeping content", "file", target.Path, "error", askErr)
		entry.Details[model.DetailOutputResponse] = askErr.Error()

	case codeblock.Extract(resp) == "":
		logger.Warn("Fix response had no code, keeping content", "file", target.Path)
		entry.Details[model.DetailOutputResponse] = resp

	default:
		fixed = codeblock.Extract(resp)
		if !strings.HasSuffix(fixed, "\n") {
			fixed += "\n"
		}
		entry.Details[model.DetailOutputResponse] = resp
		entry.Status = types.StatusSuccess
	}

	if err := f.recorder.Record(ctx, entry); err != nil {
		return "", goerr.Wrap(err, "failed to record fix", goerr.V(model.PathKey, target.Path))
	}

	if f.backups != nil {
		backup, err := f.backups.Backup(ctx, target.Path)
		if err != nil {
			return "", goerr.Wrap(err, "failed to back up file", goerr.V(model.PathKey, target.Path))
		}
		logger.Debug("Backed up file", "file", target.Path, "backup", backup)
	}

	if err := f.files.Write(ctx, target.Path, fixed); err != nil {
		return "", goerr.Wrap(err, "failed to write fixed file", goerr.V(model.PathKey, target.Path))
	}

	return fixed, nil
}
