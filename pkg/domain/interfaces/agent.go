package interfaces

import (
	"context"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
)

// Auditor lists problems of a file
type Auditor interface {
	Analyze(ctx context.Context, target *model.TargetFile, content string) (model.AuditResult, error)
}

// Fixer rewrites a file to address issues and writes the result back.
// feedback is empty on the first pass.
type Fixer interface {
	Fix(ctx context.Context, target *model.TargetFile, content string, issues model.IssueList, feedback string) (string, error)
}

// Judge generates and runs tests for a file
type Judge interface {
	Run(ctx context.Context, target *model.TargetFile, generate bool) (model.JudgeVerdict, error)
}
