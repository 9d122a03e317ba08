package auditor

import (
	"context"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/prompt"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Auditor asks the model for a list of problems in a file
type Auditor struct {
	gateway  interfaces.Gateway
	recorder interfaces.Recorder
	prompts  *prompt.Builder
	plans    interfaces.PlanStore
}

var _ interfaces.Auditor = &Auditor{}

type Option func(*Auditor)

// WithPrompts replaces the default prompt builder
func WithPrompts(b *prompt.Builder) Option {
	return func(a *Auditor) {
		a.prompts = b
	}
}

// WithPlanStore saves every successful audit response as a refactoring plan
func WithPlanStore(s interfaces.PlanStore) Option {
	return func(a *Auditor) {
		a.plans = s
	}
}

func New(gateway interfaces.Gateway, recorder interfaces.Recorder, opts ...Option) *Auditor {
	a := &Auditor{
		gateway:  gateway,
		recorder: recorder,
		prompts:  prompt.NewBuilder(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze calls the model once. A gateway failure is returned as a Failed
// result, never as an error; the error return is reserved for a log entry
// that could not be recorded.
func (a *Auditor) Analyze(ctx context.Context, target *model.TargetFile, content string) (model.AuditResult, error) {
	logger := logging.From(ctx)

	p, err := a.prompts.Audit(content)
	if err != nil {
		return model.AuditResult{}, err
	}

	entry := &model.LogEntry{
		Agent:  types.RoleAuditor.AgentName(),
		Model:  a.gateway.Model(),
		Action: types.ActionAnalysis,
		Details: map[string]any{
			model.DetailInputPrompt: p,
			model.DetailPromptHash:  prompt.Hash(p),
			model.DetailFile:        target.Path,
		},
	}

	resp, askErr := a.gateway.Ask(ctx, p)
	if askErr != nil {
		logger.Warn("Audit request failed", "file", target.Path, "error", askErr)

		entry.Details[model.DetailOutputResponse] = askErr.Error()
		entry.Details[model.DetailIssuesFound] = []string{model.AuditFailureReason}
		entry.Status = types.StatusFailure
		if err := a.recorder.Record(ctx, entry); err != nil {
			return model.AuditResult{}, goerr.Wrap(err, "failed to record audit", goerr.V(model.PathKey, target.Path))
		}
		return model.Failed[model.IssueList](model.AuditFailureReason), nil
	}

	issues := model.ParseIssues(resp)
	entry.Details[model.DetailOutputResponse] = resp
	entry.Details[model.DetailIssuesFound] = []string(issues)
	entry.Status = types.StatusSuccess
	if err := a.recorder.Record(ctx, entry); err != nil {
		return model.AuditResult{}, goerr.Wrap(err, "failed to record audit", goerr.V(model.PathKey, target.Path))
	}

	if a.plans != nil {
		if planPath, err := a.plans.SaveAuditPlan(ctx, target.Path, resp); err != nil {
			logger.Warn("Failed to save audit plan", "file", target.Path, "error", err)
		} else {
			logger.Debug("Saved audit plan", "file", target.Path, "plan", planPath)
		}
	}

	logger.Debug("Audit completed", "file", target.Path, "issues", len(issues))
	return model.Ok(issues), nil
}
