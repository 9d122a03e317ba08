package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/prompt"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/codeblock"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultAttempts   = 3
	DefaultRetryDelay = 5 * time.Second
)

// Judge generates pytest tests for a file and runs them
type Judge struct {
	gateway  interfaces.Gateway
	recorder interfaces.Recorder
	files    interfaces.FileStore
	executor interfaces.TestExecutor
	prompts  *prompt.Builder
	attempts int
	delay    time.Duration
}

var _ interfaces.Judge = &Judge{}

type Option func(*Judge)

// WithPrompts replaces the default prompt builder
func WithPrompts(b *prompt.Builder) Option {
	return func(j *Judge) {
		j.prompts = b
	}
}

// WithAttempts bounds the number of generation requests. Values below 1
// are ignored.
func WithAttempts(n int) Option {
	return func(j *Judge) {
		if n > 0 {
			j.attempts = n
		}
	}
}

// WithRetryDelay sets the wait between generation attempts
func WithRetryDelay(d time.Duration) Option {
	return func(j *Judge) {
		j.delay = d
	}
}

func New(gateway interfaces.Gateway, recorder interfaces.Recorder, files interfaces.FileStore, executor interfaces.TestExecutor, opts ...Option) *Judge {
	j := &Judge{
		gateway:  gateway,
		recorder: recorder,
		files:    files,
		executor: executor,
		prompts:  prompt.NewBuilder(),
		attempts: DefaultAttempts,
		delay:    DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// GenerateTests asks the model for pytest code importing from module.
// Transport failures are retried up to the configured number of attempts;
// an API error ends generation immediately. Every attempt is recorded.
func (j *Judge) GenerateTests(ctx context.Context, content, module string) (model.Result[string], error) {
	logger := logging.From(ctx)

	p, err := j.prompts.Tests(content, module)
	if err != nil {
		return model.Result[string]{}, err
	}
	hash := prompt.Hash(p)

	for attempt := 1; attempt <= j.attempts; attempt++ {
		entry := &model.LogEntry{
			Agent:  types.RoleJudge.AgentName(),
			Model:  j.gateway.Model(),
			Action: types.ActionGeneration,
			Details: map[string]any{
				model.DetailInputPrompt: p,
				model.DetailPromptHash:  hash,
				model.DetailFile:        module,
				model.DetailAttempt:     attempt,
			},
		}

		resp, askErr := j.gateway.Ask(ctx, p)
		if askErr == nil {
			code := codeblock.Extract(resp)
			entry.Details[model.DetailOutputResponse] = resp
			entry.Status = types.StatusOf(code != "")
			if err := j.recorder.Record(ctx, entry); err != nil {
				return model.Result[string]{}, goerr.Wrap(err, "failed to record test generation")
			}
			if code == "" {
				return model.Failed[string]("model returned no test code"), nil
			}
			if !strings.HasSuffix(code, "\n") {
				code += "\n"
			}
			return model.Ok(code), nil
		}

		entry.Details[model.DetailOutputResponse] = askErr.Error()
		entry.Status = types.StatusFailure

		var transportErr *model.TransportError
		if !errors.As(askErr, &transportErr) {
			if err := j.recorder.Record(ctx, entry); err != nil {
				return model.Result[string]{}, goerr.Wrap(err, "failed to record test generation")
			}
			logger.Warn("Test generation rejected by API", "module", module, "error", askErr)
			return model.Failed[string](askErr.Error()), nil
		}

		entry.Action = types.ActionDebug
		if err := j.recorder.Record(ctx, entry); err != nil {
			return model.Result[string]{}, goerr.Wrap(err, "failed to record test generation")
		}
		logger.Warn("Test generation transport failure",
			"module", module,
			"attempt", attempt,
			"max_attempts", j.attempts,
			"error", askErr,
		)

		if attempt < j.attempts {
			if err := wait(ctx, j.delay); err != nil {
				return model.Failed[string](err.Error()), nil
			}
		}
	}

	return model.Failed[string](fmt.Sprintf("test generation failed after %d attempts", j.attempts)), nil
}

// Run executes the tests of target. With generate set, fresh tests are
// generated and written to target.TestPath first; otherwise the test file
// must already exist. Each call records exactly one entry for its outcome.
func (j *Judge) Run(ctx context.Context, target *model.TargetFile, generate bool) (model.JudgeVerdict, error) {
	if generate {
		content, err := j.files.Read(ctx, target.Path)
		if err != nil {
			return model.JudgeVerdict{}, err
		}

		result, err := j.GenerateTests(ctx, content, target.ModuleName)
		if err != nil {
			return model.JudgeVerdict{}, err
		}
		if !result.IsOk() {
			verdict := model.JudgeVerdict{Feedback: model.FeedbackGenerationFailed}
			return verdict, j.record(ctx, target, "generate tests for "+target.ModuleName, result.Reason(), verdict)
		}

		if err := j.files.Write(ctx, target.TestPath, result.Value()); err != nil {
			return model.JudgeVerdict{}, goerr.Wrap(err, "failed to write test file", goerr.V(model.PathKey, target.TestPath))
		}
	} else {
		exists, err := j.files.Exists(ctx, target.TestPath)
		if err != nil {
			return model.JudgeVerdict{}, err
		}
		if !exists {
			verdict := model.JudgeVerdict{Feedback: model.FeedbackTestFileNotFound}
			return verdict, j.record(ctx, target, "pytest "+target.TestPath, model.FeedbackTestFileNotFound, verdict)
		}
	}

	passed, output, err := j.executor.Execute(ctx, target.TestPath)
	if err != nil {
		return model.JudgeVerdict{}, err
	}

	verdict := model.JudgeVerdict{Passed: passed, Feedback: output, Executed: true}
	return verdict, j.record(ctx, target, "pytest "+target.TestPath, output, verdict)
}

func (j *Judge) record(ctx context.Context, target *model.TargetFile, input, output string, verdict model.JudgeVerdict) error {
	err := j.recorder.Record(ctx, &model.LogEntry{
		Agent:  types.RoleJudge.AgentName(),
		Model:  model.ModelLocal,
		Action: types.ActionDebug,
		Details: map[string]any{
			model.DetailInputPrompt:    input,
			model.DetailOutputResponse: output,
			model.DetailFile:           target.Path,
		},
		Status: types.StatusOf(verdict.Passed),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to record test run", goerr.V(model.PathKey, target.Path))
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
