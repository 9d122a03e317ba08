package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/recorder"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/errutil"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel"
)

// OrchestratorAgent is the agent name of per-file summary entries
const OrchestratorAgent = "Orchestrator"

// RefactorUseCase drives target files through scoring, audit, fix and test
type RefactorUseCase struct {
	deps      Dependencies
	config    Config
	progress  *Progress
	finalizer interfaces.Finalizer
	archiver  interfaces.Archiver
	logPath   string
	telemetry *telemetry
}

// NewRefactorUseCase creates a new RefactorUseCase. progress, finalizer
// and archiver may be nil. Spans and metrics go to the global otel
// providers.
func NewRefactorUseCase(
	deps Dependencies,
	cfg Config,
	progress *Progress,
	finalizer interfaces.Finalizer,
	archiver interfaces.Archiver,
	logPath string,
) *RefactorUseCase {
	return &RefactorUseCase{
		deps:      deps,
		config:    cfg,
		progress:  progress,
		finalizer: finalizer,
		archiver:  archiver,
		logPath:   logPath,
		telemetry: buildTelemetry(otel.GetTracerProvider(), otel.GetMeterProvider()),
	}
}

// fileRun is the mutable state of one file while it moves through the
// state machine
type fileRun struct {
	target         *model.TargetFile
	report         *model.FileReport
	skipGeneration bool
	issues         model.IssueList
	verdict        model.JudgeVerdict
	attempt        int
}

// ProcessFile runs the state machine for one file. Remote failures never
// surface here; the returned error is reserved for path violations and log
// entries that could not be recorded.
func (uc *RefactorUseCase) ProcessFile(ctx context.Context, path string) (*model.FileReport, error) {
	start := time.Now()
	ctx, span := uc.telemetry.startFileSpan(ctx, path)
	ctx = logging.With(ctx, logging.From(ctx).With("file", path))

	run := &fileRun{
		target: model.NewTargetFile(path),
		report: &model.FileReport{Path: path},
	}

	var err error
	state := types.StateScoring
	for state != types.StateDone {
		next, stepErr := uc.step(ctx, run, state)
		if stepErr != nil {
			err = goerr.Wrap(stepErr, "failed to process file",
				goerr.V(FileKey, path),
				goerr.V(StateKey, state),
			)
			break
		}
		logging.From(ctx).Debug("State transition", "from", state, "to", next)
		uc.telemetry.recordTransition(ctx, next)
		state = next
	}

	run.report.Duration = time.Since(start)
	if err == nil {
		uc.telemetry.recordFile(ctx, run.report.Outcome, run.report.Duration)
		uc.progress.Outcome(run.report)
	}
	uc.telemetry.endFileSpan(span, run.report, err)

	return run.report, err
}

func (uc *RefactorUseCase) step(ctx context.Context, run *fileRun, state types.State) (types.State, error) {
	switch state {
	case types.StateScoring:
		return uc.score(ctx, run)
	case types.StateFastPath:
		return uc.fastPath(ctx, run)
	case types.StateProbe:
		return uc.probe(ctx, run)
	case types.StateAuditing:
		return uc.audit(ctx, run)
	case types.StateFixing:
		return uc.fix(ctx, run)
	case types.StateTesting:
		return uc.test(ctx, run)
	case types.StateRetrying:
		return uc.retry(ctx, run)
	case types.StateFinalizing:
		return uc.finalize(ctx, run)
	default:
		return "", goerr.New("unknown state", goerr.V(StateKey, state))
	}
}

func (uc *RefactorUseCase) score(ctx context.Context, run *fileRun) (types.State, error) {
	path := run.target.Path

	content, err := uc.deps.Files.Read(ctx, path)
	if err != nil {
		return "", err
	}
	run.target.Original = content

	before := uc.deps.Scorer.Score(ctx, path)
	run.report.ScoreBefore = before
	run.report.ScoreAfterFix = before
	run.report.ScoreFinal = before

	hasTests, err := uc.deps.Files.Exists(ctx, run.target.TestPath)
	if err != nil {
		return "", err
	}
	uc.progress.Step(types.StateScoring, path, "before=%.2f existing_tests=%t", before, hasTests)

	switch {
	case hasTests && before >= uc.config.FastPathThreshold:
		return types.StateFastPath, nil
	case hasTests:
		return types.StateProbe, nil
	default:
		return types.StateAuditing, nil
	}
}

// fastPath skips files that already score high and pass their tests. A
// failing run doubles as the existing test probe.
func (uc *RefactorUseCase) fastPath(ctx context.Context, run *fileRun) (types.State, error) {
	verdict, err := uc.runJudge(ctx, run, false)
	if err != nil {
		return "", err
	}
	if verdict.Passed {
		run.report.Outcome = types.OutcomeSkipped
		run.report.Passed = true
		uc.progress.Step(types.StateFastPath, run.target.Path, "score %.2f with passing tests, nothing to do", run.report.ScoreBefore)
		return types.StateDone, nil
	}

	run.skipGeneration = false
	uc.progress.Warn(types.StateFastPath, run.target.Path, "existing tests fail: %s", model.FirstLine(verdict.Feedback))
	return types.StateAuditing, nil
}

func (uc *RefactorUseCase) probe(ctx context.Context, run *fileRun) (types.State, error) {
	verdict, err := uc.runJudge(ctx, run, false)
	if err != nil {
		return "", err
	}
	run.skipGeneration = verdict.Passed

	if verdict.Passed {
		uc.progress.Step(types.StateProbe, run.target.Path, "existing tests pass, they will be reused")
	} else {
		uc.progress.Warn(types.StateProbe, run.target.Path, "existing tests fail, fresh tests will be generated")
	}
	return types.StateAuditing, nil
}

func (uc *RefactorUseCase) audit(ctx context.Context, run *fileRun) (types.State, error) {
	path := run.target.Path

	result, err := uc.deps.Auditor.Analyze(ctx, run.target, run.target.Original)
	if err != nil {
		return "", err
	}

	if !result.IsOk() {
		if run.report.ScoreBefore >= uc.config.AlreadyGoodThreshold && run.skipGeneration {
			run.report.Outcome = types.OutcomeAlreadyGood
			run.report.Passed = true
			uc.progress.Warn(types.StateAuditing, path, "audit failed, score %.2f with passing tests is good enough", run.report.ScoreBefore)
			return types.StateDone, nil
		}

		run.issues = model.IssueList{model.ForcedImprovementIssue}
		run.report.Issues = run.issues
		uc.progress.Warn(types.StateAuditing, path, "audit failed (%s), forcing an improvement pass", result.Reason())
		return types.StateFixing, nil
	}

	run.issues = result.Value()
	run.report.Issues = run.issues
	if len(run.issues) == 0 {
		run.report.Outcome = types.OutcomeSkipped
		run.report.Passed = run.verdict.Passed
		uc.progress.Step(types.StateAuditing, path, "no issues found")
		return types.StateDone, nil
	}

	uc.progress.Step(types.StateAuditing, path, "%d issues found", len(run.issues))
	return types.StateFixing, nil
}

func (uc *RefactorUseCase) fix(ctx context.Context, run *fileRun) (types.State, error) {
	path := run.target.Path

	if _, err := uc.deps.Fixer.Fix(ctx, run.target, run.target.Original, run.issues, ""); err != nil {
		return "", err
	}
	run.report.FixCalls++
	uc.telemetry.recordFixCall(ctx, false)

	before := run.report.ScoreBefore
	after := uc.deps.Scorer.Score(ctx, path)
	run.report.ScoreAfterFix = after

	if after < before-uc.config.RegressionTolerance {
		if err := uc.deps.Files.Write(ctx, path, run.target.Original); err != nil {
			return "", goerr.Wrap(err, "failed to restore original content")
		}
		run.report.Restored = true
		run.report.ScoreAfterFix = before
		uc.progress.Warn(types.StateFixing, path, "score dropped to %.2f, original restored", after)
		return types.StateTesting, nil
	}

	uc.progress.Step(types.StateFixing, path, "after_fix=%.2f", after)
	return types.StateTesting, nil
}

func (uc *RefactorUseCase) test(ctx context.Context, run *fileRun) (types.State, error) {
	path := run.target.Path
	generate := !run.skipGeneration

	verdict, err := uc.runJudge(ctx, run, generate)
	if err != nil {
		return "", err
	}

	switch {
	case verdict.Passed:
		uc.progress.Step(types.StateTesting, path, "tests passed (generated=%t)", generate)
		return types.StateFinalizing, nil

	case run.report.Restored:
		// a restored file stays byte-identical to the snapshot
		uc.progress.Warn(types.StateTesting, path, "tests failed on restored original, not retrying")
		return types.StateFinalizing, nil

	case uc.config.MaxFixRetries > 0:
		return types.StateRetrying, nil

	default:
		uc.progress.Warn(types.StateTesting, path, "tests failed: %s", model.FirstLine(verdict.Feedback))
		return types.StateFinalizing, nil
	}
}

// retry runs one feedback driven fix cycle. Tests are never regenerated
// here.
func (uc *RefactorUseCase) retry(ctx context.Context, run *fileRun) (types.State, error) {
	path := run.target.Path

	run.attempt++
	run.report.Retries = run.attempt
	uc.progress.Warn(types.StateRetrying, path, "tests failed: %s, retrying (%d/%d)",
		model.FirstLine(run.verdict.Feedback), run.attempt, uc.config.MaxFixRetries)

	content, err := uc.deps.Files.Read(ctx, path)
	if err != nil {
		return "", err
	}

	feedback := model.TruncateFeedback(run.verdict.Feedback, uc.config.FeedbackLines)
	if _, err := uc.deps.Fixer.Fix(ctx, run.target, content, run.issues, feedback); err != nil {
		return "", err
	}
	run.report.FixCalls++
	uc.telemetry.recordFixCall(ctx, true)

	verdict, err := uc.runJudge(ctx, run, false)
	if err != nil {
		return "", err
	}

	switch {
	case verdict.Passed:
		uc.progress.Step(types.StateRetrying, path, "tests passed after %d retries", run.attempt)
		return types.StateFinalizing, nil
	case run.attempt >= uc.config.MaxFixRetries:
		uc.progress.Warn(types.StateRetrying, path, "maximum retries reached")
		return types.StateFinalizing, nil
	default:
		return types.StateRetrying, nil
	}
}

func (uc *RefactorUseCase) finalize(ctx context.Context, run *fileRun) (types.State, error) {
	r := run.report
	r.ScoreFinal = uc.deps.Scorer.Score(ctx, r.Path)
	r.Improvement = r.ScoreFinal - r.ScoreBefore
	r.Passed = run.verdict.Passed
	r.Outcome = types.OutcomeFailed
	if r.Passed {
		r.Outcome = types.OutcomeSuccess
	}

	summary := fmt.Sprintf("file=%s before=%.2f after_fix=%.2f final=%.2f improvement=%+.2f tests_passed=%t",
		r.Path, r.ScoreBefore, r.ScoreAfterFix, r.ScoreFinal, r.Improvement, r.Passed)

	err := uc.deps.Recorder.Record(ctx, &model.LogEntry{
		Agent:  OrchestratorAgent,
		Model:  model.ModelSystem,
		Action: types.ActionAnalysis,
		Details: map[string]any{
			model.DetailInputPrompt:    "finalize " + r.Path,
			model.DetailOutputResponse: summary,
			model.DetailFile:           r.Path,
			model.DetailScoreBefore:    r.ScoreBefore,
			model.DetailScoreAfterFix:  r.ScoreAfterFix,
			model.DetailScoreFinal:     r.ScoreFinal,
			model.DetailImprovement:    r.Improvement,
			model.DetailTestsPassed:    r.Passed,
		},
		Status: types.StatusOf(r.Passed),
	})
	if err != nil {
		return "", err
	}

	logging.From(ctx).Info("File finalized",
		"before", r.ScoreBefore,
		"after_fix", r.ScoreAfterFix,
		"final", r.ScoreFinal,
		"passed", r.Passed,
		"fix_calls", r.FixCalls,
		"judge_runs", r.JudgeRuns,
	)
	return types.StateDone, nil
}

func (uc *RefactorUseCase) runJudge(ctx context.Context, run *fileRun, generate bool) (model.JudgeVerdict, error) {
	verdict, err := uc.deps.Judge.Run(ctx, run.target, generate)
	if err != nil {
		return model.JudgeVerdict{}, err
	}
	run.verdict = verdict
	run.report.JudgeRuns++
	uc.telemetry.recordJudgeRun(ctx, verdict.Passed)
	return verdict, nil
}

// ProcessDirectory processes every eligible file of dir sequentially. A
// failing file is reported in BatchReport.Errors and the batch goes on;
// listing errors, rejected log entries and cancellation abort the batch.
func (uc *RefactorUseCase) ProcessDirectory(ctx context.Context, dir string) (*model.BatchReport, error) {
	start := time.Now()
	logger := logging.From(ctx)

	files, err := uc.deps.Files.List(ctx, dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list target directory", goerr.V(DirKey, dir))
	}

	batch := &model.BatchReport{
		Dir:    dir,
		Errors: make(map[string]error),
	}
	if len(files) == 0 {
		logger.Warn("No eligible python files found", "dir", dir)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return batch, goerr.Wrap(err, "batch cancelled", goerr.V(DirKey, dir))
		}

		report, err := uc.ProcessFile(ctx, path)
		if err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				return batch, err
			}
			errutil.Handle(ctx, err, "failed to process file")
			batch.Errors[path] = err
			continue
		}
		batch.Files = append(batch.Files, report)
	}
	batch.Elapsed = time.Since(start)

	if uc.finalizer != nil {
		if err := uc.finalizer.Finalize(ctx, recorder.ExperimentCompleted); err != nil {
			return batch, goerr.Wrap(err, "failed to finalize experiment")
		}
	}

	if uc.archiver != nil && uc.logPath != "" {
		if url, err := uc.archiver.Archive(ctx, uc.logPath); err != nil {
			errutil.Handle(ctx, err, "failed to archive experiment log")
		} else {
			logger.Info("Experiment log archived", "url", url)
		}
	}

	uc.progress.Summary(batch)
	logger.Info("Batch completed",
		"dir", dir,
		"files", len(batch.Files),
		"errors", len(batch.Errors),
		"elapsed", batch.Elapsed,
	)
	return batch, nil
}
