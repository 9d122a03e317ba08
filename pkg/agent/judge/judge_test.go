package judge_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/agent/judge"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/repository/memory"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/recorder"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/sandbox"
	"github.com/m-mizutani/gt"
)

type reply struct {
	resp string
	err  error
}

// mockGateway answers with replies in order and repeats the last one
type mockGateway struct {
	replies []reply
	prompts []string
}

func (m *mockGateway) Ask(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	r := m.replies[min(len(m.prompts), len(m.replies))-1]
	return r.resp, r.err
}

func (m *mockGateway) Model() string {
	return "gemini-test"
}

type mockExecutor struct {
	passed bool
	output string
	files  []string
}

func (m *mockExecutor) Execute(_ context.Context, testFile string) (bool, string, error) {
	m.files = append(m.files, testFile)
	return m.passed, m.output, nil
}

const (
	source    = "def add(a, b):\n    return a + b\n"
	testsCode = "from calc import add\n\ndef test_add():\n    assert add(1, 2) == 3"
)

func setup(t *testing.T) (*sandbox.Store, *model.TargetFile) {
	t.Helper()
	store, err := sandbox.New(t.TempDir())
	gt.NoError(t, err).Required()

	path := filepath.Join(store.Root(), "calc.py")
	gt.NoError(t, os.WriteFile(path, []byte(source), 0o644)).Required()
	return store, model.NewTargetFile(path)
}

func transportErr() error {
	return &model.TransportError{Err: errors.New("connection reset")}
}

func TestGenerateTests(t *testing.T) {
	ctx := context.Background()

	t.Run("strips fences and records one generation entry", func(t *testing.T) {
		store, _ := setup(t)
		repo := memory.New()
		gw := &mockGateway{replies: []reply{{resp: "```python\n" + testsCode + "\n```"}}}
		j := judge.New(gw, recorder.New(repo), store, &mockExecutor{})

		result, err := j.GenerateTests(ctx, source, "calc")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.IsOk()).True()
		gt.Value(t, result.Value()).Equal(testsCode + "\n")
		gt.String(t, gw.prompts[0]).Contains("from calc import")

		entries, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Action).Equal(types.ActionGeneration)
		gt.Value(t, entries[0].Status).Equal(types.StatusSuccess)
	})

	t.Run("retries transport failures", func(t *testing.T) {
		store, _ := setup(t)
		repo := memory.New()
		gw := &mockGateway{replies: []reply{{err: transportErr()}, {err: transportErr()}, {resp: testsCode}}}
		j := judge.New(gw, recorder.New(repo), store, &mockExecutor{}, judge.WithRetryDelay(0))

		result, err := j.GenerateTests(ctx, source, "calc")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.IsOk()).True()
		gt.Array(t, gw.prompts).Length(3)

		entries, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(3).Required()
		gt.Value(t, entries[0].Action).Equal(types.ActionDebug)
		gt.Value(t, entries[0].Status).Equal(types.StatusFailure)
		gt.Value(t, entries[0].Details[model.DetailAttempt]).Equal(any(1))
		gt.Value(t, entries[2].Action).Equal(types.ActionGeneration)
		gt.Value(t, entries[2].Status).Equal(types.StatusSuccess)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		store, _ := setup(t)
		repo := memory.New()
		gw := &mockGateway{replies: []reply{{err: transportErr()}}}
		j := judge.New(gw, recorder.New(repo), store, &mockExecutor{},
			judge.WithRetryDelay(0),
			judge.WithAttempts(3),
		)

		result, err := j.GenerateTests(ctx, source, "calc")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.IsOk()).False()
		gt.Array(t, gw.prompts).Length(3)

		entries, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(3)
	})

	t.Run("api error is not retried", func(t *testing.T) {
		store, _ := setup(t)
		repo := memory.New()
		gw := &mockGateway{replies: []reply{{err: &model.APIError{StatusCode: 400, Body: "bad request"}}}}
		j := judge.New(gw, recorder.New(repo), store, &mockExecutor{}, judge.WithRetryDelay(0))

		result, err := j.GenerateTests(ctx, source, "calc")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.IsOk()).False()
		gt.Array(t, gw.prompts).Length(1)

		entries, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Action).Equal(types.ActionGeneration)
		gt.Value(t, entries[0].Status).Equal(types.StatusFailure)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		store, _ := setup(t)
		gw := &mockGateway{replies: []reply{{err: transportErr()}}}
		j := judge.New(gw, recorder.New(memory.New()), store, &mockExecutor{}, judge.WithRetryDelay(time.Hour))

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		result, err := j.GenerateTests(cctx, source, "calc")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.IsOk()).False()
		gt.Array(t, gw.prompts).Length(1)
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("generates, writes and executes tests", func(t *testing.T) {
		store, target := setup(t)
		repo := memory.New()
		exec := &mockExecutor{passed: true, output: "1 passed"}
		j := judge.New(&mockGateway{replies: []reply{{resp: testsCode}}}, recorder.New(repo), store, exec)

		verdict, err := j.Run(ctx, target, true)
		gt.NoError(t, err).Required()
		gt.Bool(t, verdict.Passed).True()
		gt.Bool(t, verdict.Executed).True()
		gt.Value(t, verdict.Feedback).Equal("1 passed")
		gt.Value(t, exec.files).Equal([]string{target.TestPath})

		written, err := os.ReadFile(target.TestPath)
		gt.NoError(t, err).Required()
		gt.Value(t, string(written)).Equal(testsCode + "\n")

		entries, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2).Required()
		gt.Value(t, entries[1].Model).Equal(model.ModelLocal)
		gt.Value(t, entries[1].Action).Equal(types.ActionDebug)
		gt.Value(t, entries[1].Status).Equal(types.StatusSuccess)
	})

	t.Run("failing tests return output verbatim", func(t *testing.T) {
		store, target := setup(t)
		gt.NoError(t, os.WriteFile(target.TestPath, []byte(testsCode), 0o644)).Required()

		exec := &mockExecutor{passed: false, output: "FAILED test_add\nAssertionError"}
		j := judge.New(&mockGateway{}, recorder.New(memory.New()), store, exec)

		verdict, err := j.Run(ctx, target, false)
		gt.NoError(t, err).Required()
		gt.Bool(t, verdict.Passed).False()
		gt.Value(t, verdict.Feedback).Equal("FAILED test_add\nAssertionError")
	})

	t.Run("generation failure skips the executor", func(t *testing.T) {
		store, target := setup(t)
		repo := memory.New()
		exec := &mockExecutor{passed: true}
		gw := &mockGateway{replies: []reply{{err: transportErr()}}}
		j := judge.New(gw, recorder.New(repo), store, exec, judge.WithRetryDelay(0))

		verdict, err := j.Run(ctx, target, true)
		gt.NoError(t, err).Required()
		gt.Bool(t, verdict.Passed).False()
		gt.Bool(t, verdict.Executed).False()
		gt.Value(t, verdict.Feedback).Equal(model.FeedbackGenerationFailed)
		gt.Array(t, exec.files).Length(0)

		exists, err := store.Exists(ctx, target.TestPath)
		gt.NoError(t, err).Required()
		gt.Bool(t, exists).False()

		entries, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		// three generation attempts and the run outcome
		gt.Array(t, entries).Length(4).Required()
		gt.Value(t, entries[3].OutputResponse()).NotEqual("")
		gt.Value(t, entries[3].Status).Equal(types.StatusFailure)
	})

	t.Run("missing test file without generation", func(t *testing.T) {
		store, target := setup(t)
		repo := memory.New()
		exec := &mockExecutor{passed: true}
		gw := &mockGateway{}
		j := judge.New(gw, recorder.New(repo), store, exec)

		verdict, err := j.Run(ctx, target, false)
		gt.NoError(t, err).Required()
		gt.Bool(t, verdict.Passed).False()
		gt.Value(t, verdict.Feedback).Equal(model.FeedbackTestFileNotFound)
		gt.Array(t, exec.files).Length(0)
		gt.Array(t, gw.prompts).Length(0)

		entries, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Status).Equal(types.StatusFailure)
	})

	t.Run("reuses existing tests without asking the model", func(t *testing.T) {
		store, target := setup(t)
		gt.NoError(t, os.WriteFile(target.TestPath, []byte(testsCode), 0o644)).Required()

		gw := &mockGateway{}
		exec := &mockExecutor{passed: true, output: "1 passed"}
		j := judge.New(gw, recorder.New(memory.New()), store, exec)

		verdict, err := j.Run(ctx, target, false)
		gt.NoError(t, err).Required()
		gt.Bool(t, verdict.Passed).True()
		gt.Array(t, gw.prompts).Length(0)
	})
}
