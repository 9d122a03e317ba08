package recorder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/repository/memory"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/recorder"
	"github.com/m-mizutani/gt"
)

func validEntry() *model.LogEntry {
	return &model.LogEntry{
		Agent:  "AuditorAgent",
		Model:  "gemini-2.5-flash",
		Action: types.ActionAnalysis,
		Details: map[string]any{
			model.DetailInputPrompt:    "prompt",
			model.DetailOutputResponse: "response",
		},
		Status: types.StatusSuccess,
	}
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("JST", 9*3600))

	t.Run("stamps id and UTC timestamp", func(t *testing.T) {
		repo := memory.New()
		rec := recorder.New(repo, recorder.WithClock(func() time.Time { return fixed }))

		entry := validEntry()
		gt.NoError(t, rec.Record(ctx, entry)).Required()

		entries, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.String(t, string(entries[0].ID)).NotEqual("")
		gt.Value(t, entries[0].Timestamp).Equal(fixed.UTC())
		gt.Value(t, entries[0].Timestamp.Location()).Equal(time.UTC)

		// the caller's entry is untouched
		gt.String(t, string(entry.ID)).Equal("")
	})

	t.Run("each record gets a distinct id", func(t *testing.T) {
		repo := memory.New()
		rec := recorder.New(repo)
		gt.NoError(t, rec.Record(ctx, validEntry())).Required()
		gt.NoError(t, rec.Record(ctx, validEntry())).Required()

		entries, err := rec.Entries(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2).Required()
		gt.Value(t, entries[0].ID).NotEqual(entries[1].ID)
	})

	testCases := []struct {
		name  string
		edit  func(e *model.LogEntry)
		field string
	}{
		{
			name:  "missing input_prompt",
			edit:  func(e *model.LogEntry) { delete(e.Details, model.DetailInputPrompt) },
			field: "details.input_prompt",
		},
		{
			name:  "missing output_response",
			edit:  func(e *model.LogEntry) { delete(e.Details, model.DetailOutputResponse) },
			field: "details.output_response",
		},
		{
			name:  "unknown action",
			edit:  func(e *model.LogEntry) { e.Action = "refactor" },
			field: "action",
		},
		{
			name:  "invalid status",
			edit:  func(e *model.LogEntry) { e.Status = "OK" },
			field: "status",
		},
		{
			name:  "empty agent",
			edit:  func(e *model.LogEntry) { e.Agent = "" },
			field: "agent",
		},
	}

	for _, tc := range testCases {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			repo := memory.New()
			rec := recorder.New(repo)

			entry := validEntry()
			tc.edit(entry)

			err := rec.Record(ctx, entry)
			gt.Value(t, err).NotNil().Required()

			var verr *model.ValidationError
			gt.Bool(t, errors.As(err, &verr)).True().Required()
			gt.Value(t, verr.Field).Equal(tc.field)

			entries, err := repo.List(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, entries).Length(0)
		})
	}

	t.Run("rejects nil entry", func(t *testing.T) {
		rec := recorder.New(memory.New())
		var verr *model.ValidationError
		gt.Bool(t, errors.As(rec.Record(ctx, nil), &verr)).True()
	})
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	rec := recorder.New(repo)

	gt.NoError(t, rec.Finalize(ctx, recorder.ExperimentCompleted)).Required()

	entries, err := repo.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(1).Required()
	gt.Value(t, entries[0].Agent).Equal(recorder.SystemAgent)
	gt.Value(t, entries[0].Model).Equal(model.ModelSystem)
	gt.Value(t, entries[0].Action).Equal(types.ActionAnalysis)
	gt.Value(t, entries[0].Status).Equal(types.StatusSuccess)
	gt.Value(t, entries[0].Details[model.DetailExperiment]).Equal(any(recorder.ExperimentCompleted))
}
