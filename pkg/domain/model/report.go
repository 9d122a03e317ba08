package model

import (
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
)

// FileReport summarizes the processing of one target file
type FileReport struct {
	Path          string
	Outcome       types.Outcome
	ScoreBefore   float64
	ScoreAfterFix float64
	ScoreFinal    float64
	Improvement   float64
	Passed        bool
	Restored      bool
	Issues        IssueList
	FixCalls      int
	JudgeRuns     int
	Retries       int
	Duration      time.Duration
}

// BatchReport summarizes a directory run
type BatchReport struct {
	Dir     string
	Files   []*FileReport
	Errors  map[string]error
	Elapsed time.Duration
}

// Count returns the number of files that reached outcome
func (b *BatchReport) Count(outcome types.Outcome) int {
	n := 0
	for _, f := range b.Files {
		if f.Outcome == outcome {
			n++
		}
	}
	return n
}

// Succeeded reports whether every processed file ended without failure
func (b *BatchReport) Succeeded() bool {
	return len(b.Errors) == 0 && b.Count(types.OutcomeFailed) == 0
}
