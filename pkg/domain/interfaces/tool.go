package interfaces

import "context"

// TestExecutor runs a test file. A failing test run is a normal outcome
// (passed=false); err is reserved for path violations.
type TestExecutor interface {
	Execute(ctx context.Context, testFile string) (passed bool, output string, err error)
}

// Scorer returns a static quality score in [0,10] for a file, 0.0 when
// the score cannot be determined
type Scorer interface {
	Score(ctx context.Context, path string) float64
}
