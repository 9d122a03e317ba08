package model

import "strings"

// Judge feedback messages for runs that never reached the test executor
const (
	FeedbackGenerationFailed = "Failed to generate pytest tests"
	FeedbackTestFileNotFound = "Test file not found"
)

// JudgeVerdict is the outcome of one judge run
type JudgeVerdict struct {
	Passed   bool
	Feedback string
	// Executed is false when the test executor was never invoked
	Executed bool
}

// TruncateFeedback keeps the first n lines of feedback
func TruncateFeedback(feedback string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(feedback, "\n")
	if len(lines) <= n {
		return feedback
	}
	return strings.Join(lines[:n], "\n")
}

// FirstLine returns the first line of feedback, used in status lines
func FirstLine(feedback string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(feedback), "\n")
	return line
}
