package model

import (
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/google/uuid"
)

// Mandatory and well known detail keys
const (
	DetailInputPrompt    = "input_prompt"
	DetailOutputResponse = "output_response"
	DetailIssuesFound    = "issues_found"
	DetailPromptHash     = "prompt_hash"
	DetailFile           = "file"
	DetailAttempt        = "attempt"
	DetailExperiment     = "experiment_status"
	DetailScoreBefore    = "score_before"
	DetailScoreAfterFix  = "score_after_fix"
	DetailScoreFinal     = "score_final"
	DetailImprovement    = "improvement"
	DetailTestsPassed    = "tests_passed"
)

// Model identifiers used for entries not produced by an LLM
const (
	ModelLocal  = "local"
	ModelSystem = "system"
)

// LogEntryID is a UUID-based identifier for LogEntry
type LogEntryID string

// NewLogEntryID generates a new UUID v4 LogEntryID
func NewLogEntryID() LogEntryID {
	return LogEntryID(uuid.New().String())
}

// LogEntry is an immutable record of one agent interaction
type LogEntry struct {
	ID        LogEntryID       `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Agent     string           `json:"agent"`
	Model     string           `json:"model"`
	Action    types.ActionType `json:"action"`
	Details   map[string]any   `json:"details"`
	Status    types.Status     `json:"status"`
}

// Validate rejects entries that must never reach the log
func (e *LogEntry) Validate() error {
	if e.Agent == "" {
		return &ValidationError{Field: "agent", Reason: "agent name is required"}
	}
	if !e.Action.IsValid() {
		return &ValidationError{Field: "action", Reason: "unknown action " + string(e.Action)}
	}
	if !e.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: "status must be SUCCESS or FAILURE"}
	}
	for _, key := range []string{DetailInputPrompt, DetailOutputResponse} {
		if _, ok := e.Details[key]; !ok {
			return &ValidationError{Field: "details." + key, Reason: "mandatory detail is missing"}
		}
	}
	return nil
}

// Copy returns a deep enough copy for repositories to hand out
func (e *LogEntry) Copy() *LogEntry {
	details := make(map[string]any, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	c := *e
	c.Details = details
	return &c
}

// InputPrompt returns the recorded prompt as text
func (e *LogEntry) InputPrompt() string {
	s, _ := e.Details[DetailInputPrompt].(string)
	return s
}

// OutputResponse returns the recorded response as text
func (e *LogEntry) OutputResponse() string {
	s, _ := e.Details[DetailOutputResponse].(string)
	return s
}
