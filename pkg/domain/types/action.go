package types

import "github.com/m-mizutani/goerr/v2"

// ActionType classifies an agent interaction in the experiment log
type ActionType string

const (
	ActionAnalysis   ActionType = "analysis"
	ActionGeneration ActionType = "generation"
	ActionDebug      ActionType = "debug"
	ActionFix        ActionType = "fix"
)

// AllActionTypes returns all valid action types
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionAnalysis,
		ActionGeneration,
		ActionDebug,
		ActionFix,
	}
}

// IsValid checks if the action type is valid
func (a ActionType) IsValid() bool {
	switch a {
	case ActionAnalysis,
		ActionGeneration,
		ActionDebug,
		ActionFix:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action type
func (a ActionType) String() string {
	return string(a)
}

// ParseActionType parses a string into an ActionType
func ParseActionType(s string) (ActionType, error) {
	a := ActionType(s)
	if !a.IsValid() {
		return "", goerr.New("invalid action type", goerr.V("action", s))
	}
	return a, nil
}
