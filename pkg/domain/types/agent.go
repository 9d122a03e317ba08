package types

import "github.com/m-mizutani/goerr/v2"

// AgentRole identifies one of the LLM backed agents
type AgentRole string

const (
	RoleAuditor AgentRole = "auditor"
	RoleFixer   AgentRole = "fixer"
	RoleJudge   AgentRole = "judge"
)

// AllAgentRoles returns all agent roles
func AllAgentRoles() []AgentRole {
	return []AgentRole{RoleAuditor, RoleFixer, RoleJudge}
}

// IsValid checks if the role is known
func (r AgentRole) IsValid() bool {
	switch r {
	case RoleAuditor, RoleFixer, RoleJudge:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r AgentRole) String() string {
	return string(r)
}

// AgentName is the name written to the "agent" field of log entries
func (r AgentRole) AgentName() string {
	switch r {
	case RoleAuditor:
		return "AuditorAgent"
	case RoleFixer:
		return "FixerAgent"
	case RoleJudge:
		return "JudgeAgent"
	default:
		return "UnknownAgent"
	}
}

// ParseAgentRole parses a string into an AgentRole
func ParseAgentRole(s string) (AgentRole, error) {
	r := AgentRole(s)
	if !r.IsValid() {
		return "", goerr.New("invalid agent role", goerr.V("role", s))
	}
	return r, nil
}
