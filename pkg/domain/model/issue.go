package model

import "strings"

// AuditFailureReason is reported when the audit call itself failed
const AuditFailureReason = "Gemini API error during analysis"

// ForcedImprovementIssue replaces a failed audit so the fixer always has an
// instruction to work on
const ForcedImprovementIssue = "Improve overall code quality and readability without changing behavior"

// IssueList is the ordered list of problems reported by the auditor
type IssueList []string

// AuditResult is Ok(issues) or Failed(reason)
type AuditResult = Result[IssueList]

// ParseIssues splits a model response into issues. Leading and trailing
// bullet markers are removed and blank lines dropped.
func ParseIssues(response string) IssueList {
	issues := IssueList{}
	for _, line := range strings.Split(response, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		issue := strings.Trim(line, " -*•\t\r")
		if issue == "" {
			continue
		}
		issues = append(issues, issue)
	}
	return issues
}

// String renders the list the way it is embedded into prompts
func (l IssueList) String() string {
	var b strings.Builder
	for _, issue := range l {
		b.WriteString("- ")
		b.WriteString(issue)
		b.WriteString("\n")
	}
	return b.String()
}
