package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// DefaultMaxLength is the prompt size above which prompts are trimmed
const DefaultMaxLength = 5000

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n\s*\n`)
	anyWhitespace   = regexp.MustCompile(`\s+`)
)

// Optimize trims prompt, collapses runs of spaces and tabs, removes blank
// lines and truncates to maxLength bytes at a word boundary
func Optimize(prompt string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	p := strings.TrimSpace(prompt)
	p = horizontalSpace.ReplaceAllString(p, " ")
	p = blankLines.ReplaceAllString(p, "\n")

	if len(p) > maxLength {
		p = p[:maxLength]
		if i := strings.LastIndex(p, " "); i > 0 {
			p = p[:i]
		}
	}
	return p
}

// Hash returns the hex encoded SHA-256 of prompt
func Hash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Quality is the outcome of ValidateQuality
type Quality struct {
	Valid  bool            `json:"valid"`
	Checks map[string]bool `json:"checks"`
	Length int             `json:"length"`
}

// Names of the individual quality checks
const (
	CheckInstruction       = "has_instruction"
	CheckContext           = "has_context"
	CheckAgentRole         = "has_agent_role"
	CheckOutputFormat      = "has_output_format"
	CheckAntiHallucination = "has_anti_hallucination"
	CheckLength            = "not_too_long"
)

// ValidateQuality runs heuristic checks on a system prompt
func ValidateQuality(prompt string, maxLength int) Quality {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	text := anyWhitespace.ReplaceAllString(strings.ToLower(prompt), " ")

	checks := map[string]bool{
		CheckInstruction:       containsAny(text, "instruction", "mission", "objective", "task"),
		CheckContext:           len(strings.Fields(text)) > 20,
		CheckAgentRole:         containsAny(text, "auditor", "fixer", "judge", "expert"),
		CheckOutputFormat:      containsAny(text, "json", "report", "code", "summary"),
		CheckAntiHallucination: containsAny(text, "avoid hallucination", "do not hallucinate", "focus only"),
		CheckLength:            len(prompt) <= maxLength,
	}

	valid := true
	for _, ok := range checks {
		valid = valid && ok
	}
	return Quality{Valid: valid, Checks: checks, Length: len(prompt)}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
