// Package codeblock normalizes model responses that may wrap code in
// markdown fences.
package codeblock

import "strings"

const fence = "```"

// Extract unwraps a response that starts with a fence line. The info string
// of the opening fence (for example "python") is dropped and the body runs
// up to the last line consisting only of a fence, so fenced examples inside
// the code survive. A missing closing fence keeps everything after the
// opening line. Any other response is returned trimmed and otherwise
// unchanged.
func Extract(response string) string {
	text := strings.TrimSpace(response)
	if !strings.HasPrefix(text, fence) {
		return text
	}

	nl := strings.Index(text, "\n")
	if nl == -1 {
		return strings.TrimSpace(strings.Trim(text, "`"))
	}

	lines := strings.Split(text[nl+1:], "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == fence {
			lines = lines[:i]
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
