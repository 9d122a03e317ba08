package usecase

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/fatih/color"
)

// Progress prints one human readable line per state transition
type Progress struct {
	mu    sync.Mutex
	w     io.Writer
	tag   *color.Color
	plain *color.Color
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
}

// NewProgress writes status lines to w. Colors are disabled when noColor is
// set or color.NoColor reports a non-terminal output.
func NewProgress(w io.Writer, noColor bool) *Progress {
	p := &Progress{
		w:     w,
		tag:   color.New(color.FgCyan),
		plain: color.New(color.FgWhite),
		ok:    color.New(color.FgGreen, color.Bold),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
	}
	if noColor || color.NoColor {
		for _, c := range []*color.Color{p.tag, p.plain, p.ok, p.warn, p.fail} {
			c.DisableColor()
		}
	}
	return p
}

func (p *Progress) printf(c *color.Color, state types.State, path, format string, args ...any) {
	if p == nil || p.w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(p.w, "%s %s %s\n", p.tag.Sprintf("[%s]", state), filepath.Base(path), c.Sprint(msg))
}

// Step prints a neutral transition line
func (p *Progress) Step(state types.State, path, format string, args ...any) {
	if p == nil {
		return
	}
	p.printf(p.plain, state, path, format, args...)
}

// Warn prints a transition that moved away from the happy path
func (p *Progress) Warn(state types.State, path, format string, args ...any) {
	if p == nil {
		return
	}
	p.printf(p.warn, state, path, format, args...)
}

// Outcome prints the final line of a file. It always carries the before
// and after scores and the test verdict.
func (p *Progress) Outcome(r *model.FileReport) {
	if p == nil {
		return
	}
	c := p.ok
	if r.Outcome == types.OutcomeFailed {
		c = p.fail
	}
	verdict := "FAIL"
	if r.Passed {
		verdict = "PASS"
	}
	p.printf(c, types.StateDone, r.Path, "%s before=%.2f after=%.2f improvement=%+.2f tests=%s",
		r.Outcome, r.ScoreBefore, r.ScoreFinal, r.Improvement, verdict)
}

// Summary prints the batch totals
func (p *Progress) Summary(b *model.BatchReport) {
	if p == nil || p.w == nil {
		return
	}
	c := p.ok
	if !b.Succeeded() {
		c = p.fail
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, c.Sprintf("Mission complete: %d files, %d success, %d failed, %d skipped, %d already good, %d errors (%s)",
		len(b.Files),
		b.Count(types.OutcomeSuccess),
		b.Count(types.OutcomeFailed),
		b.Count(types.OutcomeSkipped),
		b.Count(types.OutcomeAlreadyGood),
		len(b.Errors),
		b.Elapsed.Round(time.Millisecond),
	))
}
