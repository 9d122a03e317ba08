package prompt

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed templates/*.md
var templateFS embed.FS

var tasks = template.Must(template.ParseFS(templateFS, "templates/audit.md", "templates/fix.md", "templates/tests.md"))

// Builder renders agent prompts. When system prompts are enabled the
// role's system prompt is prepended to every task prompt.
type Builder struct {
	library *Library
	system  bool
}

// BuilderOption is a functional option for Builder configuration
type BuilderOption func(*Builder)

// WithLibrary lets "<role>_system" prompts saved in lib override the
// embedded system prompts
func WithLibrary(lib *Library) BuilderOption {
	return func(b *Builder) {
		b.library = lib
	}
}

// WithSystemPrompts toggles the system prompt prefix
func WithSystemPrompts(enabled bool) BuilderOption {
	return func(b *Builder) {
		b.system = enabled
	}
}

// NewBuilder creates a Builder. System prompts are off by default.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type auditData struct {
	Content string
}

type fixData struct {
	Content  string
	Issues   model.IssueList
	Feedback string
}

type testsData struct {
	Content string
	Module  string
}

// Audit renders the auditor prompt for a file's content
func (b *Builder) Audit(content string) (string, error) {
	return b.render(types.RoleAuditor, "audit.md", auditData{Content: content})
}

// Fix renders the fixer prompt. feedback may be empty.
func (b *Builder) Fix(content string, issues model.IssueList, feedback string) (string, error) {
	return b.render(types.RoleFixer, "fix.md", fixData{Content: content, Issues: issues, Feedback: feedback})
}

// Tests renders the test generation prompt importing from module
func (b *Builder) Tests(content, module string) (string, error) {
	return b.render(types.RoleJudge, "tests.md", testsData{Content: content, Module: module})
}

// SystemPrompt returns the system prompt of role, preferring a library
// override named "<role>_system"
func (b *Builder) SystemPrompt(role types.AgentRole) (string, error) {
	if b.library != nil {
		if p, err := b.library.Load(string(role) + "_system"); err == nil {
			return p, nil
		}
	}
	return DefaultSystemPrompt(role)
}

// DefaultSystemPrompt returns the embedded system prompt of role
func DefaultSystemPrompt(role types.AgentRole) (string, error) {
	if !role.IsValid() {
		return "", goerr.New("unknown agent role", goerr.V("role", role))
	}
	data, err := templateFS.ReadFile("templates/" + string(role) + "_system.md")
	if err != nil {
		return "", goerr.Wrap(err, "failed to read system prompt", goerr.V("role", role))
	}
	return string(data), nil
}

func (b *Builder) render(role types.AgentRole, name string, data any) (string, error) {
	var buf bytes.Buffer
	if b.system {
		sys, err := b.SystemPrompt(role)
		if err != nil {
			return "", err
		}
		buf.WriteString(sys)
		buf.WriteString("\n")
	}
	if err := tasks.ExecuteTemplate(&buf, name, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", name))
	}
	return buf.String(), nil
}
