package gemini

import (
	"context"
	"strings"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Vertex is a Gateway backed by a gollem LLM client, used with Vertex AI
// project credentials instead of an API key
type Vertex struct {
	client gollem.LLMClient
	model  string
}

var _ interfaces.Gateway = &Vertex{}

// NewVertex wraps an LLM client. modelName is only used for log entries.
func NewVertex(client gollem.LLMClient, modelName string) (*Vertex, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Vertex{client: client, model: modelName}, nil
}

// Model returns the model identifier
func (v *Vertex) Model() string {
	return v.model
}

// Ask runs prompt in a fresh session and returns the generated text
func (v *Vertex) Ask(ctx context.Context, prompt string) (string, error) {
	session, err := v.client.NewSession(ctx)
	if err != nil {
		return "", goerr.Wrap(&model.TransportError{Err: err}, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(&model.TransportError{Err: err}, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(&model.APIError{StatusCode: 200, Body: "empty response"}, "LLM returned no text")
	}
	return strings.Join(resp.Texts, ""), nil
}
