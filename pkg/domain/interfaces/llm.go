package interfaces

import "context"

// Gateway turns a prompt into model text. Failures are reported as
// *model.TransportError or *model.APIError.
type Gateway interface {
	Ask(ctx context.Context, prompt string) (string, error)

	// Model returns the identifier recorded in log entries
	Model() string
}
