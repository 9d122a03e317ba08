package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	svcgemini "github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/gemini"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

// Gemini backends
const (
	BackendAPIKey = "apikey"
	BackendVertex = "vertex"
)

// Gemini holds configuration for the LLM gateway
type Gemini struct {
	backend   string
	apiKey    string `masq:"secret"`
	modelName string
	baseURL   string
	timeout   time.Duration
	projectID string
	location  string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-backend",
			Usage:       "Gemini backend (apikey, vertex)",
			Value:       BackendAPIKey,
			Category:    "Gemini",
			Sources:     cli.EnvVars("SWARM_GEMINI_BACKEND"),
			Destination: &g.backend,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key (apikey backend)",
			Category:    "Gemini",
			Sources:     cli.EnvVars("SWARM_GEMINI_API_KEY", "GEMINI_API_KEY"),
			Destination: &g.apiKey,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Value:       svcgemini.DefaultModel,
			Category:    "Gemini",
			Sources:     cli.EnvVars("SWARM_GEMINI_MODEL"),
			Destination: &g.modelName,
		},
		&cli.StringFlag{
			Name:        "gemini-base-url",
			Usage:       "Gemini REST endpoint (apikey backend)",
			Value:       svcgemini.DefaultBaseURL,
			Category:    "Gemini",
			Sources:     cli.EnvVars("SWARM_GEMINI_BASE_URL"),
			Destination: &g.baseURL,
		},
		&cli.DurationFlag{
			Name:        "gemini-timeout",
			Usage:       "Timeout of a single Gemini call",
			Value:       svcgemini.DefaultTimeout,
			Category:    "Gemini",
			Sources:     cli.EnvVars("SWARM_GEMINI_TIMEOUT"),
			Destination: &g.timeout,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID (vertex backend)",
			Category:    "Gemini",
			Sources:     cli.EnvVars("SWARM_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location (vertex backend)",
			Value:       "us-central1",
			Category:    "Gemini",
			Sources:     cli.EnvVars("SWARM_GEMINI_LOCATION"),
			Destination: &g.location,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration. The API
// key is never included.
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("backend", g.backend),
		slog.String("model", g.modelName),
		slog.Duration("timeout", g.timeout),
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.Bool("api_key_set", g.apiKey != ""),
	}
}

// Configure creates the gateway for the selected backend
func (g *Gemini) Configure(ctx context.Context) (interfaces.Gateway, error) {
	switch g.backend {
	case BackendAPIKey, "":
		client, err := g.Client()
		if err != nil {
			return nil, err
		}
		return client, nil

	case BackendVertex:
		if g.projectID == "" {
			return nil, goerr.Wrap(ErrMissingProject, "vertex backend requires --gemini-project")
		}
		client, err := gemini.New(ctx, g.projectID, g.location, gemini.WithModel(g.modelName))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client",
				goerr.V("project_id", g.projectID),
				goerr.V("location", g.location))
		}
		gateway, err := svcgemini.NewVertex(client, g.modelName)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Vertex gateway")
		}
		return gateway, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unknown Gemini backend", goerr.V(BackendKey, g.backend))
	}
}

// Client creates the API key REST client
func (g *Gemini) Client() (*svcgemini.Client, error) {
	if g.apiKey == "" {
		return nil, goerr.Wrap(ErrMissingAPIKey, "set --gemini-api-key or GEMINI_API_KEY")
	}

	opts := []svcgemini.Option{
		svcgemini.WithModel(g.modelName),
	}
	if g.baseURL != "" {
		opts = append(opts, svcgemini.WithBaseURL(g.baseURL))
	}
	if g.timeout > 0 {
		opts = append(opts, svcgemini.WithTimeout(g.timeout))
	}

	client, err := svcgemini.New(g.apiKey, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	return client, nil
}
