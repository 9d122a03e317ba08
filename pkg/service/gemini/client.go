package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 120 * time.Second

	// maxErrorBody bounds how much of a failed response is kept
	maxErrorBody = 64 * 1024
)

var ErrMissingAPIKey = goerr.New("Gemini API key is required")

// Client is a Gateway speaking the generateContent REST protocol with an
// API key
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.Gateway = &Client{}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithModel sets the model name used in the request path
func WithModel(name string) Option {
	return func(c *Client) {
		c.model = name
	}
}

// WithBaseURL overrides the API endpoint, used by tests
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout bounds every request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Gemini client. apiKey is mandatory.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the model identifier
func (c *Client) Model() string {
	return c.model
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type listModelsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Ask sends prompt as a single user turn and returns the first text part
// of the first candidate
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode Gemini request")
	}

	endpoint := c.endpoint("/v1beta/models/" + c.model + ":generateContent")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to build Gemini request")
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(req)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", goerr.Wrap(&model.APIError{StatusCode: http.StatusOK, Body: "undecodable response: " + err.Error()},
			"invalid Gemini response", goerr.V("model", c.model))
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", goerr.Wrap(&model.APIError{StatusCode: http.StatusOK, Body: truncate(string(data))},
			"Gemini response has no candidate text", goerr.V("model", c.model))
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// ListModels returns the names of models available to the API key
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/v1beta/models"), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build Gemini request")
	}

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp listModelsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, goerr.Wrap(&model.APIError{StatusCode: http.StatusOK, Body: "undecodable response: " + err.Error()},
			"invalid Gemini model list")
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path + "?key=" + url.QueryEscape(c.apiKey)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(&model.TransportError{Err: c.redact(err)}, "failed to reach Gemini API", goerr.V("model", c.model))
	}
	defer safe.Close(req.Context(), resp.Body)

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, goerr.Wrap(&model.APIError{StatusCode: resp.StatusCode, Body: string(raw)},
			"Gemini API returned an error", goerr.V(model.StatusCodeKey, resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(&model.TransportError{Err: c.redact(err)}, "failed to read Gemini response")
	}
	return data, nil
}

// redact strips the API key from URLs embedded in transport errors
func (c *Client) redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = strings.ReplaceAll(uerr.URL, url.QueryEscape(c.apiKey), "REDACTED")
	}
	return err
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
