package config_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func TestGemini_Configure(t *testing.T) {
	t.Run("apikey backend requires a key", func(t *testing.T) {
		cfg := config.NewGeminiForTest(config.BackendAPIKey, "", "gemini-2.5-flash", "", 0)
		_, err := cfg.Configure(t.Context())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, config.ErrMissingAPIKey)).True()
	})

	t.Run("vertex backend requires a project", func(t *testing.T) {
		cfg := config.NewGeminiForTest(config.BackendVertex, "", "gemini-2.5-flash", "", 0)
		_, err := cfg.Configure(t.Context())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, config.ErrMissingProject)).True()
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.NewGeminiForTest("openai", "key", "gpt", "", 0)
		_, err := cfg.Configure(t.Context())
		gt.Bool(t, errors.Is(err, config.ErrInvalidBackend)).True()
	})

	t.Run("apikey gateway talks to the configured endpoint", func(t *testing.T) {
		var gotPath, gotKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.URL.Query().Get("key")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"candidates": []any{
					map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": "pong"}}}},
				},
			})
		}))
		defer srv.Close()

		cfg := config.NewGeminiForTest(config.BackendAPIKey, "secret-key", "test-model", srv.URL, 5*time.Second)
		gw, err := cfg.Configure(t.Context())
		gt.NoError(t, err)
		gt.Value(t, gw.Model()).Equal("test-model")

		resp, err := gw.Ask(t.Context(), "ping")
		gt.NoError(t, err)
		gt.Value(t, resp).Equal("pong")
		gt.Value(t, gotPath).Equal("/v1beta/models/test-model:generateContent")
		gt.Value(t, gotKey).Equal("secret-key")
	})

	t.Run("log attributes never carry the key", func(t *testing.T) {
		cfg := config.NewGeminiForTest(config.BackendAPIKey, "secret-key", "m", "", 0)
		for _, attr := range cfg.LogAttrs() {
			gt.Value(t, attr.Value.String()).NotEqual("secret-key")
		}
	})
}
