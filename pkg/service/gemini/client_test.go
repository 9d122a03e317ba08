package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/gemini"
	"github.com/m-mizutani/gt"
)

const testKey = "test-key-123"

func newFakeServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string, opts ...gemini.Option) *gemini.Client {
	t.Helper()
	opts = append([]gemini.Option{gemini.WithBaseURL(baseURL)}, opts...)
	c, err := gemini.New(testKey, opts...)
	gt.NoError(t, err).Required()
	return c
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := gemini.New("")
	gt.Error(t, err).Is(gemini.ErrMissingAPIKey)
}

func TestClient_Ask(t *testing.T) {
	t.Run("sends the wire contract and reads the first candidate", func(t *testing.T) {
		var gotBody map[string]any
		srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.Method).Equal(http.MethodPost)
			gt.Value(t, r.URL.Path).Equal("/v1beta/models/gemini-2.5-flash:generateContent")
			gt.Value(t, r.URL.Query().Get("key")).Equal(testKey)
			gt.Value(t, r.Header.Get("Content-Type")).Equal("application/json")

			raw, err := io.ReadAll(r.Body)
			gt.NoError(t, err)
			gt.NoError(t, json.Unmarshal(raw, &gotBody))

			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"first"},{"text":"second"}]}},{"content":{"parts":[{"text":"other"}]}}]}`))
		})

		c := newClient(t, srv.URL)
		text, err := c.Ask(context.Background(), "list the bugs")
		gt.NoError(t, err).Required()
		gt.Value(t, text).Equal("first")

		contents := gotBody["contents"].([]any)
		gt.A(t, contents).Length(1)
		parts := contents[0].(map[string]any)["parts"].([]any)
		gt.Value(t, parts[0].(map[string]any)["text"]).Equal("list the bugs")
	})

	t.Run("custom model", func(t *testing.T) {
		srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.URL.Path).Equal("/v1beta/models/gemini-1.5-pro:generateContent")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
		})

		c := newClient(t, srv.URL, gemini.WithModel("gemini-1.5-pro"))
		gt.Value(t, c.Model()).Equal("gemini-1.5-pro")
		_, err := c.Ask(context.Background(), "hi")
		gt.NoError(t, err)
	})

	t.Run("non 200 is an APIError", func(t *testing.T) {
		srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
		})

		_, err := newClient(t, srv.URL).Ask(context.Background(), "hi")
		var apiErr *model.APIError
		gt.B(t, errors.As(err, &apiErr)).True()
		gt.Value(t, apiErr.StatusCode).Equal(http.StatusTooManyRequests)
		gt.String(t, apiErr.Body).Contains("quota exceeded")
	})

	t.Run("missing candidates is an APIError", func(t *testing.T) {
		srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		})

		_, err := newClient(t, srv.URL).Ask(context.Background(), "hi")
		var apiErr *model.APIError
		gt.B(t, errors.As(err, &apiErr)).True()
	})

	t.Run("broken JSON is an APIError", func(t *testing.T) {
		srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := newClient(t, srv.URL).Ask(context.Background(), "hi")
		var apiErr *model.APIError
		gt.B(t, errors.As(err, &apiErr)).True()
	})

	t.Run("unreachable server is a TransportError without the key", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := newClient(t, srv.URL).Ask(context.Background(), "hi")
		var tErr *model.TransportError
		gt.B(t, errors.As(err, &tErr)).True()
		gt.B(t, strings.Contains(err.Error(), testKey)).False()
	})

	t.Run("timeout is a TransportError", func(t *testing.T) {
		srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		})

		_, err := newClient(t, srv.URL, gemini.WithTimeout(50*time.Millisecond)).Ask(context.Background(), "hi")
		var tErr *model.TransportError
		gt.B(t, errors.As(err, &tErr)).True()
	})
}

func TestClient_ListModels(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodGet)
		gt.Value(t, r.URL.Path).Equal("/v1beta/models")
		_, _ = w.Write([]byte(`{"models":[{"name":"models/gemini-2.5-flash"},{"name":"models/gemini-2.5-pro"}]}`))
	})

	names, err := newClient(t, srv.URL).ListModels(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, names).Equal([]string{"gemini-2.5-flash", "gemini-2.5-pro"})
}

func TestClient_Live(t *testing.T) {
	key := os.Getenv("TEST_GEMINI_API_KEY")
	if key == "" {
		t.Skip("TEST_GEMINI_API_KEY not set")
	}

	c, err := gemini.New(key)
	gt.NoError(t, err).Required()

	text, err := c.Ask(context.Background(), "Reply with the single word: pong")
	gt.NoError(t, err).Required()
	gt.String(t, text).NotEqual("")
}
