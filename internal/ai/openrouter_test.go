package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

func newTestOpenRouter(t *testing.T, handler http.HandlerFunc) (*openrouterProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	provider := &openrouterProvider{
		apiKey:      "test-key",
		baseURL:     server.URL,
		httpReferer: "https://normhelper.example",
		xTitle:      "NormHelper",
		client:      &http.Client{Timeout: 5 * time.Second},
	}
	return provider, server
}

func TestOpenRouterComplete_Success(t *testing.T) {
	var captured openrouterRequest
	provider, _ := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "https://normhelper.example", r.Header.Get("HTTP-Referer"))
		require.Equal(t, "NormHelper", r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"answer text"}}]}`))
	})
	result, err := provider.Complete(context.Background(), []string{"google/gemini-2.5-flash"},
		[]Message{TextMessage("user", "q")})
	require.NoError(t, err)
	require.Equal(t, "answer text", result.Text)
	require.NotEmpty(t, result.Raw)
	require.Equal(t, "google/gemini-2.5-flash", captured.Model)
	require.Empty(t, captured.Models)
	require.False(t, captured.Stream)
	require.InDelta(t, 0.1, captured.Temperature, 1e-9)
}

func TestOpenRouterComplete_MultiModelFallbackList(t *testing.T) {
	var captured openrouterRequest
	provider, _ := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})
	models := []string{"google/gemini-2.5-flash", "openai/gpt-4o-mini"}
	_, err := provider.Complete(context.Background(), models, []Message{TextMessage("user", "q")})
	require.NoError(t, err)
	require.Empty(t, captured.Model)
	require.Equal(t, models, captured.Models)
}

func TestOpenRouterComplete_RateLimited(t *testing.T) {
	provider, _ := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	})
	_, err := provider.Complete(context.Background(), []string{"m"}, []Message{TextMessage("user", "q")})
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindUpstreamOverloaded))
	classified := apperr.Classify(err)
	require.True(t, classified.Retryable())
	require.NotEqual(t, apperr.New(apperr.KindUpstreamRejected).UserMessage, classified.UserMessage)
}

func TestOpenRouterComplete_UpstreamRejected(t *testing.T) {
	provider, _ := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	})
	_, err := provider.Complete(context.Background(), []string{"m"}, []Message{TextMessage("user", "q")})
	require.True(t, apperr.IsKind(err, apperr.KindUpstreamRejected))
	require.Contains(t, err.Error(), "invalid api key")
}

func TestOpenRouterComplete_MalformedBody(t *testing.T) {
	provider, _ := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": not-json`))
	})
	_, err := provider.Complete(context.Background(), []string{"m"}, []Message{TextMessage("user", "q")})
	require.True(t, apperr.IsKind(err, apperr.KindUpstreamMalformed))
}

func TestOpenRouterComplete_NetworkFailure(t *testing.T) {
	provider, server := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()
	_, err := provider.Complete(context.Background(), []string{"m"}, []Message{TextMessage("user", "q")})
	require.True(t, apperr.IsKind(err, apperr.KindUpstreamUnavailable))
}

func TestOpenRouterComplete_NoModels(t *testing.T) {
	provider, _ := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the server")
	})
	_, err := provider.Complete(context.Background(), nil, []Message{TextMessage("user", "q")})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestNewProvider_UnknownName(t *testing.T) {
	_, err := NewProvider("no-such-provider", map[string]interface{}{})
	require.Error(t, err)
}

func TestNewProvider_OpenRouterRegistered(t *testing.T) {
	provider, err := NewProvider("OpenRouter", map[string]interface{}{"api_key": "k"})
	require.NoError(t, err)
	require.Equal(t, "openrouter", provider.Name())
}
