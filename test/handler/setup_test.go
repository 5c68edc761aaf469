package handler_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/normhelper/internal/ai"
	"github.com/xxxsen/normhelper/internal/config"
	"github.com/xxxsen/normhelper/internal/docstore"
	"github.com/xxxsen/normhelper/internal/handler"
	"github.com/xxxsen/normhelper/internal/middleware"
	"github.com/xxxsen/normhelper/internal/retrieval"
	"github.com/xxxsen/normhelper/internal/service"
)

// upstreams are the fake completion and retrieval services behind the router.
// Tests swap the response bodies per scenario; counters expose call volume.
type upstreams struct {
	completionBody   string
	completionStatus int
	retrievalBody    string
	retrievalStatus  int
	completionCalls  int
	retrievalCalls   int
}

func setupRouter(t *testing.T) (http.Handler, *upstreams) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	up := &upstreams{
		completionBody:   `{"choices":[{"message":{"content":"default answer"}}]}`,
		completionStatus: http.StatusOK,
		retrievalBody:    `{"scored_chunks":[]}`,
		retrievalStatus:  http.StatusOK,
	}

	completionSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up.completionCalls++
		w.WriteHeader(up.completionStatus)
		_, _ = w.Write([]byte(up.completionBody))
	}))
	t.Cleanup(completionSrv.Close)

	retrievalSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up.retrievalCalls++
		w.WriteHeader(up.retrievalStatus)
		_, _ = w.Write([]byte(up.retrievalBody))
	}))
	t.Cleanup(retrievalSrv.Close)

	docDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "fire-norm.txt"),
		[]byte("Paragraph 1: doors open outward."), 0o644))

	store, err := docstore.New(config.DocStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": docDir},
	})
	require.NoError(t, err)

	provider, err := ai.NewProvider("openrouter", map[string]interface{}{
		"api_key":  "test-key",
		"base_url": completionSrv.URL,
		"timeout":  5,
	})
	require.NoError(t, err)

	retriever := retrieval.NewClient(retrieval.ClientConfig{
		APIKey:  "test-key",
		BaseURL: retrievalSrv.URL,
	})

	formatter := service.NewCitationFormatter(provider, []string{"format-model"})
	answers := service.NewAnswerService(store, provider, []string{"answer-model"}, time.Minute)
	search := service.NewSearchService(retriever, formatter)

	deps := handler.RouterDeps{
		Ask:     handler.NewAskHandler(answers, search),
		Search:  handler.NewSearchHandler(search),
		Catalog: handler.NewCatalogHandler(answers),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
			middleware.SecureHeaders(),
		),
	)
	require.NoError(t, err)

	return engine, up
}
