package docstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/normhelper/internal/config"
	"github.com/xxxsen/normhelper/internal/model"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

func newRemoteStore(t *testing.T, handler http.HandlerFunc, documents []string) Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	data := map[string]interface{}{"base_url": server.URL}
	if documents != nil {
		data["documents"] = documents
	}
	store, err := New(config.DocStoreConfig{Type: "remote", Data: data})
	require.NoError(t, err)
	return store
}

func TestRemoteLoad_TextDocument(t *testing.T) {
	store := newRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/texts/fire-norm.txt", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Paragraph 1: doors open outward."))
	}, nil)

	doc, err := store.Load(context.Background(), "fire-norm.txt")
	require.NoError(t, err)
	require.Equal(t, model.EncodingText, doc.Encoding)
	require.Equal(t, "text/plain", doc.MimeType)
}

func TestRemoteLoad_HTMLErrorPage(t *testing.T) {
	store := newRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>404</html>"))
	}, nil)

	_, err := store.Load(context.Background(), "fire-norm.txt")
	require.True(t, apperr.IsKind(err, apperr.KindInvalidContentType))
}

func TestRemoteLoad_UpstreamNotFound(t *testing.T) {
	store := newRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, nil)

	_, err := store.Load(context.Background(), "missing.txt")
	require.True(t, apperr.IsKind(err, apperr.KindDocumentNotFound))
}

func TestRemoteLoad_UnknownIDRejectedWithoutFetch(t *testing.T) {
	store := newRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the host")
	}, []string{"fire-norm.txt"})

	_, err := store.Load(context.Background(), "other.txt")
	require.True(t, apperr.IsKind(err, apperr.KindDocumentNotFound))
}

func TestRemoteList_ConfiguredCatalog(t *testing.T) {
	store := newRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {}, []string{"a.txt", "b.pdf"})
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "b.pdf"}, ids)
}
