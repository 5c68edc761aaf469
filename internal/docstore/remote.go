package docstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xxxsen/normhelper/internal/config"
	"github.com/xxxsen/normhelper/internal/model"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

type remoteConfig struct {
	BaseURL    string   `json:"base_url"`
	PathPrefix string   `json:"path_prefix"`
	Documents  []string `json:"documents"`
}

// remoteStore fetches documents over HTTP from a static file host. The
// catalog is the configured document list; content-type checks guard against
// the host answering with an HTML error page instead of the document.
type remoteStore struct {
	baseURL    string
	pathPrefix string
	documents  []string
	maxBytes   int64
	client     *http.Client
}

func init() {
	Register("remote", createRemoteStore)
}

func createRemoteStore(cfg config.DocStoreConfig) (Store, error) {
	conf := &remoteConfig{}
	if err := decodeConfig(cfg.Data, conf); err != nil {
		return nil, err
	}
	if conf.BaseURL == "" {
		return nil, fmt.Errorf("remote doc store base_url is required")
	}
	prefix := conf.PathPrefix
	if prefix == "" {
		prefix = "/texts"
	}
	return &remoteStore{
		baseURL:    strings.TrimRight(conf.BaseURL, "/"),
		pathPrefix: "/" + strings.Trim(prefix, "/"),
		documents:  conf.Documents,
		maxBytes:   cfg.MaxDocumentBytes,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *remoteStore) Load(ctx context.Context, id string) (*model.DocumentContent, error) {
	if len(s.documents) > 0 && !s.knownDocument(id) {
		return nil, apperr.New(apperr.KindDocumentNotFound)
	}
	target := s.baseURL + s.pathPrefix + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDocumentNotFound, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperr.Wrap(apperr.KindDocumentNotFound,
			fmt.Errorf("fetch %s: %s", target, resp.Status))
	}
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		// The host served an error page in place of the document.
		return nil, apperr.Newf(apperr.KindInvalidContentType, "document %q resolved to an html page", id)
	}
	limit := s.maxBytes
	if limit <= 0 {
		limit = config.DefaultMaxDocumentBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	if int64(len(data)) > limit {
		return nil, apperr.Newf(apperr.KindDocumentTooLarge, "document %q exceeds the %d byte limit", id, limit)
	}
	declared := contentType
	if declared == "" {
		declared = mimeTypeByExtension(id)
	}
	return finalizeContent(id, data, declared, s.maxBytes)
}

func (s *remoteStore) List(ctx context.Context) ([]string, error) {
	_ = ctx
	out := make([]string, len(s.documents))
	copy(out, s.documents)
	return out, nil
}

func (s *remoteStore) knownDocument(id string) bool {
	for _, name := range s.documents {
		if name == id {
			return true
		}
	}
	return false
}
