package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xxxsen/normhelper/internal/config"
	"github.com/xxxsen/normhelper/internal/model"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

type localConfig struct {
	Dir string `json:"dir"`
}

type localStore struct {
	dir      string
	maxBytes int64
}

func init() {
	Register("local", createLocalStore)
}

func createLocalStore(cfg config.DocStoreConfig) (Store, error) {
	conf := &localConfig{}
	if err := decodeConfig(cfg.Data, conf); err != nil {
		return nil, err
	}
	if conf.Dir == "" {
		return nil, fmt.Errorf("local doc store dir is required")
	}
	return &localStore{dir: conf.Dir, maxBytes: cfg.MaxDocumentBytes}, nil
}

func (s *localStore) Load(ctx context.Context, id string) (*model.DocumentContent, error) {
	_ = ctx
	if strings.Contains(id, "/") || strings.Contains(id, "\\") {
		return nil, apperr.Newf(apperr.KindValidation, "invalid document id %q", id)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.KindDocumentNotFound, err)
		}
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	return finalizeContent(id, data, mimeTypeByExtension(id), s.maxBytes)
}

func (s *localStore) List(ctx context.Context) ([]string, error) {
	_ = ctx
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !isCatalogFile(entry.Name()) {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)
	return ids, nil
}
