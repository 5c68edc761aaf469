package job

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/normhelper/internal/docstore"
)

// CatalogCheckJob periodically re-lists the document store so a remote or
// bucket-backed catalog going empty shows up in the logs before the next
// question fails against it.
type CatalogCheckJob struct {
	store docstore.Store
}

func NewCatalogCheckJob(store docstore.Store) *CatalogCheckJob {
	return &CatalogCheckJob{store: store}
}

func (j *CatalogCheckJob) Name() string {
	return "catalog_check"
}

func (j *CatalogCheckJob) Run(ctx context.Context) error {
	ids, err := j.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	logger := logutil.GetLogger(ctx).With(zap.Int("documents", len(ids)))
	if len(ids) == 0 {
		logger.Warn("document catalog is empty")
		return nil
	}
	logger.Info("document catalog checked")
	return nil
}
