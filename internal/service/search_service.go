package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/normhelper/internal/model"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
	"github.com/xxxsen/normhelper/internal/retrieval"
)

// SearchService orchestrates retrieval-mode answering: query the retrieval
// service, then format the scored chunks. Formatting never fails the request;
// it degrades to the local renderer instead.
type SearchService struct {
	retriever *retrieval.Client
	formatter *CitationFormatter
}

func NewSearchService(retriever *retrieval.Client, formatter *CitationFormatter) *SearchService {
	return &SearchService{retriever: retriever, formatter: formatter}
}

type SearchInput struct {
	Query                string
	Rerank               *bool
	TopK                 int
	MaxChunksPerDocument int
	Filter               map[string]interface{}
}

type SearchResult struct {
	Chunks    []model.RetrievedChunk
	Formatted string
}

func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, apperr.Newf(apperr.KindValidation, "query is required")
	}
	chunks, err := s.retriever.Retrieve(ctx, query, retrieval.Options{
		Rerank:               input.Rerank,
		TopK:                 input.TopK,
		MaxChunksPerDocument: input.MaxChunksPerDocument,
		Filter:               input.Filter,
	})
	if err != nil {
		logutil.GetLogger(ctx).Error("retrieval failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	logutil.GetLogger(ctx).Info("retrieval completed",
		zap.String("query", query),
		zap.Int("chunks", len(chunks)),
	)
	if chunks == nil {
		chunks = []model.RetrievedChunk{}
	}
	return &SearchResult{
		Chunks:    chunks,
		Formatted: s.formatter.Format(ctx, chunks),
	}, nil
}
