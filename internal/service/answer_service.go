package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/normhelper/internal/ai"
	"github.com/xxxsen/normhelper/internal/docstore"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

// AnswerService orchestrates direct-mode answering: load the document, build
// the prompt, call the completion provider, hand back the extracted answer.
// Each request runs the steps strictly in sequence and owns no shared state
// beyond the read-only configuration and the answer cache.
type AnswerService struct {
	store    docstore.Store
	provider ai.Provider
	models   []string
	cache    *expirable.LRU[string, string]
}

func NewAnswerService(store docstore.Store, provider ai.Provider, models []string, cacheTTL time.Duration) *AnswerService {
	var cache *expirable.LRU[string, string]
	if cacheTTL > 0 {
		cache = expirable.NewLRU[string, string](4096, nil, cacheTTL)
	}
	return &AnswerService{
		store:    store,
		provider: provider,
		models:   models,
		cache:    cache,
	}
}

type AskInput struct {
	Question   string
	DocumentID string
	Model      string
	History    []ai.Turn
}

func (s *AnswerService) Ask(ctx context.Context, input AskInput) (string, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return "", apperr.Newf(apperr.KindValidation, "question is required")
	}
	documentID := strings.TrimSpace(input.DocumentID)
	if documentID == "" {
		return "", apperr.Newf(apperr.KindValidation, "document_id is required for direct mode")
	}
	models := s.models
	if input.Model != "" {
		models = []string{input.Model}
	}
	logger := logutil.GetLogger(ctx).With(
		zap.String("document_id", documentID),
		zap.Strings("models", models),
	)
	// Low-temperature answers are stable enough to cache; history-carrying
	// conversations are not, their context differs per caller.
	cacheable := s.cache != nil && len(input.History) == 0
	key := answerCacheKey(documentID, models, question)
	if cacheable {
		if cached, ok := s.cache.Get(key); ok {
			logger.Debug("answer served from cache")
			return cached, nil
		}
	}
	doc, err := s.store.Load(ctx, documentID)
	if err != nil {
		logger.Error("load document failed", zap.Error(err))
		return "", err
	}
	messages := ai.BuildAnswerMessages(doc, question, input.History)
	result, err := s.provider.Complete(ctx, models, messages)
	if err != nil {
		logger.Error("completion failed", zap.Error(err))
		return "", err
	}
	logger.Info("question answered",
		zap.Int64("document_bytes", doc.SizeBytes),
		zap.Int("answer_chars", len(result.Text)),
	)
	if cacheable {
		s.cache.Add(key, result.Text)
	}
	return result.Text, nil
}

func (s *AnswerService) ListDocuments(ctx context.Context) ([]string, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func answerCacheKey(documentID string, models []string, question string) string {
	hash := sha256.Sum256([]byte(documentID + "|" + strings.Join(models, ",") + "|" + question))
	return hex.EncodeToString(hash[:])
}
