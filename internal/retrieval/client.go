package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/normhelper/internal/model"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

const (
	defaultBaseURL = "https://api.ragie.ai"
	minTopK        = 1
	maxTopK        = 100
)

// Options are the tunable retrieval parameters. Zero values fall back to the
// client defaults (rerank true, topK 8, two chunks per document).
type Options struct {
	Rerank               *bool
	TopK                 int
	MaxChunksPerDocument int
	Filter               map[string]interface{}
}

type Client struct {
	apiKey               string
	baseURL              string
	topK                 int
	maxChunksPerDocument int
	rerank               bool
	client               *http.Client
}

type ClientConfig struct {
	APIKey               string
	BaseURL              string
	TopK                 int
	MaxChunksPerDocument int
	Rerank               *bool
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	topK := cfg.TopK
	if topK == 0 {
		topK = 8
	}
	maxChunks := cfg.MaxChunksPerDocument
	if maxChunks == 0 {
		maxChunks = 2
	}
	rerank := true
	if cfg.Rerank != nil {
		rerank = *cfg.Rerank
	}
	return &Client{
		apiKey:               strings.TrimSpace(cfg.APIKey),
		baseURL:              baseURL,
		topK:                 topK,
		maxChunksPerDocument: maxChunks,
		rerank:               rerank,
		client:               &http.Client{Timeout: 60 * time.Second},
	}
}

type retrievalRequest struct {
	Query                string                 `json:"query"`
	TopK                 int                    `json:"top_k"`
	Rerank               bool                   `json:"rerank"`
	MaxChunksPerDocument int                    `json:"max_chunks_per_document"`
	Filter               map[string]interface{} `json:"filter,omitempty"`
}

type retrievalResponse struct {
	ScoredChunks *[]scoredChunk `json:"scored_chunks"`
}

type scoredChunk struct {
	Text             string         `json:"text"`
	Score            float64        `json:"score"`
	DocumentID       string         `json:"document_id"`
	DocumentMetadata *chunkMetadata `json:"document_metadata"`
}

type chunkMetadata struct {
	DocumentName       string `json:"document_name"`
	DocumentType       string `json:"document_type"`
	DocumentSource     string `json:"document_source"`
	DocumentUploadedAt string `json:"document_uploaded_at"`
}

type retrievalErrorBody struct {
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

// Retrieve runs a semantic search and normalizes the scored chunks. The
// service returns them sorted by descending score; that order is kept as is.
// An out-of-range topK is rejected before any network call is spent on it.
func (c *Client) Retrieve(ctx context.Context, query string, opts Options) ([]model.RetrievedChunk, error) {
	if c.apiKey == "" {
		return nil, apperr.Newf(apperr.KindRetrievalRejected, "retrieval api key is not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Newf(apperr.KindValidation, "query is required")
	}
	topK := opts.TopK
	if topK == 0 {
		topK = c.topK
	}
	if topK < minTopK || topK > maxTopK {
		return nil, apperr.Newf(apperr.KindInvalidParameter, "top_k must be within [%d,%d]", minTopK, maxTopK)
	}
	maxChunks := opts.MaxChunksPerDocument
	if maxChunks == 0 {
		maxChunks = c.maxChunksPerDocument
	}
	rerank := c.rerank
	if opts.Rerank != nil {
		rerank = *opts.Rerank
	}
	reqBody := retrievalRequest{
		Query:                query,
		TopK:                 topK,
		Rerank:               rerank,
		MaxChunksPerDocument: maxChunks,
		Filter:               opts.Filter,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/retrievals", bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRetrievalRejected, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRetrievalRejected, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperr.Wrap(apperr.KindRetrievalRejected, upstreamDetail(resp.Status, body))
	}
	var parsed retrievalResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperr.Wrap(apperr.KindRetrievalMalformed, err)
	}
	if parsed.ScoredChunks == nil {
		return nil, apperr.Newf(apperr.KindRetrievalMalformed, "response missing scored_chunks array")
	}
	chunks := make([]model.RetrievedChunk, 0, len(*parsed.ScoredChunks))
	for _, item := range *parsed.ScoredChunks {
		meta := item.DocumentMetadata
		if meta == nil {
			meta = &chunkMetadata{}
		}
		chunks = append(chunks, model.RetrievedChunk{
			Text:       item.Text,
			Score:      item.Score,
			DocumentID: item.DocumentID,
			Metadata: model.ChunkMetadata{
				Name:       valueOr(meta.DocumentName, "Unknown"),
				Type:       valueOr(meta.DocumentType, "Unknown"),
				SourceURL:  meta.DocumentSource,
				UploadedAt: meta.DocumentUploadedAt,
			},
		})
	}
	return chunks, nil
}

func upstreamDetail(status string, body []byte) error {
	var parsed retrievalErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			return fmt.Errorf("retrieval request failed: %s: %s", status, parsed.Detail)
		}
		if parsed.Title != "" {
			return fmt.Errorf("retrieval request failed: %s: %s", status, parsed.Title)
		}
	}
	return fmt.Errorf("retrieval request failed: %s: %s", status, strings.TrimSpace(string(body)))
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
