package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

const (
	DefaultMaxDocumentBytes     = 25 * 1024 * 1024
	DefaultTopK                 = 8
	DefaultMaxChunksPerDocument = 2
)

type Config struct {
	Port            int              `json:"port"`
	SiteURL         string           `json:"site_url"`
	AppTitle        string           `json:"app_title"`
	LogConfig       logger.LogConfig `json:"log_config"`
	Completion      CompletionConfig `json:"completion"`
	Retrieval       RetrievalConfig  `json:"retrieval"`
	DocStore        DocStoreConfig   `json:"doc_store"`
	CORSAllowlist   []string         `json:"cors_allowlist"`
	AnswerCacheTTL  int              `json:"answer_cache_ttl_minutes"`
	CatalogCronSpec string           `json:"catalog_cron_spec"`
}

type CompletionConfig struct {
	Provider     string      `json:"provider"`
	Models       []string    `json:"models"`
	FormatModels []string    `json:"format_models"`
	Timeout      int         `json:"timeout"`
	Data         interface{} `json:"data"`
}

type RetrievalConfig struct {
	APIKey               string `json:"api_key"`
	BaseURL              string `json:"base_url"`
	TopK                 int    `json:"top_k"`
	MaxChunksPerDocument int    `json:"max_chunks_per_document"`
	Rerank               *bool  `json:"rerank"`
}

type DocStoreConfig struct {
	Type             string      `json:"type"`
	MaxDocumentBytes int64       `json:"max_document_bytes"`
	Data             interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Completion.Provider == "" {
		cfg.Completion.Provider = "openrouter"
	}
	if len(cfg.Completion.Models) == 0 {
		return nil, fmt.Errorf("completion.models is required")
	}
	if len(cfg.Completion.FormatModels) == 0 {
		cfg.Completion.FormatModels = cfg.Completion.Models
	}
	if cfg.Completion.Timeout == 0 {
		cfg.Completion.Timeout = 120
	}
	if cfg.Retrieval.BaseURL == "" {
		cfg.Retrieval.BaseURL = "https://api.ragie.ai"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = DefaultTopK
	}
	if cfg.Retrieval.TopK < 1 || cfg.Retrieval.TopK > 100 {
		return nil, fmt.Errorf("retrieval.top_k must be within [1,100]")
	}
	if cfg.Retrieval.MaxChunksPerDocument == 0 {
		cfg.Retrieval.MaxChunksPerDocument = DefaultMaxChunksPerDocument
	}
	if cfg.DocStore.Type == "" {
		cfg.DocStore.Type = "local"
	}
	if cfg.DocStore.MaxDocumentBytes == 0 {
		cfg.DocStore.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if cfg.AnswerCacheTTL == 0 {
		cfg.AnswerCacheTTL = 120
	}
	return &cfg, nil
}
