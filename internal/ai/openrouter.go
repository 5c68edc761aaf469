package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

type openrouterConfig struct {
	APIKey      string `json:"api_key"`
	BaseURL     string `json:"base_url"`
	HTTPReferer string `json:"http_referer"`
	XTitle      string `json:"x_title"`
	Timeout     int    `json:"timeout"`
}

type openrouterProvider struct {
	apiKey      string
	baseURL     string
	httpReferer string
	xTitle      string
	client      *http.Client
}

type openrouterRequest struct {
	Model       string    `json:"model,omitempty"`
	Models      []string  `json:"models,omitempty"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
}

type openrouterErrorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *openrouterProvider) Name() string {
	return "openrouter"
}

// Complete sends the candidate list upstream; OpenRouter tries the models in
// priority order server-side, so no local retry loop is needed.
func (p *openrouterProvider) Complete(ctx context.Context, models []string, messages []Message) (*CompletionResult, error) {
	if p.apiKey == "" {
		return nil, apperr.Newf(apperr.KindUpstreamUnavailable, "completion api key is not configured")
	}
	if len(models) == 0 {
		return nil, apperr.Newf(apperr.KindValidation, "no candidate models")
	}
	reqBody := openrouterRequest{
		Messages:    messages,
		Stream:      false,
		Temperature: completionTemperature,
	}
	if len(models) == 1 {
		reqBody.Model = models[0]
	} else {
		reqBody.Models = models
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if p.httpReferer != "" {
		req.Header.Set("HTTP-Referer", p.httpReferer)
	}
	if p.xTitle != "" {
		req.Header.Set("X-Title", p.xTitle)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperr.Wrap(apperr.KindUpstreamOverloaded, providerError(resp.Status, body))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperr.Wrap(apperr.KindUpstreamRejected, providerError(resp.Status, body))
	}
	text, err := ExtractText(body)
	if err != nil {
		return nil, err
	}
	return &CompletionResult{Text: text, Raw: body}, nil
}

// providerError keeps the upstream status and message for the server log;
// callers only ever see the classified user message.
func providerError(status string, body []byte) error {
	var parsed openrouterErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return fmt.Errorf("openrouter request failed: %s: %s", status, parsed.Error.Message)
	}
	return fmt.Errorf("openrouter request failed: %s: %s", status, strings.TrimSpace(string(body)))
}

func createOpenRouterFactory(args interface{}) (Provider, error) {
	cfg := &openrouterConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}
	return &openrouterProvider{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     baseURL,
		httpReferer: strings.TrimSpace(cfg.HTTPReferer),
		xTitle:      strings.TrimSpace(cfg.XTitle),
		client:      &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

func init() {
	Register("openrouter", createOpenRouterFactory)
}
