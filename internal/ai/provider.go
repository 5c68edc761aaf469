package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// completionTemperature biases answers toward deterministic, citation
// faithful output. It is a policy constant, not user configurable.
const completionTemperature = 0.1

type CacheControl struct {
	Type string `json:"type"`
}

type FileData struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type ContentPart struct {
	Type         string        `json:"type"`
	Text         string        `json:"text,omitempty"`
	File         *FileData     `json:"file,omitempty"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

func TextMessage(role, text string) Message {
	return Message{Role: role, Content: []ContentPart{{Type: "text", Text: text}}}
}

// CompletionResult carries the extracted answer text plus the raw provider
// body for server-side logging.
type CompletionResult struct {
	Text string
	Raw  json.RawMessage
}

// Provider sends one chat completion request. Implementations that support
// multi-model fallback forward the whole candidate list for server-side
// priority ordering; others use the first candidate and surface the failure.
type Provider interface {
	Name() string
	Complete(ctx context.Context, models []string, messages []Message) (*CompletionResult, error)
}

type Factory func(args interface{}) (Provider, error)

var registry = map[string]Factory{}

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("completion.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported completion provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("completion provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode completion provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode completion provider config: %w", err)
	}
	return nil
}
