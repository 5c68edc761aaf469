package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

type geminiConfig struct {
	APIKey string `json:"api_key"`
}

// geminiProvider talks to the Gemini API directly. It handles PDF documents
// natively through inline data parts; the API has no multi-model fallback,
// so only the first candidate is tried and the failure is surfaced.
type geminiProvider struct {
	apiKey string
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Complete(ctx context.Context, models []string, messages []Message) (*CompletionResult, error) {
	if p.apiKey == "" {
		return nil, apperr.Newf(apperr.KindUpstreamUnavailable, "completion api key is not configured")
	}
	if len(models) == 0 {
		return nil, apperr.Newf(apperr.KindValidation, "no candidate models")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, err)
	}
	contents, sysInstruction := convertMessages(messages)
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](completionTemperature),
	}
	if sysInstruction != nil {
		cfg.SystemInstruction = sysInstruction
	}
	resp, err := client.Models.GenerateContent(ctx, models[0], contents, cfg)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamRejected, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, apperr.New(apperr.KindEmptyResponse)
	}
	raw, _ := json.Marshal(resp)
	return &CompletionResult{Text: text, Raw: raw}, nil
}

// convertMessages splits the payload into a system instruction (text only)
// and genai contents. Document parts stay with the leading content so the
// model sees them before the question, mirroring the system-then-user order.
func convertMessages(messages []Message) ([]*genai.Content, *genai.Content) {
	var sysTexts []string
	var contents []*genai.Content
	for _, msg := range messages {
		if msg.Role == "system" {
			var docParts []*genai.Part
			for _, part := range msg.Content {
				if part.Type == "text" && part.CacheControl == nil {
					sysTexts = append(sysTexts, part.Text)
					continue
				}
				if converted := convertPart(part); converted != nil {
					docParts = append(docParts, converted)
				}
			}
			if len(docParts) > 0 {
				contents = append(contents, &genai.Content{Role: "user", Parts: docParts})
			}
			continue
		}
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		var parts []*genai.Part
		for _, part := range msg.Content {
			if converted := convertPart(part); converted != nil {
				parts = append(parts, converted)
			}
		}
		if len(parts) > 0 {
			contents = append(contents, &genai.Content{Role: role, Parts: parts})
		}
	}
	var sysInstruction *genai.Content
	if len(sysTexts) > 0 {
		sysInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(sysTexts, "\n")}},
		}
	}
	return contents, sysInstruction
}

func convertPart(part ContentPart) *genai.Part {
	switch part.Type {
	case "text":
		if part.Text == "" {
			return nil
		}
		return &genai.Part{Text: part.Text}
	case "file":
		if part.File == nil {
			return nil
		}
		mime, data, err := decodeDataURL(part.File.FileData)
		if err != nil {
			return nil
		}
		return &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: data}}
	default:
		return nil
	}
}

func decodeDataURL(value string) (string, []byte, error) {
	rest := strings.TrimPrefix(value, "data:")
	mime, encoded, _ := strings.Cut(rest, ";base64,")
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, err
	}
	return mime, data, nil
}

func createGeminiFactory(args interface{}) (Provider, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &geminiProvider{apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func init() {
	Register("gemini", createGeminiFactory)
}
