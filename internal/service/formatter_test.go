package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/normhelper/internal/ai"
	"github.com/xxxsen/normhelper/internal/model"
)

type fakeProvider struct {
	reply    string
	err      error
	calls    int
	models   []string
	messages []ai.Message
}

func (p *fakeProvider) Name() string {
	return "fake"
}

func (p *fakeProvider) Complete(ctx context.Context, models []string, messages []ai.Message) (*ai.CompletionResult, error) {
	p.calls++
	p.models = models
	p.messages = messages
	if p.err != nil {
		return nil, p.err
	}
	raw, _ := json.Marshal(map[string]string{"text": p.reply})
	return &ai.CompletionResult{Text: p.reply, Raw: raw}, nil
}

func sampleChunks() []model.RetrievedChunk {
	return []model.RetrievedChunk{
		{
			Text:       "Doors must open outward.",
			Score:      0.93,
			DocumentID: "a",
			Metadata:   model.ChunkMetadata{Name: "Fire Norm", SourceURL: "https://example.com/fire"},
		},
		{
			Text:       "Clearance of 1.2m is required.",
			Score:      0.54,
			DocumentID: "b",
			Metadata:   model.ChunkMetadata{Name: "Unknown"},
		},
	}
}

func TestFormat_EmptyChunks(t *testing.T) {
	provider := &fakeProvider{}
	f := NewCitationFormatter(provider, []string{"m"})
	got := f.Format(context.Background(), nil)
	require.Equal(t, "No results found for your query.", got)
	require.Zero(t, provider.calls)
}

func TestFormat_PrimaryPathUsesModelOutput(t *testing.T) {
	provider := &fakeProvider{reply: "**Here are the most relevant results for your query:**\n\n**Result 1:** ..."}
	f := NewCitationFormatter(provider, []string{"google/gemini-2.5-flash"})
	got := f.Format(context.Background(), sampleChunks())
	require.Equal(t, provider.reply, got)
	require.Equal(t, 1, provider.calls)
	require.Equal(t, []string{"google/gemini-2.5-flash"}, provider.models)
	require.Equal(t, "system", provider.messages[0].Role)
	require.Contains(t, provider.messages[1].Content[0].Text, "Doors must open outward.")
}

func TestFormat_DegradesOnProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("model offline")}
	f := NewCitationFormatter(provider, []string{"m"})
	got := f.Format(context.Background(), sampleChunks())
	require.Equal(t, FormatChunksFallback(sampleChunks()), got)
}

func TestFormatChunksFallback_Deterministic(t *testing.T) {
	chunks := sampleChunks()
	first := FormatChunksFallback(chunks)
	second := FormatChunksFallback(chunks)
	require.Equal(t, first, second)
}

func TestFormatChunksFallback_Layout(t *testing.T) {
	got := FormatChunksFallback(sampleChunks())
	want := "- Doors must open outward.\n\n[Source: \"Fire Norm\"](https://example.com/fire)\n\n---\n\n" +
		"- Clearance of 1.2m is required.\n\n[Source: \"Unknown Document\"](#)\n\n---\n\n"
	require.Equal(t, want, got)
}

func TestFormatChunksFallback_KeepsScoreOrder(t *testing.T) {
	got := FormatChunksFallback(sampleChunks())
	require.Less(t, strings.Index(got, "Doors must open"), strings.Index(got, "Clearance of 1.2m"))
}

func TestFormatChunksFallback_EveryChunkCited(t *testing.T) {
	chunks := sampleChunks()
	got := FormatChunksFallback(chunks)
	citation := regexp.MustCompile(`\[Source: "[^"]+"\]\([^)]+\)`)
	require.Len(t, citation.FindAllString(got, -1), len(chunks))
}
