package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/normhelper/internal/ai"
	"github.com/xxxsen/normhelper/internal/model"
)

const chunkListBanner = "**Here are the most relevant results for your query:**"

const formatterSystemPrompt = `You are an assistant that formats retrieved document chunks into a structured list.
Each chunk should be concise and end with a citation linking to the source document.
Use Markdown for formatting.

Guidelines:
- Start always with "` + chunkListBanner + `" followed by an empty line before the results
- Number the chunks like this "**Result 1:** ", "**Result 2:** ", etc...
- Keep the original text intact but remove any unnecessary whitespace or line breaks
- For each chunk, include the relevant text and a citation at the end in the format: [Source: "Document Name"](source_url)
- Always use the document name in the citation, not "Unknown"
- Organize chunks by relevance (they are already sorted by score)
- Add a horizontal rule (---) between chunks for better readability`

// CitationFormatter renders retrieved chunks as an annotated Markdown list.
// The primary path delegates to a completion model; whenever that call fails
// in any way the deterministic fallback takes over, so the caller always
// gets usable, correctly ordered output.
type CitationFormatter struct {
	provider ai.Provider
	models   []string
}

func NewCitationFormatter(provider ai.Provider, models []string) *CitationFormatter {
	return &CitationFormatter{provider: provider, models: models}
}

func (f *CitationFormatter) Format(ctx context.Context, chunks []model.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "No results found for your query."
	}
	result, err := f.provider.Complete(ctx, f.models, buildFormatterMessages(chunks))
	if err != nil {
		logutil.GetLogger(ctx).Warn("chunk formatting degraded to local rendering", zap.Error(err))
		return FormatChunksFallback(chunks)
	}
	return result.Text
}

func buildFormatterMessages(chunks []model.RetrievedChunk) []ai.Message {
	var sb strings.Builder
	sb.WriteString("Here are the retrieved document chunks:\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&sb, "\nChunk %d (Score: %g):\nDocument: %s\nSource: %s\nText: %s\n",
			i+1, chunk.Score, chunkDocName(chunk), chunkSourceURL(chunk), chunk.Text)
	}
	sb.WriteString("\nPlease format these into a well-structured list with proper citations.")
	return []ai.Message{
		ai.TextMessage("system", formatterSystemPrompt),
		ai.TextMessage("user", sb.String()),
	}
}

// FormatChunksFallback is the degraded rendering: one bullet per chunk with
// its citation link, in the given (score-descending) order, no banner. It is
// pure, so the same chunk sequence always produces byte-identical output.
func FormatChunksFallback(chunks []model.RetrievedChunk) string {
	var sb strings.Builder
	for _, chunk := range chunks {
		fmt.Fprintf(&sb, "- %s\n\n[Source: %q](%s)\n\n---\n\n",
			chunk.Text, chunkDocName(chunk), chunkSourceURL(chunk))
	}
	return sb.String()
}

func chunkDocName(chunk model.RetrievedChunk) string {
	name := strings.TrimSpace(chunk.Metadata.Name)
	if name == "" || name == "Unknown" {
		return "Unknown Document"
	}
	return name
}

func chunkSourceURL(chunk model.RetrievedChunk) string {
	if strings.TrimSpace(chunk.Metadata.SourceURL) == "" {
		return "#"
	}
	return chunk.Metadata.SourceURL
}
