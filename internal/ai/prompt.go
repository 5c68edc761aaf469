package ai

import (
	"encoding/base64"
	"strings"

	"github.com/xxxsen/normhelper/internal/model"
)

const answerSystemPrompt = "You are a helpful assistant specialized in analyzing technical documents. " +
	"You have been given a reference document to analyze. Please read it carefully and provide detailed, accurate answers. " +
	"For every statement you make, cite the specific section or paragraph number(s) and/or page number(s) in parentheses at the end of the relevant sentence. " +
	"For statements combining information from multiple sections, cite all relevant sections. " +
	"If you are unsure about a section number, indicate this clearly."

// Turn is one prior exchange in a multi-turn conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildAnswerMessages assembles the completion payload for direct mode. The
// system message carries the citation policy and the document itself as a
// separate cacheable part; the user message holds only the question so the
// provider can cache the document across questions.
func BuildAnswerMessages(doc *model.DocumentContent, question string, history []Turn) []Message {
	ephemeral := &CacheControl{Type: "ephemeral"}
	system := Message{
		Role: "system",
		Content: []ContentPart{
			{Type: "text", Text: answerSystemPrompt},
			documentPart(doc, ephemeral),
		},
	}
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, system)
	for _, turn := range history {
		role := strings.ToLower(strings.TrimSpace(turn.Role))
		if role != "assistant" {
			role = "user"
		}
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		messages = append(messages, TextMessage(role, content))
	}
	messages = append(messages, TextMessage("user", question))
	return messages
}

func documentPart(doc *model.DocumentContent, cache *CacheControl) ContentPart {
	if doc.Encoding == model.EncodingBinary {
		encoded := base64.StdEncoding.EncodeToString(doc.Bytes)
		return ContentPart{
			Type: "file",
			File: &FileData{
				Filename: doc.ID,
				FileData: "data:" + doc.MimeType + ";base64," + encoded,
			},
			CacheControl: cache,
		}
	}
	return ContentPart{
		Type:         "text",
		Text:         string(doc.Bytes),
		CacheControl: cache,
	}
}
