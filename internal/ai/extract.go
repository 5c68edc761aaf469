package ai

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

type completionEnvelope struct {
	Choices *[]choiceEnvelope `json:"choices"`
}

type choiceEnvelope struct {
	Message *messageEnvelope `json:"message"`
}

type messageEnvelope struct {
	Content *string `json:"content"`
}

// ExtractText walks the provider response in a strict order and fails with a
// distinct kind at the first missing structural element. Each kind maps to a
// different upstream failure mode, so none of them collapse into a generic
// bad-response error and none of them default to an empty answer.
func ExtractText(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", apperr.New(apperr.KindEmptyResponse)
	}
	var envelope completionEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return "", apperr.Wrap(apperr.KindUpstreamMalformed, err)
	}
	if envelope.Choices == nil {
		return "", apperr.New(apperr.KindMissingChoices)
	}
	choices := *envelope.Choices
	if len(choices) == 0 {
		return "", apperr.New(apperr.KindNoChoices)
	}
	first := choices[0]
	if first.Message == nil {
		return "", apperr.New(apperr.KindMissingMessage)
	}
	if first.Message.Content == nil || strings.TrimSpace(*first.Message.Content) == "" {
		return "", apperr.New(apperr.KindMissingContent)
	}
	return strings.TrimSpace(*first.Message.Content), nil
}
