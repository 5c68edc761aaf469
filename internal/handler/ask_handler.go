package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/normhelper/internal/ai"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
	"github.com/xxxsen/normhelper/internal/pkg/response"
	"github.com/xxxsen/normhelper/internal/service"
)

const (
	ModeDirect    = "direct"
	ModeRetrieval = "retrieval"
)

type AskHandler struct {
	answers *service.AnswerService
	search  *service.SearchService
}

func NewAskHandler(answers *service.AnswerService, search *service.SearchService) *AskHandler {
	return &AskHandler{answers: answers, search: search}
}

type askRequest struct {
	Question   string    `json:"question"`
	DocumentID string    `json:"document_id"`
	Mode       string    `json:"mode"`
	Model      string    `json:"model"`
	History    []ai.Turn `json:"history"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Ask dispatches to the requested answering mode and returns one rendered
// Markdown string either way, so callers have a single contract.
func (h *AskHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperr.Wrap(apperr.KindValidation, err))
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeDirect
	}
	switch mode {
	case ModeDirect:
		answer, err := h.answers.Ask(c.Request.Context(), service.AskInput{
			Question:   req.Question,
			DocumentID: req.DocumentID,
			Model:      req.Model,
			History:    req.History,
		})
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, askResponse{Answer: answer})
	case ModeRetrieval:
		result, err := h.search.Search(c.Request.Context(), service.SearchInput{
			Query: req.Question,
		})
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, askResponse{Answer: result.Formatted})
	default:
		response.Fail(c, apperr.Newf(apperr.KindValidation, "mode must be %q or %q", ModeDirect, ModeRetrieval))
	}
}
