package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/normhelper/internal/model"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
	"github.com/xxxsen/normhelper/internal/pkg/response"
	"github.com/xxxsen/normhelper/internal/service"
)

type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchRequest struct {
	Query                string                 `json:"query"`
	Rerank               *bool                  `json:"rerank"`
	TopK                 int                    `json:"top_k"`
	MaxChunksPerDocument int                    `json:"max_chunks_per_document"`
	Filter               map[string]interface{} `json:"filter"`
}

type searchResponse struct {
	Chunks          []model.RetrievedChunk `json:"chunks"`
	FormattedChunks string                 `json:"formatted_chunks"`
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperr.Wrap(apperr.KindValidation, err))
		return
	}
	result, err := h.search.Search(c.Request.Context(), service.SearchInput{
		Query:                req.Query,
		Rerank:               req.Rerank,
		TopK:                 req.TopK,
		MaxChunksPerDocument: req.MaxChunksPerDocument,
		Filter:               req.Filter,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, searchResponse{
		Chunks:          result.Chunks,
		FormattedChunks: result.Formatted,
	})
}
