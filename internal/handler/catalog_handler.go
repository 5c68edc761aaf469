package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/normhelper/internal/pkg/response"
	"github.com/xxxsen/normhelper/internal/service"
)

type CatalogHandler struct {
	answers *service.AnswerService
}

func NewCatalogHandler(answers *service.AnswerService) *CatalogHandler {
	return &CatalogHandler{answers: answers}
}

type catalogResponse struct {
	Documents []string `json:"documents"`
}

func (h *CatalogHandler) List(c *gin.Context) {
	ids, err := h.answers.ListDocuments(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, catalogResponse{Documents: ids})
}
