package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Ask     *AskHandler
	Search  *SearchHandler
	Catalog *CatalogHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/ask", deps.Ask.Ask)
	api.POST("/search", deps.Search.Search)
	api.GET("/documents", deps.Catalog.List)
}
