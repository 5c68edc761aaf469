package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/normhelper/internal/pkg/apperr"
	"github.com/xxxsen/normhelper/internal/pkg/response"
)

// handleError classifies the failure once and renders the user-safe body.
// The raw cause goes to the server log only.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	classified := apperr.Classify(err)
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("error_type", string(classified.Kind)),
		zap.String("error_class", string(classified.Class())),
		zap.Error(classified),
	)
	response.Fail(c, classified)
}
