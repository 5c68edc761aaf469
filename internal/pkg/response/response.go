package response

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

type errorBody struct {
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
	Timestamp string `json:"timestamp"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// Fail renders the classified error. Only the user-safe message and the
// stable error type go over the wire; the cause stays in the server log.
func Fail(c *gin.Context, err *apperr.Error) {
	c.JSON(err.HTTPStatus(), errorBody{
		Message:   err.UserMessage,
		ErrorType: string(err.Kind),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
