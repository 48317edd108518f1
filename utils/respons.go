package utils

import (
	"github.com/gin-gonic/gin"
)

// ContextRequestID is the gin context key the request logger stores the id under.
const ContextRequestID = "request_id"

// JSONResponse is the envelope every endpoint answers with. Errors carry the
// request id so a terminal operator can quote it when reporting a failure.
type JSONResponse struct {
	Status    bool        `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError records err on the context for the access log and writes the
// envelope with the error text as message.
func RespondError(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	c.JSON(code, JSONResponse{
		Status:    false,
		Message:   err.Error(),
		RequestID: c.GetString(ContextRequestID),
	})
}
