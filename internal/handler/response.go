package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes the HTTP rendering of err. Application errors map to
// their status code; anything else is a 500 with a generic message.
func Error(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		c.JSON(appErr.StatusCode(), &Response{
			Status:  "error",
			Message: appErr.Message,
			Fields:  appErr.Fields,
		})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}
