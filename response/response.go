package response

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    any                   `json:"data,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func Message(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func Fail(c *gin.Context, err *apperror.Error) {
	c.AbortWithStatusJSON(err.Status, Envelope{
		Success: false,
		Message: err.Message,
		Errors:  err.Errors,
	})
}

// Pagination is returned alongside paged listings.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// BindError records a request binding failure. Validation failures become 400
// with per-field errors, anything else a plain 400.
func BindError(c *gin.Context, err error) {
	c.Error(err).SetType(gin.ErrorTypeBind)
}
