package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/kollect-it/catalog/internal/catalog/domain"
	productdomain "github.com/kollect-it/catalog/internal/product/domain"
	skudomain "github.com/kollect-it/catalog/internal/sku/domain"
	"gorm.io/gorm"
)

// errorResponse is the wire shape for every failure: a human-readable
// error string and, for validation failures, the individual messages.
type errorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorResponse) {
	var vErr *productdomain.ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorResponse{
			Error:    "Validation failed",
			Messages: vErr.Messages(),
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Error: "Invalid API key"}
	case errors.Is(err, catalogdomain.ErrDuplicateSKU):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, skudomain.ErrInvalidSKU),
		errors.Is(err, catalogdomain.ErrInvalidPageToken):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, skudomain.ErrUnknownCategory):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, catalogdomain.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorResponse{Error: "Not found"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Internal server error"}
	}
}
