// internal/middleware/validation.go
package middleware

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/taskboard/internal/apperror"
)

// ValidationConfig holds request validation limits
type ValidationConfig struct {
	MaxBodyBytes int64
}

// DefaultValidationConfig returns default validation configuration
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		MaxBodyBytes: 1 << 20,
	}
}

// RequestValidator rejects request bodies the handlers cannot decode before
// any work is done. Field rules stay with the domain.
type RequestValidator struct {
	config *ValidationConfig
}

func NewRequestValidator(config *ValidationConfig) *RequestValidator {
	if config == nil {
		config = DefaultValidationConfig()
	}
	return &RequestValidator{config: config}
}

// Handler returns the gin middleware.
func (v *RequestValidator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := v.validateRequest(c.Request); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, v.config.MaxBodyBytes)
		c.Next()
	}
}

func (v *RequestValidator) validateRequest(r *http.Request) error {
	if !hasBody(r) {
		return nil
	}
	if r.ContentLength > v.config.MaxBodyBytes {
		return apperror.Malformed(fmt.Sprintf("request body exceeds %d bytes", v.config.MaxBodyBytes))
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return apperror.Malformed("request body must be application/json")
	}
	return nil
}

// hasBody reports a write request that carries a body. Transitions are
// PATCH requests without one.
func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody
	default:
		return false
	}
}
