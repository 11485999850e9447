// internal/api/response.go
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/taskboard/internal/apperror"
)

// Envelope wraps every response body.
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// httpStatus maps an error kind to its response status.
func httpStatus(kind apperror.Kind) int {
	switch kind {
	case apperror.KindMalformed:
		return http.StatusBadRequest
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperror.KindAccessDenied:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation, apperror.KindConflict:
		return http.StatusUnprocessableEntity
	case apperror.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// errorRenderer writes the envelope for the last error recorded on the
// context, unless a response was already written. Handlers and middleware
// record errors with c.Error and return.
func errorRenderer(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		writeError(c, last.Err, development)
	}
}

func writeError(c *gin.Context, err error, development bool) {
	appErr := apperror.From(err)
	body := Envelope{Error: appErr.Message}

	switch appErr.Kind {
	case apperror.KindValidation:
		body.Errors = appErr.Messages()
	case apperror.KindUnavailable:
		body.Error = appErr.Error()
	case apperror.KindInternal:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, appErr.Err)
		if development {
			body.Error = appErr.Error()
		}
	}

	c.AbortWithStatusJSON(httpStatus(appErr.Kind), body)
}

// recovery turns a panic into an internal error response.
func recovery(development bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		writeError(c, apperror.Internal(fmt.Errorf("panic: %v", recovered)), development)
	})
}

func notFound(c *gin.Context) {
	_ = c.Error(apperror.NotFound("route"))
}
