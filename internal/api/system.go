// internal/api/system.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/taskboard/internal/middleware"
)

// handleHealth needs no caller. A store failure is a 503.
func (s *Server) handleHealth(c *gin.Context) {
	report, err := s.services.Health.Check(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, report)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.services.Stats.Snapshot(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, stats)
}
