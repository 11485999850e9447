// internal/api/tasks.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/taskboard/internal/middleware"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/query"
)

// taskStatusShortcuts are served at /tasks/<status>.
var taskStatusShortcuts = models.TaskStatuses

// taskTransitions maps PATCH /tasks/:id/<path> to its transition.
var taskTransitions = map[string]models.Transition{
	"complete":   models.TransitionComplete,
	"uncomplete": models.TransitionUncomplete,
	"cancel":     models.TransitionCancel,
	"start":      models.TransitionStart,
}

func (s *Server) handleListTasks(c *gin.Context) {
	q, err := query.ParseTaskQuery(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	s.listTasks(c, q)
}

// handleListTasksByStatus serves a shortcut; the path status overrides any
// status query option.
func (s *Server) handleListTasksByStatus(status models.TaskStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		values := c.Request.URL.Query()
		values.Del("status")
		q, err := query.ParseTaskQuery(values)
		if err != nil {
			_ = c.Error(err)
			return
		}
		q.Filter.Status = &status
		s.listTasks(c, q)
	}
}

func (s *Server) listTasks(c *gin.Context, q query.TaskQuery) {
	list, err := s.services.Tasks.List(c.Request.Context(), middleware.CallerFrom(c), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, list)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, err := pathID(c, "task")
	if err != nil {
		_ = c.Error(err)
		return
	}
	task, err := s.services.Tasks.Get(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, task)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var body taskBody
	if err := bindWrapped(c, "task", &body); err != nil {
		_ = c.Error(err)
		return
	}
	task, err := s.services.Tasks.Create(c.Request.Context(), middleware.CallerFrom(c), body.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, err := pathID(c, "task")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var body taskBody
	if err := bindWrapped(c, "task", &body); err != nil {
		_ = c.Error(err)
		return
	}
	task, err := s.services.Tasks.Update(c.Request.Context(), middleware.CallerFrom(c), id, body.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, err := pathID(c, "task")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.services.Tasks.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	noContent(c)
}

func (s *Server) handleTransition(tr models.Transition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "task")
		if err != nil {
			_ = c.Error(err)
			return
		}
		task, err := s.services.Tasks.Transition(c.Request.Context(), middleware.CallerFrom(c), id, tr)
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, task)
	}
}
