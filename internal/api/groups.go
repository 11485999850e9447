// internal/api/groups.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/taskboard/internal/middleware"
	"github.com/gurkanbulca/taskboard/internal/query"
)

func (s *Server) handleListCategories(c *gin.Context) {
	q := query.ParseCategoryQuery(c.Request.URL.Query())
	list, err := s.services.Categories.List(c.Request.Context(), middleware.CallerFrom(c), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, list)
}

func (s *Server) handleGetCategory(c *gin.Context) {
	id, err := pathID(c, "category")
	if err != nil {
		_ = c.Error(err)
		return
	}
	category, err := s.services.Categories.Get(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, category)
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var body categoryBody
	if err := bindWrapped(c, "category", &body); err != nil {
		_ = c.Error(err)
		return
	}
	category, err := s.services.Categories.Create(c.Request.Context(), middleware.CallerFrom(c), body.draft())
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, category)
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	id, err := pathID(c, "category")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var body categoryBody
	if err := bindWrapped(c, "category", &body); err != nil {
		_ = c.Error(err)
		return
	}
	category, err := s.services.Categories.Update(c.Request.Context(), middleware.CallerFrom(c), id, body.draft())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, category)
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, err := pathID(c, "category")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.services.Categories.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	noContent(c)
}

func (s *Server) handleListTags(c *gin.Context) {
	q := query.ParseTagQuery(c.Request.URL.Query())
	list, err := s.services.Tags.List(c.Request.Context(), middleware.CallerFrom(c), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, list)
}

func (s *Server) handleGetTag(c *gin.Context) {
	id, err := pathID(c, "tag")
	if err != nil {
		_ = c.Error(err)
		return
	}
	tag, err := s.services.Tags.Get(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, tag)
}

func (s *Server) handleCreateTag(c *gin.Context) {
	var body tagBody
	if err := bindWrapped(c, "tag", &body); err != nil {
		_ = c.Error(err)
		return
	}
	tag, err := s.services.Tags.Create(c.Request.Context(), middleware.CallerFrom(c), body.draft())
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, tag)
}

func (s *Server) handleUpdateTag(c *gin.Context) {
	id, err := pathID(c, "tag")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var body tagBody
	if err := bindWrapped(c, "tag", &body); err != nil {
		_ = c.Error(err)
		return
	}
	tag, err := s.services.Tags.Update(c.Request.Context(), middleware.CallerFrom(c), id, body.draft())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, tag)
}

func (s *Server) handleDeleteTag(c *gin.Context) {
	id, err := pathID(c, "tag")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.services.Tags.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	noContent(c)
}
