// internal/api/users.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/taskboard/internal/middleware"
)

func (s *Server) handleRegister(c *gin.Context) {
	var body userBody
	if err := bindWrapped(c, "user", &body); err != nil {
		_ = c.Error(err)
		return
	}
	user, err := s.services.Users.Register(c.Request.Context(), body.register())
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var body loginBody
	if err := bindJSON(c, &body); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := s.services.Users.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, res)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var body refreshBody
	if err := bindJSON(c, &body); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := s.services.Users.Refresh(c.Request.Context(), body.RefreshToken)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, res)
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, err := pathID(c, "user")
	if err != nil {
		_ = c.Error(err)
		return
	}
	user, err := s.services.Users.Get(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, user)
}

func (s *Server) handleProfile(c *gin.Context) {
	id, err := pathID(c, "user")
	if err != nil {
		_ = c.Error(err)
		return
	}
	user, err := s.services.Users.Profile(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, user)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	id, err := pathID(c, "user")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var body userBody
	if err := bindWrapped(c, "user", &body); err != nil {
		_ = c.Error(err)
		return
	}
	user, err := s.services.Users.Update(c.Request.Context(), middleware.CallerFrom(c), id, body.update())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, user)
}
