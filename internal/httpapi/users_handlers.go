package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/statement-ledger-api/internal/apperrors"
	"github.com/sheikh-saqib/statement-ledger-api/internal/users"
)

func (s *Server) createUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	_, err := s.users.Create(c.Request.Context(), users.CreateUserInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) createSession(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	session, err := s.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    session.User.ID,
			"name":  session.User.Name,
			"email": session.User.Email,
		},
		"token": session.Token,
	})
}

func (s *Server) showProfile(c *gin.Context) {
	user, err := s.users.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
