package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/statement-ledger-api/internal/apperrors"
)

// respondError writes application errors with their own status and message.
// Anything else is logged and hidden behind a 500.
func (s *Server) respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{"message": appErr.Message})
		return
	}
	s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	s.respondError(c, err)
	c.Abort()
}
