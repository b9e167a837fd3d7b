// Package httpapi exposes the use cases over HTTP. Every handler passes straight
// through to one use case and maps its error to a status code.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/statement-ledger-api/internal/auth"
	"github.com/sheikh-saqib/statement-ledger-api/internal/ledger"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
	"github.com/sheikh-saqib/statement-ledger-api/internal/users"
)

type Server struct {
	users  *users.Service
	ledger *ledger.Ledger
	tokens *auth.TokenIssuer
	logger *slog.Logger
}

func NewServer(usersSvc *users.Service, l *ledger.Ledger, tokens *auth.TokenIssuer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{users: usersSvc, ledger: l, tokens: tokens, logger: logger}
}

// Router builds the gin engine with all routes under /api/v1
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.POST("/users", s.createUser)
	api.POST("/sessions", s.createSession)

	authed := api.Group("")
	authed.Use(s.authMiddleware())
	authed.GET("/profile", s.showProfile)

	statements := authed.Group("/statements")
	statements.GET("/balance", s.getBalance)
	statements.POST("/deposit", s.createStatement(models.OperationDeposit))
	statements.POST("/withdraw", s.createStatement(models.OperationWithdraw))
	statements.POST("/transfers/:user_id", s.transfer)
	statements.GET("/:statement_id", s.getStatement)

	return r
}
