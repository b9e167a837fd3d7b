package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/statement-ledger-api/internal/apperrors"
	"github.com/sheikh-saqib/statement-ledger-api/internal/ledger"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
	"github.com/shopspring/decimal"
)

type amountRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (s *Server) bindAmount(c *gin.Context) (amountRequest, bool) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return req, false
	}
	return req, true
}

// createStatement handles both deposit and withdraw; the route fixes the type
func (s *Server) createStatement(typ models.OperationType) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := s.bindAmount(c)
		if !ok {
			return
		}
		st, err := s.ledger.CreateStatement(c.Request.Context(), ledger.CreateStatementInput{
			UserID:      currentUserID(c),
			Type:        typ,
			Amount:      req.Amount,
			Description: req.Description,
		})
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, st)
	}
}

func (s *Server) transfer(c *gin.Context) {
	req, ok := s.bindAmount(c)
	if !ok {
		return
	}
	err := s.ledger.Transfer(c.Request.Context(), ledger.TransferInput{
		UserFrom:    currentUserID(c),
		UserTo:      c.Param("user_id"),
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) getBalance(c *gin.Context) {
	balance, err := s.ledger.GetBalance(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (s *Server) getStatement(c *gin.Context) {
	st, err := s.ledger.GetOperation(c.Request.Context(), currentUserID(c), c.Param("statement_id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
