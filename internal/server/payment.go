package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/orbitcrm/orbitcrm/internal/payment/domain"
	"github.com/shopspring/decimal"
)

type recordCollectionRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

func (s *Server) RecordCollection(c *gin.Context) {
	var req recordCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	collection, err := s.paymentSvc.Record(c.Request.Context(), paymentdomain.RecordRequest{
		QuoteID:   c.Param("id"),
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, collection)
}

func (s *Server) ListCollections(c *gin.Context) {
	collections, err := s.paymentSvc.ListByQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

func (s *Server) CollectionSummary(c *gin.Context) {
	summary, err := s.paymentSvc.Summarize(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type verifyCollectionRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

func (s *Server) VerifyCollection(c *gin.Context) {
	var req verifyCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	collection, err := s.paymentSvc.Verify(c.Request.Context(), c.Param("id"), *req.Approve)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}
