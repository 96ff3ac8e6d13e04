package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/orbitcrm/orbitcrm/internal/approval/domain"
)

func (s *Server) RequestApproval(c *gin.Context) {
	result, err := s.approvalSvc.Request(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ListQuoteApprovals(c *gin.Context) {
	approvals, err := s.approvalSvc.ListByQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approvals": approvals})
}

func (s *Server) ApprovalInbox(c *gin.Context) {
	entries, err := s.approvalSvc.Inbox(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inbox": entries})
}

type actRequestBody struct {
	Approve *bool  `json:"approve" binding:"required"`
	Comment string `json:"comment"`
}

func (s *Server) ActOnApproval(c *gin.Context) {
	var req actRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	approval, err := s.approvalSvc.Act(c.Request.Context(), approvaldomain.ActRequest{
		ApprovalID: c.Param("id"),
		Approve:    *req.Approve,
		Comment:    req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, approval)
}

func (s *Server) ListApprovalRules(c *gin.Context) {
	rules, err := s.approvalSvc.ListRules(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (s *Server) CreateApprovalRule(c *gin.Context) {
	var req approvaldomain.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := s.approvalSvc.CreateRule(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) UpdateApprovalRule(c *gin.Context) {
	var req approvaldomain.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	rule, err := s.approvalSvc.UpdateRule(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) DeleteApprovalRule(c *gin.Context) {
	if err := s.approvalSvc.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
