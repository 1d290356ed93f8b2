package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	membershipdomain "github.com/sentrakoop/sentra/internal/membership/domain"
	"github.com/sentrakoop/sentra/pkg/db/pagination"
)

type applyMembershipRequest struct {
	Kind string `json:"kind"`
}

type decideMembershipRequest struct {
	Decision string `json:"decision"`
}

func (s *Server) ApplyMembership(c *gin.Context) {
	var req applyMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.membershipSvc.Apply(c.Request.Context(), actorFrom(c), membershipdomain.ApplyRequest{
		KoperasiID: strings.TrimSpace(c.Param("id")),
		Kind:       membershipdomain.Kind(strings.ToUpper(strings.TrimSpace(req.Kind))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DecideMembership(c *gin.Context) {
	var req decideMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.membershipSvc.Decide(c.Request.Context(), actorFrom(c), membershipdomain.DecideRequest{
		ID:       strings.TrimSpace(c.Param("applicationId")),
		Decision: membershipdomain.Decision(strings.ToUpper(strings.TrimSpace(req.Decision))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMyMemberships(c *gin.Context) {
	resp, err := s.membershipSvc.ListByUser(c.Request.Context(), actorFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListKoperasiMemberships(c *gin.Context) {
	var status *membershipdomain.Status
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		parsed := membershipdomain.Status(raw)
		switch parsed {
		case membershipdomain.StatusPending, membershipdomain.StatusActive, membershipdomain.StatusRejected:
			status = &parsed
		default:
			AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
			return
		}
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.membershipSvc.ListByKoperasi(c.Request.Context(), actorFrom(c), membershipdomain.ListByKoperasiRequest{
		KoperasiID: strings.TrimSpace(c.Param("id")),
		Status:     status,
		PageToken:  page.PageToken,
		PageSize:   page.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
