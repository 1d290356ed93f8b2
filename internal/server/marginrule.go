package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	marginruledomain "github.com/sentrakoop/sentra/internal/marginrule/domain"
	"github.com/sentrakoop/sentra/internal/tier"
)

type createMarginRuleRequest struct {
	Tier          string     `json:"tier"`
	Type          string     `json:"type"`
	Value         float64    `json:"value"`
	EffectiveFrom *time.Time `json:"effective_from"`
}

type updateMarginRuleRequest struct {
	Value    *float64 `json:"value"`
	IsActive *bool    `json:"is_active"`
}

func (s *Server) CreateMarginRule(c *gin.Context) {
	var req createMarginRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.marginRuleSvc.Create(c.Request.Context(), actorFrom(c), marginruledomain.CreateRequest{
		KoperasiID:    strings.TrimSpace(c.Param("id")),
		Tier:          tier.Tier(strings.ToUpper(strings.TrimSpace(req.Tier))),
		Type:          marginruledomain.RuleType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Value:         req.Value,
		EffectiveFrom: req.EffectiveFrom,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateMarginRule(c *gin.Context) {
	var req updateMarginRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.marginRuleSvc.Update(c.Request.Context(), actorFrom(c), marginruledomain.UpdateRequest{
		ID:         strings.TrimSpace(c.Param("ruleId")),
		KoperasiID: strings.TrimSpace(c.Param("id")),
		Value:      req.Value,
		IsActive:   req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMarginRules(c *gin.Context) {
	resp, err := s.marginRuleSvc.List(c.Request.Context(), actorFrom(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
