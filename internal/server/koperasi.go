package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	"gorm.io/datatypes"
)

type createKoperasiRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    datatypes.JSONMap `json:"metadata"`
}

type updateKoperasiRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	IsActive    *bool             `json:"is_active"`
	Metadata    datatypes.JSONMap `json:"metadata"`
}

func (s *Server) CreateKoperasi(c *gin.Context) {
	var req createKoperasiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.koperasiSvc.Create(c.Request.Context(), actorFrom(c), koperasidomain.CreateRequest{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Metadata:    req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetKoperasi(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	// Slug lookups share the route with ID lookups; IDs are numeric.
	var resp *koperasidomain.Response
	var err error
	if isNumeric(id) {
		resp, err = s.koperasiSvc.Get(c.Request.Context(), id)
	} else {
		resp, err = s.koperasiSvc.GetBySlug(c.Request.Context(), id)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListKoperasi(c *gin.Context) {
	resp, err := s.koperasiSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateKoperasi(c *gin.Context) {
	var req updateKoperasiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.koperasiSvc.Update(c.Request.Context(), actorFrom(c), koperasidomain.UpdateRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		Metadata:    req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
