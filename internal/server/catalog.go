package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/sentrakoop/sentra/internal/catalog/domain"
)

func (s *Server) BrowseCatalog(c *gin.Context) {
	var query struct {
		Name     string `form:"name"`
		Category string `form:"category"`
		SortBy   string `form:"sort_by"`
		OrderBy  string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Browse(c.Request.Context(), actorFrom(c), catalogdomain.BrowseRequest{
		KoperasiID: strings.TrimSpace(c.Param("id")),
		Name:       strings.TrimSpace(query.Name),
		Category:   strings.TrimSpace(query.Category),
		SortBy:     strings.TrimSpace(query.SortBy),
		OrderBy:    strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PriceMatrix(c *gin.Context) {
	resp, err := s.catalogSvc.PriceMatrix(c.Request.Context(), actorFrom(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportPriceList(c *gin.Context) {
	matrix, err := s.catalogSvc.PriceMatrix(c.Request.Context(), actorFrom(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	document, err := s.pdfProvider.GeneratePriceList(c.Request.Context(), matrix)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("daftar-harga-%s.pdf", matrix.KoperasiID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, document); err != nil {
		_ = c.Error(err)
	}
}
