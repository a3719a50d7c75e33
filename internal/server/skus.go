package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	skudomain "github.com/kollect-it/catalog/internal/sku/domain"
)

type allocateSKURequest struct {
	Category string `json:"category"`
}

// AllocateSKU hands out the next SKU for a category. The increment is
// durable before the response is written, so a crashed caller burns the
// number instead of reusing it.
func (s *Server) AllocateSKU(c *gin.Context) {
	var req allocateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	sku, err := s.skuSvc.Allocate(c.Request.Context(), strings.TrimSpace(req.Category))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if parsed, err := skudomain.Parse(sku); err == nil {
		s.metrics.SKUsAllocated.WithLabelValues(parsed.Prefix).Inc()
	}

	c.JSON(http.StatusCreated, gin.H{"sku": sku})
}

func (s *Server) GetSKUStats(c *gin.Context) {
	stats, err := s.skuSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// RebuildSKUCounters raises the allocator counters to match the highest
// stored SKU per (prefix, year).
func (s *Server) RebuildSKUCounters(c *gin.Context) {
	result, err := s.catalogSvc.RebuildCounters(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RebuildRuns.Inc()

	c.JSON(http.StatusOK, gin.H{"data": result})
}
