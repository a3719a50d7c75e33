package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/kollect-it/catalog/internal/catalog/domain"
	productdomain "github.com/kollect-it/catalog/internal/product/domain"
)

// ServiceCreate ingests one normalized product payload from the desktop
// pipeline and stores it as a draft.
func (s *Server) ServiceCreate(c *gin.Context) {
	var payload productdomain.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, &productdomain.ValidationErrors{Violations: []productdomain.Violation{
			{Field: "body", Code: "invalid_json", Message: "Request body is not valid JSON"},
		}})
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), payload)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.ProductsCreated.WithLabelValues(resp.Category).Inc()

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": gin.H{
			"id":    resp.ID,
			"slug":  resp.Slug,
			"sku":   resp.SKU,
			"title": resp.Title,
		},
	})
}

// ServiceStatus is the reachability probe the desktop client calls
// before its first submission.
func (s *Server) ServiceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"service":    "product-service-create",
		"categories": s.catalog.CategoryIDs(),
	})
}

func (s *Server) GetProduct(c *gin.Context) {
	resp, err := s.catalogSvc.Get(c.Request.Context(), c.Param("sku"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query catalogdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
