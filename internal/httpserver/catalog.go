package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	catalogsvc "storefront/internal/service/catalog"
	categorysvc "storefront/internal/service/category"
)

func listProductsHandler(catalog *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "product list failed"})
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func getProductHandler(catalog *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := catalog.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "product lookup failed"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func upsertProductHandler(catalog *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalogsvc.UpsertInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := catalog.Upsert(c.Request.Context(), in)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

type restockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func restockHandler(catalog *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req restockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
			return
		}
		if err := catalog.Restock(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func listCategoriesHandler(categories *categorysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := categories.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "category list failed"})
			return
		}
		if result == nil {
			result = []domain.Category{}
		}
		c.JSON(http.StatusOK, gin.H{"categories": result})
	}
}

func upsertCategoryHandler(categories *categorysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in domain.Category
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		category, err := categories.Upsert(c.Request.Context(), in)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, category)
	}
}
