package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/01moynul/selecta-golang/internal/repository"
)

//
// --- Catalogue Handlers (Public) ---
//

// SearchProducts is the handler for GET /v1/products
// Query params: q, category, min_price, max_price.
func (h *Handlers) SearchProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
	}

	var err error
	if filter.MinPrice, err = priceParam(c, "min_price"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_price must be a number"})
		return
	}
	if filter.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_price must be a number"})
		return
	}

	products, err := h.Products.Search(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, "Database query failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct is the handler for GET /v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.Products.GetActive(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.internalError(c, "Failed to load product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func priceParam(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
