package productcontroller

import (
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type UpdateProductRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Price        *decimal.Decimal `json:"price"`
	Discount     *decimal.Decimal `json:"discount"`
	IsReturnable *bool            `json:"is_returnable"`
}

// UpdateProduct patches the scalar details of a product
func UpdateProduct(m *catalog.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var req UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}

		p, err := m.UpdateDetails(c.Request.Context(), id, catalog.DetailsPatch{
			Name:         req.Name,
			Description:  req.Description,
			Category:     req.Category,
			Price:        req.Price,
			Discount:     req.Discount,
			IsReturnable: req.IsReturnable,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "product updated successfully", "product": p})
	}
}

// UpdateProductVariants replaces colors, sizes, stock levels and images in one go
func UpdateProductVariants(m *catalog.Manager, store media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		layout, err := readLayout(c, store)
		if err != nil {
			_ = c.Error(err)
			return
		}

		p, err := m.ReplaceVariants(c.Request.Context(), id, layout)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "product variants updated successfully", "product": p})
	}
}
