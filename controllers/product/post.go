package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/middleware"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateProduct creates a product with its colors, sizes, stock levels and images.
func CreateProduct(m *catalog.Manager, store media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("name")
		priceStr := c.PostForm("price")
		category := c.PostForm("category")
		if name == "" || priceStr == "" || category == "" {
			_ = c.Error(apperror.Validation("name, price and category are required"))
			return
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			_ = c.Error(apperror.Validation("invalid price"))
			return
		}
		discount := decimal.Zero
		if s := c.PostForm("discount"); s != "" {
			if discount, err = decimal.NewFromString(s); err != nil {
				_ = c.Error(apperror.Validation("invalid discount"))
				return
			}
		}
		returnable := true
		if s := c.PostForm("is_returnable"); s != "" {
			if returnable, err = strconv.ParseBool(s); err != nil {
				_ = c.Error(apperror.Validation("invalid is_returnable"))
				return
			}
		}

		layout, err := readLayout(c, store)
		if err != nil {
			_ = c.Error(err)
			return
		}

		p, err := m.CreateProduct(c.Request.Context(), middleware.UserID(c), catalog.ProductInput{
			Name:         name,
			Description:  c.PostForm("description"),
			Category:     category,
			Price:        price,
			Discount:     discount,
			IsReturnable: returnable,
			Layout:       layout,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "product created successfully", "product": p})
	}
}
