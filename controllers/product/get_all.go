package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func decimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, apperror.Validation("invalid %s", name)
	}
	return &d, nil
}

// GetAllProducts lists products with search, filters, sorting and pagination
// e.g. /products?search=shirt&category=Men&min_price=100&sort_by=price&order=asc&page=2
func GetAllProducts(m *catalog.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := request.Page(c, 20)
		f := catalog.Filter{
			Search:   c.Query("search"),
			Category: c.Query("category"),
			OwnerID:  c.Query("owner_id"),
			SortBy:   c.Query("sort_by"),
			Order:    c.Query("order"),
			Page:     page,
			Limit:    limit,
		}
		if s := c.Query("in_stock"); s != "" {
			inStock, err := strconv.ParseBool(s)
			if err != nil {
				_ = c.Error(apperror.Validation("invalid in_stock"))
				return
			}
			f.InStock = inStock
		}

		var err error
		if f.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
			_ = c.Error(err)
			return
		}
		if f.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
			_ = c.Error(err)
			return
		}
		if f.MinDiscount, err = decimalQuery(c, "min_discount"); err != nil {
			_ = c.Error(err)
			return
		}

		res, err := m.ListProducts(c.Request.Context(), f)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "products fetched successfully", "data": res})
	}
}
