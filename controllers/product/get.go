package productcontroller

import (
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/gin-gonic/gin"
)

func GetProductByID(m *catalog.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		p, err := m.GetProduct(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "product fetched successfully", "product": p})
	}
}
