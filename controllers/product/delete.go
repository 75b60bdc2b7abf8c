package productcontroller

import (
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/gin-gonic/gin"
)

// DeleteProduct removes a product along with its images, reviews and wishlist entries
func DeleteProduct(m *catalog.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		if err := m.DeleteProduct(c.Request.Context(), id); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "product deleted successfully"})
	}
}
