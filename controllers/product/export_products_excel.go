package productcontroller

import (
	"bytes"
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/gin-gonic/gin"
)

// ExportStockToExcel downloads every variant's stock level as stock.xlsx
func ExportStockToExcel(m *catalog.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := m.ExportStock(c.Request.Context(), &buf); err != nil {
			_ = c.Error(err)
			return
		}

		// Set response headers for download
		c.Header("Content-Disposition", "attachment; filename=stock.xlsx")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}
