package routes

import (
	orderControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/order"
	productcontroller "github.com/Raqibreyaz/EcommerceBackend/controllers/product"
	returnControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/returns"
	userControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/user"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers the admin endpoints. Requires JWT and the admin role.
func SetupAdminRoutes(r *gin.RouterGroup, d Deps) {
	// ─────────── Return Review ───────────
	r.GET("/returns", returnControllers.GetReturnRequests(d.Returns))
	r.PUT("/returns/:id", returnControllers.UpdateReturnStatus(d.Returns))

	adminGroup := r.Group("/admin")
	{
		// ─────────── User Management ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(d.DB))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(d.Catalog, d.Media))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(d.Catalog))
			productAdmin.PUT("/:id/variants", productcontroller.UpdateProductVariants(d.Catalog, d.Media))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(d.Catalog))
			productAdmin.GET("/export-stock", productcontroller.ExportStockToExcel(d.Catalog))
		}

		// ─────────── Category Management ───────────
		adminGroup.POST("/categories", productcontroller.CreateCategory(d.Catalog))

		// ─────────── Order Management ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrders(d.Orders))
			orderAdmin.PUT("/:id/status", orderControllers.UpdateOrderStatus(d.Orders))

			// websocket endpoint for real-time order updates
			orderAdmin.GET("/ws", orderControllers.OrderWebSocketHandler(d.Hub))
		}
	}
}
