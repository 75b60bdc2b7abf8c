package routes

import (
	orderControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/order"
	paymentControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/payment"
	returnControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/returns"
	"github.com/gin-gonic/gin"
)

func SetupOrderRoutes(r *gin.RouterGroup, d Deps) {
	orders := r.Group("/orders")
	{
		// Check out the given lines and clear the cart
		orders.POST("", orderControllers.PlaceOrder(d.Orders))

		// Caller's own orders
		orders.GET("", orderControllers.GetUserOrders(d.Orders))
		orders.GET("/:id", orderControllers.GetOrderByID(d.Orders))

		// Cancel within the cancel window
		orders.PUT("/:id/cancel", orderControllers.CancelOrder(d.Orders))

		// Return one line of a delivered order (multipart with photos)
		orders.POST("/:id/returns", returnControllers.CreateReturnRequest(d.Returns, d.Media))
	}
}

func SetupPaymentRoutes(r *gin.RouterGroup, d Deps) {
	payments := r.Group("/payments")
	{
		payments.POST("/orders", paymentControllers.CreatePaymentOrder(d.Gateway, d.Log))
		payments.POST("/verify", paymentControllers.VerifyPayment(d.Gateway))
	}
}
