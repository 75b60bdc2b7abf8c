package orderControllers

import (
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/events"
	"github.com/Raqibreyaz/EcommerceBackend/middleware"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/services/order"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// -------- Request Structs --------

type OrderLineRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type PaymentDetailsRequest struct {
	GatewayOrderID string `json:"order_id" binding:"required"`
	PaymentID      string `json:"payment_id" binding:"required"`
	Mode           string `json:"mode"`
	Status         string `json:"status"`
}

type PlaceOrderRequest struct {
	Products        []OrderLineRequest    `json:"products" binding:"required,min=1,dive"`
	PaymentDetails  PaymentDetailsRequest `json:"payment_details"`
	DeliveryAddress models.Address        `json:"delivery_address"`
	TotalPrice      *decimal.Decimal      `json:"total_price"`
	TotalDiscount   *decimal.Decimal      `json:"total_discount"`
	TotalAmount     *decimal.Decimal      `json:"total_amount"`
}

type UpdateOrderStatusRequest struct {
	Status models.DeliveryStatus `json:"status" binding:"required"`
}

func (r PlaceOrderRequest) input() order.CreateInput {
	lines := make([]order.LineInput, 0, len(r.Products))
	for _, p := range r.Products {
		lines = append(lines, order.LineInput{ProductID: p.ProductID, Color: p.Color, Size: p.Size, Quantity: p.Quantity})
	}
	return order.CreateInput{
		Lines:           lines,
		DeliveryAddress: r.DeliveryAddress,
		Payment: models.PaymentDetails{
			GatewayOrderID: r.PaymentDetails.GatewayOrderID,
			PaymentID:      r.PaymentDetails.PaymentID,
			Mode:           r.PaymentDetails.Mode,
			Status:         r.PaymentDetails.Status,
		},
		Totals: order.Totals{
			TotalPrice:    r.TotalPrice,
			TotalDiscount: r.TotalDiscount,
			TotalAmount:   r.TotalAmount,
		},
	}
}

// -------- Core Logic --------

// PlaceOrder checks out the listed lines for the caller and empties their cart
func PlaceOrder(ledger *order.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}

		o, err := ledger.CreateOrder(c.Request.Context(), middleware.UserID(c), req.input())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "order placed successfully", "order": o})
	}
}

// GetUserOrders lists the caller's orders, newest first
func GetUserOrders(ledger *order.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := request.Page(c, 20)
		res, err := ledger.ListUserOrders(c.Request.Context(), middleware.UserID(c), page, limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "orders fetched successfully", "data": res})
	}
}

// GetOrderByID returns one order to its owner or to an admin
func GetOrderByID(ledger *order.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		o, err := ledger.GetOrder(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if o.UserID != middleware.UserID(c) && !middleware.IsAdmin(c) {
			_ = c.Error(apperror.NotFound("order not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "order fetched successfully", "order": o})
	}
}

// CancelOrder cancels the caller's pending order and restocks its lines
func CancelOrder(ledger *order.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		o, err := ledger.Cancel(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "order cancelled successfully", "order": o})
	}
}

// -------- Admin --------

// GetAllOrders lists every order, optionally filtered by ?status=
func GetAllOrders(ledger *order.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := request.Page(c, 20)
		status := models.DeliveryStatus(c.Query("status"))
		res, err := ledger.ListOrders(c.Request.Context(), status, page, limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "orders fetched successfully", "data": res})
	}
}

// UpdateOrderStatus moves a pending order to delivered or cancelled
func UpdateOrderStatus(ledger *order.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}
		o, err := ledger.UpdateDeliveryStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "order status updated", "order": o})
	}
}

// OrderWebSocketHandler streams order events to connected admin dashboards
func OrderWebSocketHandler(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.Serve(c.Writer, c.Request)
	}
}
