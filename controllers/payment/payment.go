package paymentControllers

import (
	"context"
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/payment"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Gateway is the part of the payment gateway the handlers use.
type Gateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*payment.RemoteOrder, error)
	Secret() string
}

type CreatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type VerifyPaymentRequest struct {
	OrderRef   string `json:"order_ref" binding:"required"`
	PaymentRef string `json:"payment_ref" binding:"required"`
	Signature  string `json:"signature" binding:"required"`
}

// CreatePaymentOrder registers the checkout amount with the gateway and returns the remote order
func CreatePaymentOrder(gw Gateway, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreatePaymentRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}
		if !input.Amount.IsPositive() {
			_ = c.Error(apperror.Validation("amount must be positive"))
			return
		}

		receipt := payment.NewReceipt()
		remote, err := gw.CreateOrder(c.Request.Context(), input.Amount, receipt)
		if err != nil {
			log.WithError(err).WithField("receipt", receipt).Error("payment gateway order failed")
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "payment gateway unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "payment order created", "order": remote})
	}
}

// VerifyPayment checks the gateway callback signature
func VerifyPayment(gw Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input VerifyPaymentRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}
		if err := payment.VerifySignature(gw.Secret(), input.OrderRef, input.PaymentRef, input.Signature); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "payment verified"})
	}
}
