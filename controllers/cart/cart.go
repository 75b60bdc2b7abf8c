package cartControllers

import (
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/middleware"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/services/cart"
	"github.com/gin-gonic/gin"
)

type CartItemInput struct {
	Color    string `json:"color" binding:"required"`
	Size     string `json:"size" binding:"required"`
	Quantity int    `json:"quantity"`
}

type RemoveItemInput struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Size      string `json:"size" binding:"required"`
}

func respond(c *gin.Context, carts *cart.Service, message string) {
	lines, err := carts.FetchCart(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "products": lines})
}

// PUT /cart/add-product/:productId
func UpsertCartItem(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := request.ID(c, "productId")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}

		key := models.VariantKey{ProductID: productID, Color: input.Color, Size: input.Size}
		if err := carts.UpsertLine(c.Request.Context(), middleware.UserID(c), key, input.Quantity); err != nil {
			_ = c.Error(err)
			return
		}
		respond(c, carts, "product added to cart")
	}
}

// DELETE /cart/delete-product
func DeleteCartItem(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RemoveItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}

		key := models.VariantKey{ProductID: input.ProductID, Color: input.Color, Size: input.Size}
		if err := carts.RemoveLine(c.Request.Context(), middleware.UserID(c), key); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "product removed from cart"})
	}
}

// DELETE /cart
func ClearUserCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := carts.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "cart cleared"})
	}
}

// GET /cart
func GetUserCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, carts, "cart fetched successfully")
	}
}
