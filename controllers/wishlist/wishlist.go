package wishlistControllers

import (
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/middleware"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/services/wishlist"
	"github.com/gin-gonic/gin"
)

type VariantInput struct {
	Color string `json:"color" binding:"required"`
	Size  string `json:"size" binding:"required"`
}

func variantKey(c *gin.Context) (models.VariantKey, error) {
	id, err := request.ID(c, "productId")
	if err != nil {
		return models.VariantKey{}, err
	}
	var input VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return models.VariantKey{}, request.Invalid(err)
	}
	return models.VariantKey{ProductID: id, Color: input.Color, Size: input.Size}, nil
}

func GetWishlist(s *wishlist.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := s.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "wishlist fetched successfully", "products": entries})
	}
}

func AddToWishlist(s *wishlist.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := variantKey(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if err := s.Add(c.Request.Context(), middleware.UserID(c), key); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "product added to wishlist"})
	}
}

func RemoveFromWishlist(s *wishlist.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := variantKey(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if err := s.Remove(c.Request.Context(), middleware.UserID(c), key); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "product removed from wishlist"})
	}
}

// IsInWishlist reports whether any variant of the product is saved
func IsInWishlist(s *wishlist.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "productId")
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok, err := s.Contains(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "wishlist checked", "exists": ok})
	}
}
