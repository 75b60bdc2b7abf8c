package reviewControllers

import (
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/middleware"
	"github.com/Raqibreyaz/EcommerceBackend/services/review"
	"github.com/gin-gonic/gin"
)

type ReviewInput struct {
	Headline string `json:"headline" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Rating   int    `json:"rating"`
}

func (in ReviewInput) toService() review.Input {
	return review.Input{Headline: in.Headline, Body: in.Body, Rating: in.Rating}
}

// GetProductReviews lists a product's reviews, e.g. /products/3/reviews?page=2&limit=10
func GetProductReviews(s *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		page, limit := request.Page(c, 10)
		reviews, err := s.List(c.Request.Context(), id, page, limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "reviews fetched successfully", "reviews": reviews})
	}
}

func CreateReview(s *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var input ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}
		r, err := s.Create(c.Request.Context(), middleware.UserID(c), id, input.toService())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "review created successfully", "review": r})
	}
}

func EditReview(s *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		reviewID, err := request.ID(c, "reviewId")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var input ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}
		r, err := s.UpdateOwn(c.Request.Context(), middleware.UserID(c), id, reviewID, input.toService())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "review updated successfully", "review": r})
	}
}
