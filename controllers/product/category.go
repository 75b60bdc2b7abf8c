package productcontroller

import (
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/gin-gonic/gin"
)

type CategoryInput struct {
	Name string `json:"name" binding:"required"`
}

func CreateCategory(m *catalog.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}
		cat, err := m.CreateCategory(c.Request.Context(), input.Name)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "category created successfully", "category": cat})
	}
}

func GetCategories(m *catalog.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := m.Categories(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "categories fetched successfully", "categories": cats})
	}
}
