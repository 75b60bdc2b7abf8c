package userControllers

import (
	"net/http"
	"strings"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/middleware"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type UpdateUserInput struct {
	Name    *string         `json:"name"`
	Email   *string         `json:"email" binding:"omitempty,email"`
	Address *models.Address `json:"address"`
}

// GET /user
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {
			_ = c.Error(apperror.FromDB(err, "user"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "user fetched successfully", "user": user})
	}
}

// GET /admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := request.Page(c, 20)
		q := db.WithContext(c.Request.Context()).Model(&models.User{}).Session(&gorm.Session{})

		var total int64
		if err := q.Count(&total).Error; err != nil {
			_ = c.Error(errors.Wrap(err, "count users"))
			return
		}
		var users []models.User
		err := q.Order("created_at desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&users).Error
		if err != nil {
			_ = c.Error(errors.Wrap(err, "list users"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "users fetched successfully", "users": users, "total": total})
	}
}

// PUT /user
// The profile row is created on first update; the id always comes from the token.
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}

		var user models.User
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where(models.User{ID: middleware.UserID(c)}).FirstOrInit(&user).Error; err != nil {
				return errors.Wrap(err, "load user")
			}
			if input.Name != nil {
				user.Name = strings.TrimSpace(*input.Name)
			}
			if input.Email != nil {
				user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
			}
			if input.Address != nil {
				user.Address = *input.Address
			}
			if user.Email == "" {
				return apperror.Validation("email is required")
			}
			if user.Role == "" {
				user.Role = middleware.RoleCustomer
			}
			return apperror.FromDB(tx.Save(&user).Error, "email")
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "user updated successfully", "user": user})
	}
}
