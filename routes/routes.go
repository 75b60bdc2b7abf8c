package routes

import (
	"net/http"

	paymentControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/payment"
	"github.com/Raqibreyaz/EcommerceBackend/events"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/middleware"
	"github.com/Raqibreyaz/EcommerceBackend/services/cart"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/Raqibreyaz/EcommerceBackend/services/order"
	"github.com/Raqibreyaz/EcommerceBackend/services/returns"
	"github.com/Raqibreyaz/EcommerceBackend/services/review"
	"github.com/Raqibreyaz/EcommerceBackend/services/wishlist"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps is everything the handlers are built from.
type Deps struct {
	DB        *gorm.DB
	Log       logrus.FieldLogger
	JWTSecret string
	Media     media.Store
	Hub       *events.Hub
	Gateway   paymentControllers.Gateway
	Catalog   *catalog.Manager
	Carts     *cart.Service
	Orders    *order.Ledger
	Returns   *returns.Workflow
	Wishlist  *wishlist.Service
	Reviews   *review.Service
}

// SetupRoutes is the single entry point that wires up the public, user and admin route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger(d.Log), middleware.ErrorHandler(d.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "ok"})
	})

	// Public catalog browsing
	SetupProductRoutes(r, d)

	// JWT-protected customer routes
	auth := r.Group("/", middleware.ValidateToken(d.JWTSecret))
	SetupUserRoutes(auth, d)
	SetupOrderRoutes(auth, d)
	SetupPaymentRoutes(auth, d)

	// Admin-only routes
	admin := r.Group("/", middleware.ValidateToken(d.JWTSecret), middleware.RequireRole(middleware.RoleAdmin))
	SetupAdminRoutes(admin, d)
}
