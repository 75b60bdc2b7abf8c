package routes

import (
	cartControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/cart"
	productcontroller "github.com/Raqibreyaz/EcommerceBackend/controllers/product"
	reviewControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/review"
	userControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/user"
	wishlistControllers "github.com/Raqibreyaz/EcommerceBackend/controllers/wishlist"
	"github.com/gin-gonic/gin"
)

func SetupProductRoutes(r *gin.Engine, d Deps) {
	r.GET("/products", productcontroller.GetAllProducts(d.Catalog))     // GET /products?search=&category=&page=
	r.GET("/products/:id", productcontroller.GetProductByID(d.Catalog)) // GET /products/:id
	r.GET("/categories", productcontroller.GetCategories(d.Catalog))    // GET /categories

	r.GET("/products/:id/reviews", reviewControllers.GetProductReviews(d.Reviews)) // GET /products/:id/reviews?page=&limit=
}

// SetupUserRoutes registers profile, cart, review and wishlist endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.RouterGroup, d Deps) {
	// ──────────────── User Profile ────────────────
	r.GET("/user", userControllers.GetUser(d.DB))    // GET /user
	r.PUT("/user", userControllers.UpdateUser(d.DB)) // PUT /user

	// ──────────────── Shopping Cart ────────────────
	cartGroup := r.Group("/cart")
	{
		cartGroup.GET("", cartControllers.GetUserCart(d.Carts))
		cartGroup.PUT("/add-product/:productId", cartControllers.UpsertCartItem(d.Carts))
		cartGroup.DELETE("/delete-product", cartControllers.DeleteCartItem(d.Carts))
		cartGroup.DELETE("", cartControllers.ClearUserCart(d.Carts))
	}

	// ──────────────── Reviews ────────────────
	r.POST("/products/:id/reviews", reviewControllers.CreateReview(d.Reviews))
	r.PUT("/products/:id/reviews/:reviewId", reviewControllers.EditReview(d.Reviews))

	// ──────────────── Wishlist ────────────────
	wish := r.Group("/wishlist")
	{
		wish.GET("", wishlistControllers.GetWishlist(d.Wishlist))
		wish.POST("/:productId", wishlistControllers.AddToWishlist(d.Wishlist))
		wish.DELETE("/:productId", wishlistControllers.RemoveFromWishlist(d.Wishlist))
		wish.GET("/:productId/exists", wishlistControllers.IsInWishlist(d.Wishlist))
	}
}
