package routes

import (
	"github.com/gin-gonic/gin"

	"order-service/controllers"
	"order-service/middleware"
)

// RegisterOrderRoutes sets up all order-related routes.
func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController) {
	orderRoutes := r.Group("/orders")
	orderRoutes.Use(middleware.AuthMiddleware())
	orderRoutes.POST("", oc.CreateOrder)
	orderRoutes.GET("", oc.GetOrders)
	orderRoutes.GET("/:id", oc.GetOrderByID)
	orderRoutes.PUT("/:id/pay", oc.PayOrder)
	orderRoutes.PUT("/:id/cancel", oc.CancelOrder)

	adminOrderRoutes := orderRoutes.Group("")
	adminOrderRoutes.Use(middleware.AdminOnly())
	adminOrderRoutes.PUT("/:id/status", oc.UpdateOrderStatus)

	adminRoutes := r.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	adminRoutes.GET("/orders", oc.GetAllOrders)
	adminRoutes.GET("/orders/stats", oc.GetOrderStats)
}

// RegisterProductRoutes sets up catalog routes. Reads are open to any
// authenticated user; writes are admin only.
func RegisterProductRoutes(r *gin.Engine, pc *controllers.ProductController) {
	productRoutes := r.Group("/products")
	productRoutes.Use(middleware.AuthMiddleware())
	productRoutes.GET("", pc.ListProducts)
	productRoutes.GET("/:id", pc.GetProduct)

	adminProducts := productRoutes.Group("")
	adminProducts.Use(middleware.AdminOnly())
	adminProducts.POST("", pc.CreateProduct)
	adminProducts.PUT("/:id", pc.UpdateProduct)
	adminProducts.PUT("/:id/stock", pc.SetStock)
	adminProducts.DELETE("/:id", pc.DeactivateProduct)
}
