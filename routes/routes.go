package routes

import (
	"github.com/gorilla/mux"

	"pantry-market/controllers"
	"pantry-market/middleware"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, productController *controllers.ProductController, orderController *controllers.OrderController, deliveryController *controllers.DeliveryController) {
	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/users", userController.Register).Methods("POST")
	api.HandleFunc("/users/login", userController.Login).Methods("POST")
	api.HandleFunc("/products", productController.GetProducts).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/users/profile", userController.GetProfile).Methods("GET")
	protected.HandleFunc("/users/profile", userController.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/users/{id}", userController.DeleteUser).Methods("DELETE")

	// Vendor routes
	vendor := api.PathPrefix("/products").Subrouter()
	vendor.Use(middleware.AuthMiddleware)
	vendor.Use(middleware.VendorMiddleware)
	vendor.HandleFunc("", productController.CreateProduct).Methods("POST")
	vendor.HandleFunc("/vendor", productController.GetVendorProducts).Methods("GET")
	vendor.HandleFunc("/stats", productController.GetVendorStats).Methods("GET")
	vendor.HandleFunc("/{id}", productController.UpdateProduct).Methods("PUT")
	vendor.HandleFunc("/{id}", productController.DeleteProduct).Methods("DELETE")

	// /products/{id} must come after /products/vendor and /products/stats
	api.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")

	// Order routes
	protected.HandleFunc("/orders", orderController.CreateOrder).Methods("POST")
	protected.HandleFunc("/orders", orderController.GetOrders).Methods("GET")
	protected.HandleFunc("/orders/{id}", orderController.GetOrderByID).Methods("GET")

	// Delivery routes
	protected.HandleFunc("/deliveries", deliveryController.CreateDelivery).Methods("POST")
	protected.HandleFunc("/deliveries/order/{orderId}", deliveryController.GetDeliveryByOrder).Methods("GET")

	// Driver routes
	driver := api.PathPrefix("/deliveries").Subrouter()
	driver.Use(middleware.AuthMiddleware)
	driver.Use(middleware.DriverMiddleware)
	driver.HandleFunc("/mine", deliveryController.ListMyDeliveries).Methods("GET")

	// Admin routes
	admin := api.PathPrefix("").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/users", userController.ListUsers).Methods("GET")
	admin.HandleFunc("/orders/{id}/status", orderController.UpdateOrderStatus).Methods("PUT")
	admin.HandleFunc("/orders/{id}/payment", orderController.UpdatePaymentStatus).Methods("PUT")
	admin.HandleFunc("/deliveries", deliveryController.ListDeliveries).Methods("GET")
	admin.HandleFunc("/deliveries/{id}/status", deliveryController.UpdateDeliveryStatus).Methods("PUT")
	admin.HandleFunc("/deliveries/{id}", deliveryController.DeleteDelivery).Methods("DELETE")
}
