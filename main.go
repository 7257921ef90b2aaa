package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"pantry-market/controllers"
	"pantry-market/routes"
	"pantry-market/store"
	"pantry-market/utils"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Initialize EmailService (nil when no token is configured)
	emailService := utils.NewEmailService()
	if emailService == nil {
		log.Println("POSTMARK_API_TOKEN not set; email notifications disabled.")
	}

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()
	db := client.Database(utils.DatabaseName())

	// Initialize stores
	userStore := store.NewMongoUserStore(db)
	productStore := store.NewMongoProductStore(db)
	orderStore := store.NewMongoOrderStore(client, db)
	deliveryStore := store.NewMongoDeliveryStore(db)

	// Initialize controllers
	userController := controllers.NewUserController(userStore)
	productController := controllers.NewProductController(productStore, userStore)
	orderController := controllers.NewOrderController(orderStore, productStore, deliveryStore, userStore, emailService)
	deliveryController := controllers.NewDeliveryController(deliveryStore, orderStore, userStore)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, productController, orderController, deliveryController)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Printf("Server is running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
