package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/api/handlers"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/api/middleware"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/config"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/services"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, blobStore storage.BlobStore, taskClient handlers.IAsynqClient) *gin.Engine {
	// Initialize services needed by API handlers
	sellerService := services.NewSellerService(db)
	carService := services.NewCarService(db, rdb, cfg)
	feedbackService := services.NewFeedbackService(db)
	imageService := services.NewImageService(blobStore, cfg.ImageMaxSizeBytes)

	r := gin.Default()

	// Apply global middleware first (order matters)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	sellerHandler := handlers.NewRestSellerHandler(cfg, sellerService)
	carHandler := handlers.NewRestCarHandler(carService, imageService, taskClient, cfg.ImageMaxSizeBytes)
	feedbackHandler := handlers.NewRestFeedbackHandler(feedbackService, taskClient)

	v1 := r.Group("/v1")
	{
		// Public routes
		v1.POST("/register", sellerHandler.Register)
		v1.POST("/login", sellerHandler.Login)
		v1.GET("/cars/search", carHandler.SearchCars)
		v1.GET("/cars/:id", carHandler.GetCar)
		v1.GET("/cars/:id/feedback", feedbackHandler.ListFeedback)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Routes requiring an authenticated seller
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authed.GET("/my/cars", carHandler.ListMyCars)
			authed.POST("/cars", carHandler.CreateCar)
			authed.PUT("/cars/:id", carHandler.UpdateCar)
			authed.DELETE("/cars/:id", carHandler.DeleteCar)
			authed.POST("/cars/:id/image", carHandler.UploadCarImage)
			authed.POST("/cars/:id/feedback", feedbackHandler.SubmitFeedback)
		}
	}

	return r
}
