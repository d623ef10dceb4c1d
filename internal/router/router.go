package router

import (
	"github.com/gin-gonic/gin"
	"github.com/safedine/safedine-backend/config"
	"github.com/safedine/safedine-backend/internal/app/controller"
	"github.com/safedine/safedine-backend/internal/middleware"
)

type Router struct {
	authController          *controller.AuthController
	establishmentController *controller.EstablishmentController
	reviewController        *controller.ReviewController
	uploadController        *controller.UploadController
	authMiddleware          *middleware.AuthMiddleware
	config                  *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	establishmentController *controller.EstablishmentController,
	reviewController *controller.ReviewController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:          authController,
		establishmentController: establishmentController,
		reviewController:        reviewController,
		uploadController:        uploadController,
		authMiddleware:          authMiddleware,
		config:                  cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "SafeDine API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		establishments := v1.Group("/establishments")
		{
			establishments.GET("", r.establishmentController.ListEstablishments)
			establishments.GET("/:id", r.establishmentController.GetEstablishment)
			establishments.GET("/:id/reviews", r.reviewController.GetEstablishmentReviews)
			establishments.GET("/:id/stats", r.reviewController.GetEstablishmentStats)

			establishments.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.establishmentController.CreateEstablishment,
			)
			establishments.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.establishmentController.UpdateEstablishment,
			)
			establishments.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.establishmentController.DeleteEstablishment,
			)
			establishments.POST("/recompute-stats",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.establishmentController.RecomputeStats,
			)
		}

		chains := v1.Group("/chains")
		{
			chains.GET("/:id", r.establishmentController.GetChain)
			chains.GET("/:id/reviews", r.reviewController.GetChainReviews)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.GET("/:id", r.reviewController.GetReview)

			reviews.POST("", r.authMiddleware.Authenticate(), r.reviewController.CreateReview)
			reviews.PUT("/:id", r.authMiddleware.Authenticate(), r.reviewController.UpdateReview)
			reviews.DELETE("/:id", r.authMiddleware.Authenticate(), r.reviewController.DeleteReview)

			reviews.PUT("/:id/moderate",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.reviewController.ModerateReview,
			)
		}

		users := v1.Group("/users")
		users.Use(r.authMiddleware.Authenticate())
		{
			users.GET("/me/reviews", r.reviewController.GetMyReviews)
		}

		uploads := v1.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/presigned-url", r.uploadController.GetPresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
