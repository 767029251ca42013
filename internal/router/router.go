package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/platefull/platefull-api/internal/config"
	"github.com/platefull/platefull-api/internal/handlers"
	"github.com/platefull/platefull-api/internal/logger"
	"github.com/platefull/platefull-api/internal/middleware"
	"github.com/platefull/platefull-api/internal/repository"
	"github.com/platefull/platefull-api/internal/s3"
	"github.com/platefull/platefull-api/internal/service"
	"gorm.io/gorm"
)

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, database *gorm.DB) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowOrigins = []string{
		"https://platefull.app",
		"https://www.platefull.app",
	}
	if cfg.Settings != nil && len(cfg.Settings.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Settings.CORS.AllowedOrigins
	}
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Repositories
	userRepo := repository.NewUserRepository(database)
	tagRepo := repository.NewTagRepository(database)
	ingredientRepo := repository.NewIngredientRepository(database)
	recipeRepo := repository.NewRecipeRepository(database)

	// Recipe images live in S3
	imageStore := s3.New(cfg)

	// Services
	userService := service.NewUserService(cfg, userRepo, recipeRepo)
	tagService := service.NewTagService(cfg, tagRepo)
	ingredientService := service.NewIngredientService(cfg, ingredientRepo)
	recipeService := service.NewRecipeService(cfg, recipeRepo, tagRepo, ingredientRepo, userRepo, imageStore)
	shoppingListService := service.NewShoppingListService(cfg, recipeRepo)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	tagHandler := handlers.NewTagHandler(tagService)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)
	recipeHandler := handlers.NewRecipeHandler(recipeService, shoppingListService)

	// Signup and token endpoints are the cheapest brute-force targets
	authLimiter := middleware.RateLimitByIP(5, 10*time.Minute, time.Hour)

	// Group for API routes that don't require token verification
	apiPublic := r.Group("/v1")
	{
		// Create a new user
		apiPublic.POST("/users", authLimiter, userHandler.CreateUser)
		// Login a user
		apiPublic.POST("/auth/login", authLimiter, userHandler.LoginUser)
		// Refresh an access token
		apiPublic.POST("/auth/refresh", authLimiter, userHandler.RefreshToken)

		// Tag catalog
		apiPublic.GET("/tags", tagHandler.ListTags)
		apiPublic.GET("/tags/:tag_id", tagHandler.GetTag)

		// Ingredient catalog
		apiPublic.GET("/ingredients", ingredientHandler.ListIngredients)
		apiPublic.GET("/ingredients/:ingredient_id", ingredientHandler.GetIngredient)
	}

	// Group for public reads that render viewer-relative flags when the
	// caller is authenticated
	apiOptionalAuth := r.Group("/v1")
	{
		apiOptionalAuth.Use(middleware.OptionalVerifyTokenMiddleware(cfg))
		apiOptionalAuth.Use(middleware.AttachUserToContext(userService))

		// List recipes with filters
		apiOptionalAuth.GET("/recipes", recipeHandler.ListRecipes)
		// Get a single recipe by its ID
		apiOptionalAuth.GET("/recipes/:recipe_id", recipeHandler.GetRecipe)
		// List users
		apiOptionalAuth.GET("/users", userHandler.ListUsers)
		// Get a user's profile by their ID
		apiOptionalAuth.GET("/users/:user_id", userHandler.GetUser)
	}

	// Group for API routes that require token verification
	apiProtected := r.Group("/v1")
	{
		apiProtected.Use(middleware.VerifyTokenMiddleware(cfg))
		apiProtected.Use(middleware.AttachUserToContext(userService))

		// User-related routes

		// Get the authenticated user's own profile
		apiProtected.GET("/users/me", userHandler.GetMe)
		// List the authors the authenticated user follows
		apiProtected.GET("/users/subscriptions", userHandler.GetSubscriptions)
		// Subscribe to an author
		apiProtected.POST("/users/:user_id/subscribe", userHandler.Subscribe)
		// Unsubscribe from an author
		apiProtected.DELETE("/users/:user_id/subscribe", userHandler.Unsubscribe)

		// Recipe-related routes

		// Create a new recipe
		apiProtected.POST("/recipes", recipeHandler.CreateRecipe)
		// Update a recipe
		apiProtected.PATCH("/recipes/:recipe_id", recipeHandler.UpdateRecipe)
		// Delete a recipe
		apiProtected.DELETE("/recipes/:recipe_id", recipeHandler.DeleteRecipe)

		// Favorite and shopping cart toggles
		apiProtected.POST("/recipes/:recipe_id/favorite", recipeHandler.FavoriteRecipe)
		apiProtected.DELETE("/recipes/:recipe_id/favorite", recipeHandler.UnfavoriteRecipe)
		apiProtected.POST("/recipes/:recipe_id/shopping_cart", recipeHandler.AddToShoppingCart)
		apiProtected.DELETE("/recipes/:recipe_id/shopping_cart", recipeHandler.RemoveFromShoppingCart)

		// Download the aggregated shopping list as plain text
		apiProtected.GET("/recipes/download_shopping_cart", recipeHandler.DownloadShoppingCart)
	}

	return r
}
