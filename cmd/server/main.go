package main

import (
	"log"
	"net/http"

	_ "recipebox/docs" // swagger docs

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"recipebox/internal/auth"
	"recipebox/internal/cache"
	"recipebox/internal/config"
	"recipebox/internal/db"
	"recipebox/internal/handler"
	"recipebox/internal/model"
	"recipebox/internal/repository"
	"recipebox/internal/router"
	"recipebox/internal/service"
)

// @title Recipe API
// @version 1.0
// @description Multi-tenant recipe management API with token authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Tag{},
		&model.Recipe{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tagRepo := repository.NewTagRepository(gormDB)
	recipeRepo := repository.NewRecipeRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	tagService := service.NewTagService(tagRepo, cacheClient)
	recipeService := service.NewRecipeService(recipeRepo, cacheClient)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)
	recipeHandler := handler.NewRecipeHandler(recipeService)
	tagHandler := handler.NewTagHandler(tagService)

	// Register routes
	router.Register(
		e,
		cfg,
		userHandler,
		authHandler,
		recipeHandler,
		tagHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
