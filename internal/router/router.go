package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"recipebox/internal/auth"
	"recipebox/internal/config"
	"recipebox/internal/handler"
	mw "recipebox/internal/middleware"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userHandler *handler.UserHandler,
	authHandler *handler.AuthHandler,
	recipeHandler *handler.RecipeHandler,
	tagHandler *handler.TagHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	public := api.Group("", mw.RateLimit(5, 10))
	public.POST("/users", userHandler.CreateUser)
	public.POST("/users/token", authHandler.Token)
	public.POST("/users/token/refresh", authHandler.Refresh)
	public.POST("/users/token/logout", authHandler.Logout)

	// Secured routes (require a bearer token)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	secured.GET("/users/me", userHandler.Me)

	// Recipe routes
	secured.GET("/recipes", recipeHandler.List)
	secured.POST("/recipes", recipeHandler.Create)
	secured.GET("/recipes/:id", recipeHandler.Get)
	secured.PUT("/recipes/:id", recipeHandler.Put)
	secured.PATCH("/recipes/:id", recipeHandler.Patch)
	secured.DELETE("/recipes/:id", recipeHandler.Delete)

	// Tag routes
	secured.GET("/tags", tagHandler.List)
	secured.PATCH("/tags/:id", tagHandler.Update)
	secured.DELETE("/tags/:id", tagHandler.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
