package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/umai/recipe-api/docs"
	"github.com/umai/recipe-api/internal/api/handler"
	"github.com/umai/recipe-api/internal/api/middleware"
	"github.com/umai/recipe-api/internal/core/ports"
)

const bodyLimit = "20M"

// Deps are the collaborators the HTTP layer needs. Services are built by main.
type Deps struct {
	Auth     ports.AuthService
	Ledger   ports.LedgerService
	Recipes  ports.RecipeService
	Posts    ports.PostService
	Users    ports.UserService
	Payments ports.PaymentService

	Tokens     ports.TokenService
	UserFinder middleware.UserFinder

	// Readiness checks, keyed by dependency name.
	Checks map[string]handler.Check

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	promCfg := echoprometheus.MiddlewareConfig{Subsystem: "http"}
	promHandler := echoprometheus.HandlerConfig{}
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		promHandler.Gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Operational endpoints (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(promHandler))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Authenticated routes ---
	recipeHandler := handler.NewRecipeHandler(d.Recipes)
	postHandler := handler.NewPostHandler(d.Posts)
	userHandler := handler.NewUserHandler(d.Users)
	ledgerHandler := handler.NewLedgerHandler(d.Ledger)
	paymentHandler := handler.NewPaymentHandler(d.Payments)

	g := e.Group("", middleware.Authenticate(d.Tokens, d.UserFinder))

	g.GET("/recipes", recipeHandler.List)
	g.GET("/recipe/:id", recipeHandler.Get)
	g.POST("/recipe", recipeHandler.Create)

	g.POST("/post", postHandler.Create)
	g.GET("/posts", postHandler.List)

	g.GET("/self", userHandler.Self)
	g.GET("/user/:id", userHandler.Profile)
	g.POST("/finished-recipe", userHandler.FinishRecipe)
	g.GET("/ranking", userHandler.Ranking)

	g.PATCH("/topup", ledgerHandler.TopUp)
	g.POST("/donate", ledgerHandler.Donate)
	g.POST("/create-payment-intent", paymentHandler.CreatePaymentIntent)

	return e
}
