package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/andela/bucketlist/internal/auth"
	"github.com/andela/bucketlist/internal/buckets"
	"github.com/andela/bucketlist/internal/mail"
	"github.com/andela/bucketlist/internal/search"
)

// SetupRoutes constructs all repositories, services and handlers, and
// registers every route with the Echo instance. This is the single place
// where the dependency graph is assembled.
func (a *App) SetupRoutes() {
	mailer := mail.New(a.Config.SMTP)

	// Auth: user accounts, tokens, sessions.
	userRepo := auth.NewUserRepository(a.DB)
	tokens := auth.NewTokenService(a.Config.Auth.SecretKey, a.Config.Auth.TokenTTL)
	sessions := auth.NewSessionStore(a.Redis, a.Config.Auth.SessionTTL)
	authService := auth.NewAuthService(userRepo, tokens, sessions, mailer, a.Config.Auth.BcryptCost)
	authHandler := auth.NewHandler(authService)
	auth.RegisterRoutes(a.Echo, authHandler, authService)

	// Buckets and their activities.
	bucketRepo := buckets.NewRepository(a.DB)
	bucketService := buckets.NewBucketService(bucketRepo, a.Config.BaseURL)
	bucketHandler := buckets.NewHandler(bucketService)
	buckets.RegisterRoutes(a.Echo, bucketHandler, authService)

	// Cross-entity search.
	searchService := search.NewSearchService(bucketRepo)
	searchHandler := search.NewHandler(searchService)
	search.RegisterRoutes(a.Echo, searchHandler, authService)

	// Liveness/readiness probe. Checks both backing stores so a broken
	// dependency takes the instance out of rotation.
	a.Echo.GET("/healthz", a.healthz)
}

func (a *App) healthz(c echo.Context) error {
	ctx := c.Request().Context()

	if err := a.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "cache unreachable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
