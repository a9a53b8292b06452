package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"gameconsole-backend/config"
	"gameconsole-backend/internal/mw"
	"gameconsole-backend/internal/notification"
	"gameconsole-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.Config, webpushOptions *webpush.Options, pool *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, cfg, webpushOptions, pool)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/consoles", handler.GetConsoles)
		api.GET("/consoles/:id/qr", caching, handler.GetConsoleQR)

		api.GET("/reservations", handler.GetReservations)
		api.POST("/reservations", handler.CreateReservation)
		api.POST("/reservations/:id/validate", handler.ValidateReservation)
		api.DELETE("/reservations/:id", handler.CancelReservation)

		api.GET("/operations", caching, handler.GetOperations)
		api.GET("/scan/:number", handler.CheckScanNumber)

		api.POST("/auth/login", handler.Login)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		admin := api.Group("/consoles", mw.RequireAdmin(cfg.Auth.JWTSecret))
		{
			admin.POST("/:id/disable", handler.SetConsoleDisabled(true))
			admin.POST("/:id/enable", handler.SetConsoleDisabled(false))
		}
	}

	return r
}
