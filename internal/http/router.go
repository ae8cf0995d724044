package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/staynest/staynest/internal/auth"
	"github.com/staynest/staynest/internal/cache"
	"github.com/staynest/staynest/internal/config"
	"github.com/staynest/staynest/internal/http/handlers"
	"github.com/staynest/staynest/internal/http/middlewares"
	"github.com/staynest/staynest/internal/observability"
)

const maxJSONBody = 1 << 20

// Deps carries everything the router wires together, so main stays a thin
// assembly line and tests can swap in memory-backed pieces.
type Deps struct {
	Cfg      config.Config
	Log      *slog.Logger
	Users    handlers.UserStore
	Places   handlers.PlaceStore
	Bookings handlers.BookingStore
	Cache    cache.Store
	JWT      SessionManager
	Prom     *observability.Prom
	Registry *prometheus.Registry
	Ping     func(ctx context.Context) error
}

// SessionManager is both sides of the session token lifecycle; auth.Manager
// satisfies it, tests substitute fakes.
type SessionManager interface {
	Issue(ident auth.Identity) (string, error)
	Verify(raw string) (auth.Identity, error)
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(deps.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.CORSOrigins))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinMiddleware())
	}

	if deps.Cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("staynest"))
	}

	// health and metrics stay outside the JSON body guards
	health := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	authMW := middlewares.NewAuthMiddleware(deps.JWT)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT, deps.Cfg)
	placesHandler := handlers.NewPlacesHandler(deps.Places, deps.Cache)
	bookingsHandler := handlers.NewBookingsHandler(deps.Bookings)
	uploadsHandler := handlers.NewUploadsHandler(deps.Cfg.UploadDir)

	// uploaded photos are public once stored
	r.Static("/uploads", deps.Cfg.UploadDir)

	api := r.Group("", middlewares.RequireJSON(), middlewares.MaxBodyBytes(maxJSONBody))

	authLimiter := middlewares.NewRateLimiter(deps.Cfg.AuthRateLimit, deps.Cfg.AuthRateWindow)

	api.POST("/register", authLimiter.Middleware(), authHandler.Register)
	api.POST("/login", authLimiter.Middleware(), authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/profile", authMW.OptionalAuth(), authHandler.Profile)

	api.GET("/places", placesHandler.List)
	api.GET("/places/:id", placesHandler.Get)
	api.POST("/places", authMW.RequireAuth(), placesHandler.Create)
	api.PUT("/places", authMW.RequireAuth(), placesHandler.Update)
	api.GET("/user-places", authMW.RequireAuth(), placesHandler.ListMine)

	api.POST("/booking", authMW.RequireAuth(), bookingsHandler.Create)
	api.GET("/bookings", authMW.RequireAuth(), bookingsHandler.List)

	// multipart and binary bodies bypass the JSON guards
	r.POST("/upload", authMW.RequireAuth(), uploadsHandler.Upload)
	r.POST("/upload-by-link", authMW.RequireAuth(), middlewares.RequireJSON(), middlewares.MaxBodyBytes(maxJSONBody), uploadsHandler.UploadByLink)

	return r
}
