package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/ecivil/civil-portal/docs"
	"github.com/ecivil/civil-portal/internal/api/handler"
	"github.com/ecivil/civil-portal/internal/api/middleware"
	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/service"
)

// RouterConfig carries everything NewRouter wires into the Echo instance.
type RouterConfig struct {
	Registry *service.Registry
	Log      zerolog.Logger

	// ClientSecret signs the client cookie.
	ClientSecret string
	ClientTTL    time.Duration
	SecureCookie bool

	// Mongo and Redis are only probed by readiness; nil means not configured.
	Mongo *mongo.Database
	Redis *redis.Client

	// Registerer receives the HTTP request metrics. Defaults to the
	// Prometheus default registerer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "ecivil",
		Skipper:    middleware.OperationalSkipper,
		Registerer: cfg.Registerer,
	}))
	e.Use(middleware.Client(cfg.Registry, middleware.ClientConfig{
		Secret: cfg.ClientSecret,
		TTL:    cfg.ClientTTL,
		Secure: cfg.SecureCookie,
	}, cfg.Log))

	// --- Operational endpoints (no client session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Mongo, cfg.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Public pages and auth actions ---
	portal := handler.NewPortalHandler()
	auth := handler.NewAuthHandler()

	e.GET(domain.LandingPath, portal.Public(handler.PageLanding))
	e.GET(domain.LoginPath, portal.Public(handler.PageLogin))
	e.POST(domain.LoginPath, auth.Login)
	e.GET("/register", portal.Public(handler.PageRegister))
	e.POST("/register", auth.Register)
	e.GET("/forgot-password", portal.Public(handler.PageForgotPassword))
	e.POST("/forgot-password", auth.ForgotPassword)
	e.POST("/logout", auth.Logout)
	e.GET("/session", auth.Session)

	// --- Role view trees, one gated group per capability ---
	for _, role := range domain.Roles {
		c := domain.Capabilities[role]
		g := e.Group(c.Prefix, middleware.Gate(string(role), role))
		g.GET("", portal.RedirectTo(c.Home))
		g.GET("/", portal.RedirectTo(c.Home))
		for _, v := range c.Views {
			g.GET(v.Path, portal.View(v.Name))
		}
		g.RouteNotFound("/*", portal.Unmatched)
	}

	e.RouteNotFound("/*", portal.Unmatched)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper:      middleware.OperationalSkipper,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
