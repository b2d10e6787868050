package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/fleetwatch/internal/auth"
	"github.com/monocle-dev/fleetwatch/internal/handlers"
	"github.com/monocle-dev/fleetwatch/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Handler        *handlers.Handler
	Hub            *handlers.Hub
	Credentials    middleware.CredentialVerifier
	Tokens         *auth.TokenIssuer
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(d.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = d.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	r.GET("/", handlers.Index)

	// A nil *TokenIssuer must not reach the middleware as a non-nil interface.
	var tokens middleware.TokenVerifier
	if d.Tokens != nil {
		tokens = d.Tokens
	}
	gate := middleware.AuthMiddleware(d.Credentials, tokens)

	if d.Gatherer != nil {
		r.GET("/metrics", gate, gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		private := api.Group("", gate)
		{
			private.GET("/ready", d.Handler.Ready)
			private.GET("/status", handlers.Status)
			private.GET("/metrics", handlers.MetricsInfo)

			private.POST("/register", d.Handler.Register)
			private.POST("/heartbeat", d.Handler.Heartbeat)
			private.POST("/upload", d.Handler.Upload)

			private.GET("/servers", d.Handler.Servers)
			private.GET("/history", d.Handler.History)
			private.GET("/delete_server", d.Handler.DeleteServer)

			if d.Hub != nil {
				private.GET("/ws", d.Hub.WebSocket)
			}
			if d.Tokens != nil {
				private.POST("/login", handlers.Login(d.Tokens))
			}
		}
	}

	return r
}
