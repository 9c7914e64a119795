package http

import (
	"time"

	"spyfall_webapp/internal/config"
	"spyfall_webapp/internal/http/handlers"
	"spyfall_webapp/internal/http/middleware"
	"spyfall_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps is everything the route table needs wired in.
type Deps struct {
	Handler *handlers.Handler
	Hub     *ws.Hub
	DB      *pgxpool.Pool
	Config  *config.Config
	Version string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	healthHandler := handlers.NewHealthHandler(d.DB, d.Version)

	// probes skip rate limiting
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	rateWindow := time.Duration(d.Config.APIRateWindowSeconds) * time.Second
	auth := middleware.Auth(d.Handler.Tokens)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(d.Config.APIRateLimit, rateWindow))
	{
		v1.POST("/auth", d.Handler.Auth)
		v1.GET("/me", auth, d.Handler.Me)
		v1.GET("/me/games", auth, d.Handler.MyGames)

		rooms := v1.Group("/rooms", auth)
		{
			rooms.POST("", d.Handler.CreateRoom)
			rooms.GET("/:id", d.Handler.RoomView)
			rooms.POST("/:id/join", d.Handler.JoinRoom)
			rooms.POST("/:id/kick", d.Handler.KickFromRoom)
			rooms.POST("/:id/start", d.Handler.StartGame)
			rooms.POST("/:id/eliminate", d.Handler.CastElimination)
		}
	}

	// live view pushes
	r.GET("/ws", ws.HandleWS(d.Hub, d.Handler.Tokens, d.Config.AllowedOrigin))
}
