package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spyfall_webapp/internal/config"
	"spyfall_webapp/internal/db"
	"spyfall_webapp/internal/domain"
	"spyfall_webapp/internal/game"
	httpServer "spyfall_webapp/internal/http"
	"spyfall_webapp/internal/http/handlers"
	"spyfall_webapp/internal/http/middleware"
	"spyfall_webapp/internal/logger"
	"spyfall_webapp/internal/repository"
	"spyfall_webapp/internal/service"
	"spyfall_webapp/internal/session"
	"spyfall_webapp/internal/store"
	"spyfall_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	dbPool := db.Connect(cfg.DatabaseURL)
	if dbPool != nil {
		defer dbPool.Close()
	}

	st := store.NewMemory()
	sessions := session.NewService(st, session.Defaults{
		MaxUsers:    cfg.RoomMaxUsers,
		SessionTime: cfg.SessionTimeSeconds,
		StartRounds: cfg.StartRounds,
	})
	engine := game.NewEngine(st)
	tokens := service.NewTokens(cfg.JWTSecret, 24*time.Hour)

	var records *repository.GameRecordRepository
	if dbPool != nil {
		records = repository.NewGameRecordRepository(dbPool)
	}
	engine.OnFinished(recordOutcomes(records))

	hub := ws.NewHub(st, sessions, engine)
	hub.StartCleanup()

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	r := gin.Default()
	r.Use(corsMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Handler: handlers.NewHandler(sessions, engine, tokens, records),
		Hub:     hub,
		DB:      dbPool,
		Config:  cfg,
		Version: version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// recordOutcomes bumps the outcome counters and, when persistence is
// configured, writes one history row per roster participant.
func recordOutcomes(records *repository.GameRecordRepository) game.FinishedFunc {
	return func(roomID string, snap domain.GameSnapshot) {
		handlers.GamesFinished.WithLabelValues(string(snap.Phase)).Inc()

		if records == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		go func() {
			defer cancel()
			for _, id := range append(append([]string{}, snap.ActiveUsers...), snap.KilledUsers...) {
				rec := &domain.GameRecord{
					RoomID:    roomID,
					AccountID: id,
					Role:      domain.RoleAgent,
					Outcome:   domain.OutcomeWin,
					SpyID:     snap.Spy,
					Location:  snap.Location,
				}
				if id == snap.Spy {
					rec.Role = domain.RoleSpy
				}
				// agents win when the spy is caught; the spy wins otherwise
				spyWon := snap.Phase == domain.PhaseResultLose
				if spyWon != (rec.Role == domain.RoleSpy) {
					rec.Outcome = domain.OutcomeLose
				}
				if err := records.Create(ctx, rec); err != nil {
					logger.Error("recording game outcome failed", "room", roomID, "account", id, "error", err)
				}
			}
		}()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
