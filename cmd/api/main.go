package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/config"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/handler"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/httpserver"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/repository"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/db"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Repositories
	logRepo := repository.NewNotificationLogRepository(dbConn, log)

	// Handlers
	notificationHandler := handler.NewNotificationHandler(logRepo, log)

	// Router
	router := httpserver.NewRouter(notificationHandler, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("Starting notification API", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server start failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notification API...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Notification API shutdown complete")
}
