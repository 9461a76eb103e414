package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/config"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/push"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/realtime"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/repository"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/service"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/throttle"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/db"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/logger"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/mq"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	interval := time.Duration(cfg.Sweep.IntervalMinutes) * time.Minute
	throttleWindow := time.Duration(cfg.Sweep.ThrottleWindowMinutes) * time.Minute

	log.Info("Starting calendar sweeper...",
		zap.String("db_host", cfg.DB.Host),
		zap.Duration("interval", interval),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis (realtime channel)
	rdb := realtime.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	logRepo := repository.NewNotificationLogRepository(dbConn, log)
	productRepo := repository.NewProductRepository(dbConn, log)
	watchRepo := repository.NewWatchRepository(dbConn, log)

	// Delivery channels
	rtPublisher := realtime.NewPublisher(rdb, log)
	pushClient := push.NewExpoClient(cfg.Push, log)

	// Event bus publisher for notification.dispatched announcements
	busPublisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer busPublisher.Close()

	// Dispatcher + sweep
	throttleCache := throttle.NewMemoryCache()
	dispatcher := service.NewDispatcher(userRepo, logRepo, rtPublisher, pushClient, busPublisher, log)
	sweep := service.NewCalendarSweep(productRepo, watchRepo, dispatcher, throttleCache, throttleWindow, log)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go sweep.Start(sweepCtx, interval)

	// HTTP server for health checks and metrics
	engine := gin.Default()
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("Calendar sweeper is running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down calendar sweeper...")
	sweepCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Calendar sweeper shutdown complete")
}
