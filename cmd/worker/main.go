package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/config"
	mqcontracts "github.com/NuralamMRH/soletradeproject-sub004/contracts/mq"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/mqhandler"
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

	log.Info("Starting notification worker...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
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

	// Dispatcher + throttle
	throttleCache := throttle.NewMemoryCache()
	throttleWindow := time.Duration(cfg.Sweep.ThrottleWindowMinutes) * time.Minute
	dispatcher := service.NewDispatcher(userRepo, logRepo, rtPublisher, pushClient, busPublisher, log)

	// MQ handlers
	orderHandler := mqhandler.NewOrderPlacedHandler(dispatcher, log)
	priceHandler := mqhandler.NewPriceDropHandler(watchRepo, dispatcher, throttleCache, throttleWindow, log)

	// Consumers, one queue per routing key
	orderConsumer, err := mq.NewConsumer(cfg.MQ.URL, "notify.order.placed", mqcontracts.RoutingKeyOrderPlaced, log)
	if err != nil {
		log.Fatal("Failed to init order.placed consumer", zap.Error(err))
	}
	defer orderConsumer.Close()
	orderConsumer.SetHandler(orderHandler.Handle)

	priceConsumer, err := mq.NewConsumer(cfg.MQ.URL, "notify.price.dropped", mqcontracts.RoutingKeyPriceDropped, log)
	if err != nil {
		log.Fatal("Failed to init price.dropped consumer", zap.Error(err))
	}
	defer priceConsumer.Close()
	priceConsumer.SetHandler(priceHandler.Handle)

	go func() {
		if err := orderConsumer.StartConsuming(); err != nil {
			log.Fatal("order.placed consumer failed", zap.Error(err))
		}
	}()
	go func() {
		if err := priceConsumer.StartConsuming(); err != nil {
			log.Fatal("price.dropped consumer failed", zap.Error(err))
		}
	}()

	log.Info("Notification worker is running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notification worker...")
	orderConsumer.Close()
	priceConsumer.Close()
	log.Info("Notification worker shutdown complete")
}
