package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/pawcare-app/booking-engine/internal/cache"
	"github.com/pawcare-app/booking-engine/internal/catalog"
	"github.com/pawcare-app/booking-engine/internal/config"
	"github.com/pawcare-app/booking-engine/internal/httpapi"
	"github.com/pawcare-app/booking-engine/internal/notifier"
	"github.com/pawcare-app/booking-engine/internal/repository"
	"github.com/pawcare-app/booking-engine/internal/schedule"
	"github.com/pawcare-app/booking-engine/internal/service/booking"
)

const projectName = "pawcare-booking"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\nStack trace:\n%s", err, debug.Stack())
	}

	if cfg.EnableTracing {
		if err := xray.Configure(xray.Config{
			DaemonAddr:     "127.0.0.1:2000",
			ServiceVersion: "1.0.0",
		}); err != nil {
			log.Printf("Failed to configure X-Ray: %v", err)
			if configErr := xray.Configure(xray.Config{}); configErr != nil {
				log.Fatalf("Failed to configure default X-Ray settings: %v", configErr)
			}
		}
		os.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
	}

	db, err := repository.NewDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v\nStack trace:\n%s", err, debug.Stack())
	}
	defer db.Close()

	notificationRepo := repository.NewNotificationRepository(db)
	dispatchers := notifier.Multi{notifier.NewRecordDispatcher(notificationRepo)}
	if os.Getenv("ENV") != "LOCAL" && cfg.SFN.StateMachineARN != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v\nStack trace:\n%s", err, debug.Stack())
		}
		dispatchers = append(dispatchers,
			notifier.NewSFNDispatcher(sfn.NewFromConfig(awsCfg), cfg.SFN.StateMachineARN))
	}

	var availabilityCache cache.Cache
	if cfg.Redis.Addr != "" {
		availabilityCache = cache.NewRedisCache(cfg.Redis.Addr, projectName)
	}

	service := booking.NewService(
		db,
		repository.NewLocationRepository(db),
		repository.NewSlotInventoryRepository(db),
		repository.NewReservationRepository(db),
		repository.NewPetRepository(db),
		catalog.NewSQLResolver(db),
		dispatchers,
		availabilityCache,
		schedule.RealClock{},
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: httpapi.NewRouter(httpapi.NewHandler(service, notificationRepo)),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", server.Addr)
		errChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
		}
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v\nStack trace:\n%s", err, debug.Stack())
		}
	}
}
