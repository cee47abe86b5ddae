package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"golang.org/x/sync/errgroup"

	"parking_rental/internal/api"
	"parking_rental/internal/api/handler"
	"parking_rental/internal/api/middleware"
	"parking_rental/internal/config"
	"parking_rental/internal/iot"
	"parking_rental/internal/repository"
	"parking_rental/internal/repository/memory"
	"parking_rental/internal/repository/postgresql"
	"parking_rental/internal/repository/sqlite"
	"parking_rental/internal/rmq"
	"parking_rental/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Open the lot store
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Could not open %s store: %v", cfg.StoreDriver, err)
	}
	defer store.Close()
	log.Printf("Using %s lot store.", cfg.StoreDriver)

	// 3. Core services
	wsManager := handler.NewWebSocketManager()
	parkingService := service.NewParkingService(store, cfg.DefaultDailyMax, wsManager)
	if err := parkingService.Load(ctx); err != nil {
		log.Fatalf("Could not load parking lot: %v", err)
	}

	staff, err := service.StaffUsers(cfg)
	if err != nil {
		log.Fatalf("Could not build staff accounts: %v", err)
	}
	authService := service.NewAuthService(staff, cfg.JWTSecret, cfg.JWTExpirationHours)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 4. RabbitMQ spot event feed
	if cfg.RabbitMQURL != "" {
		rmqClient, err := rmq.NewClient(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("Could not connect to RabbitMQ: %v", err)
		}
		defer rmqClient.Close()
		parkingService.AddNotifier(rmq.NewEventPublisher(rmqClient))
		log.Printf("Publishing spot events to exchange %s.", cfg.RabbitMQExchange)
	}

	// 5. AWS gate integration
	var lprService *service.LPRService
	var sqsConsumer *iot.SQSConsumer
	if cfg.AWSEnabled() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Could not load AWS SDK config: %v", err)
		}
		log.Println("AWS SDK config loaded for region:", cfg.AWSRegion)

		if cfg.IoTMQTTEndpoint != "" {
			iotClient := iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
				endpoint := cfg.IoTMQTTEndpoint
				if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
					endpoint = "https://" + endpoint
				}
				o.BaseEndpoint = aws.String(endpoint)
			})
			parkingService.AddNotifier(iot.NewGatePublisher(iotClient, cfg.IoTGateTopicPrefix))
			log.Printf("Publishing barrier commands under %s.", cfg.IoTGateTopicPrefix)
		}
		if cfg.SQSGateQueueURL != "" {
			sqsConsumer = iot.NewSQSConsumer(sqs.NewFromConfig(awsCfg), cfg.SQSGateQueueURL, service.NewGateService(parkingService))
		} else {
			log.Println("WARNING: SQS_GATE_QUEUE_URL is not set. Gate commands will not be consumed.")
		}
		if cfg.LPREnabled {
			lprService = service.NewLPRService(rekognition.NewFromConfig(awsCfg))
		}
	}

	// 6. HTTP server
	router := api.SetupRouter(authService, parkingService, authMiddleware, lprService, wsManager)
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsManager.Start(gctx)
	})
	if sqsConsumer != nil {
		g.Go(func() error {
			return sqsConsumer.Start(gctx)
		})
	}
	g.Go(func() error {
		log.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped with error: %v", err)
		return
	}
	log.Println("Server stopped.")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.LotStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.NewLotStore(), nil
	case config.StoreSQLite:
		db, err := sqlite.NewDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlite.NewSQLiteLotStore(db), nil
	case config.StorePostgres:
		db, err := postgresql.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return postgresql.NewPgLotStore(db), nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
