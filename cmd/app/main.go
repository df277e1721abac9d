package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"procurement/cmd"
	httpin "procurement/internal/adapters/in/http"
	"procurement/internal/adapters/out/bookingstore"
	"procurement/internal/adapters/out/postgres"
	"procurement/internal/adapters/out/rabbitmq"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// The .env file is optional; the environment wins when both are set.
	_ = godotenv.Load(".env")
	configs := getConfigs()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB := mustOpenOrderStore(configs)
	bookingDB, err := bookingstore.Open(ctx, configs.BookingDBDSN)
	if err != nil {
		log.Fatalf("Error connecting to the booking store: %v", err)
	}
	defer bookingDB.Close()
	if err = bookingstore.EnsureSchema(ctx, bookingDB); err != nil {
		log.Fatalf("Error preparing the booking store: %v", err)
	}

	broker, err := rabbitmq.Dial(configs.RabbitMQURL, configs.RabbitMQExchange)
	if err != nil {
		log.Fatalf("Error connecting to RabbitMQ: %v", err)
	}
	defer broker.Close()

	app := cmd.NewCompositionRoot(configs, gormDB, bookingDB, broker.Channel(), logger)

	jobManager, err := app.CreateJobManager()
	if err != nil {
		log.Fatalf("Error configuring jobs: %v", err)
	}
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, app.CreateHTTPServer(), configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:            envOr("HTTP_PORT", "8080"),
		DBHost:              goDotEnvVariable("DB_HOST"),
		DBPort:              envOr("DB_PORT", "5432"),
		DBUser:              goDotEnvVariable("DB_USER"),
		DBPassword:          goDotEnvVariable("DB_PASSWORD"),
		DBName:              goDotEnvVariable("DB_NAME"),
		DBSslMode:           envOr("DB_SSLMODE", "disable"),
		BookingDBDSN:        goDotEnvVariable("BOOKING_DB_DSN"),
		RabbitMQURL:         goDotEnvVariable("RABBITMQ_URL"),
		RabbitMQExchange:    envOr("RABBITMQ_EXCHANGE", "order-threads"),
		OutboxRelaySchedule: envOr("OUTBOX_RELAY_SCHEDULE", "*/5 * * * * *"),
		OutboxBatchSize:     envInt("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxAttempts:   envInt("OUTBOX_MAX_ATTEMPTS", 10),
		CacheSweepSchedule:  envOr("CACHE_SWEEP_SCHEDULE", "0 * * * * *"),
		OrderCacheTTL:       envDuration("ORDER_CACHE_TTL", 30*time.Second),
		StatusCacheTTL:      envDuration("STATUS_CACHE_TTL", 10*time.Minute),
	}
	return config
}

func goDotEnvVariable(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Environment variable %s is required", key)
	}
	return value
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Environment variable %s must be an integer: %v", key, err)
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Environment variable %s must be a duration: %v", key, err)
	}
	return d
}

func mustOpenOrderStore(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword, configs.DBName, configs.DBSslMode)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to the order store: %v", err)
	}
	if err = db.AutoMigrate(postgres.Models()...); err != nil {
		log.Fatalf("Error migrating the order store: %v", err)
	}
	return db
}

func startWebServer(ctx context.Context, server *httpin.Server, port string, logger *slog.Logger) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if err := server.Register(e); err != nil {
		log.Fatalf("Error registering routes: %v", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && ctx.Err() == nil {
		e.Logger.Fatal(err)
	}
}
