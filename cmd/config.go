package cmd

import "time"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	BookingDBDSN     string
	RabbitMQURL      string
	RabbitMQExchange string

	OutboxRelaySchedule string
	OutboxBatchSize     int
	OutboxMaxAttempts   int
	CacheSweepSchedule  string

	OrderCacheTTL  time.Duration
	StatusCacheTTL time.Duration
}
