package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host      string `env:"HOST,default=0.0.0.0"`
	Port      int    `env:"PORT,required=true"`
	GrpcPort  int    `env:"GRPC_PORT,default=0"`
	DebugPort int    `env:"DEBUG_PORT,default=0"`
	LogLevel  string `env:"LOG_LEVEL,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	CatalogDSN     string `env:"CATALOG_DSN"`
	LimitMessages  *int   `env:"LIMIT_MESSAGES"`

	JWTSecret      string `env:"JWT_SECRET,required=true"`
	AllowAnonymous bool   `env:"ALLOW_ANONYMOUS,default=false"`

	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiModel       string        `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT,default=30s"`

	RedisAddr    string `env:"REDIS_ADDR"`
	RedisChannel string `env:"REDIS_CHANNEL,default=shop-relay:events"`

	SendBufferSize  int     `env:"SEND_BUFFER_SIZE,default=64"`
	MaxMessageSize  int     `env:"MAX_MESSAGE_SIZE,default=65536"`
	EventsPerSecond float64 `env:"EVENTS_PER_SECOND,default=20"`
	EventBurst      int     `env:"EVENT_BURST,default=40"`

	BotWorkers        int `env:"BOT_WORKERS,default=2"`
	BotQueueSize      int `env:"BOT_QUEUE_SIZE,default=256"`
	DeliveryQueueSize int `env:"DELIVERY_QUEUE_SIZE,default=256"`
	FanoutQueueSize   int `env:"FANOUT_QUEUE_SIZE,default=1024"`

	IndexBatchSize     int           `env:"INDEX_BATCH_SIZE,default=100"`
	IndexBufferTimeout time.Duration `env:"INDEX_BUFFER_TIMEOUT,default=2s"`
	IndexTimeout       time.Duration `env:"INDEX_TIMEOUT,default=5s"`

	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=2s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=15s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Validate rejects values the environment parser accepts but the relay cannot run with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return fmt.Errorf("GRPC_PORT must be between 0 and 65535, got %d", c.GrpcPort)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must hold at least 16 characters")
	}
	if c.LimitMessages != nil && *c.LimitMessages < 0 {
		return fmt.Errorf("LIMIT_MESSAGES must not be negative, got %d", *c.LimitMessages)
	}
	for name, value := range map[string]int{
		"SEND_BUFFER_SIZE":    c.SendBufferSize,
		"BOT_WORKERS":         c.BotWorkers,
		"BOT_QUEUE_SIZE":      c.BotQueueSize,
		"DELIVERY_QUEUE_SIZE": c.DeliveryQueueSize,
		"FANOUT_QUEUE_SIZE":   c.FanoutQueueSize,
		"INDEX_BATCH_SIZE":    c.IndexBatchSize,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}
	return nil
}
