package main

import (
	"fmt"
	"log"
	"shop-relay/internal"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// The viewer serves the inspector over a badger directory without running the relay.
func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if config.DebugPort <= 0 {
		log.Fatalf("DEBUG_PORT is required by the viewer")
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// BypassLockGuard allows opening while a running server holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	stats := func() map[string]any {
		return map[string]any{
			"status": "viewer mode (read-only)",
			"time":   time.Now().Format(time.RFC822),
		}
	}

	server := internal.NewDebugServer(logger, db, config.DebugPort, internal.ChatMapper, stats)
	fmt.Printf("Viewer started at http://localhost:%d%s\n", config.DebugPort, internal.InspectEndpoint)
	if err := server.ListenAndServe(); err != nil {
		log.Printf("Viewer stopped: %v", err)
	}
}
