package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_RELAY_URL is the websocket endpoint of a running relay, e.g. ws://localhost:8080/ws
	RelayURL string `envconfig:"E2E_RELAY_URL"`
	// E2E_GRPC_ADDR is the gRPC health endpoint, skipped when empty
	GrpcAddr string `envconfig:"E2E_GRPC_ADDR"`
	// JWT_SECRET must match the server to sign test tokens
	JWTSecret string `envconfig:"JWT_SECRET"`
	// E2E_DEBUG_JSON dumps gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
