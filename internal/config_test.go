package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_From_Environment(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("PORT", "8080")
		t.Setenv("LOG_LEVEL", "INFO")
		t.Setenv("BADGER_FILEPATH", t.TempDir())
		t.Setenv("BLUGE_FILEPATH", t.TempDir())
		t.Setenv("JWT_SECRET", "0123456789abcdef")
		t.Setenv("LIMIT_MESSAGES", "50")

		var config Config
		_, err := env.UnmarshalFromEnviron(&config)

		req.NoError(err)
		req.NoError(config.Validate())
		req.Equal("gemini-2.5-flash", config.GeminiModel)
		req.Equal(10*time.Second, config.ShutdownTimeout)
		req.Equal(64, config.SendBufferSize)
		req.False(config.AllowAnonymous)
		req.NotNil(config.LimitMessages)
		req.Equal(50, *config.LimitMessages)
	})

	t.Run("should reject a short secret", func(t *testing.T) {
		config := Config{Port: 8080, JWTSecret: "short", SendBufferSize: 1, BotWorkers: 1, BotQueueSize: 1,
			DeliveryQueueSize: 1, FanoutQueueSize: 1, IndexBatchSize: 1}
		require.Error(t, config.Validate())
	})

	t.Run("should reject empty queues", func(t *testing.T) {
		config := Config{Port: 8080, JWTSecret: "0123456789abcdef"}
		require.Error(t, config.Validate())
	})
}
