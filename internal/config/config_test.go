package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_TX_MAX_RETRIES", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("ORDERS_STRICT_TRANSITIONS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Database.TxMaxRetries)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.OrderTTL)
	assert.False(t, cfg.Orders.StrictTransitions)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("ORDERS_STRICT_TRANSITIONS", "true")
	t.Setenv("DATABASE_TX_MAX_RETRIES", "3")
	t.Setenv("JWT_EXPIRES_IN", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Orders.StrictTransitions)
	assert.Equal(t, 3, cfg.Database.TxMaxRetries)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestValidateRejectsDefaultSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidateRejectsRelaySettings(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"zero interval", "OUTBOX_RELAY_INTERVAL", "0s", "OUTBOX_RELAY_INTERVAL"},
		{"negative interval", "OUTBOX_RELAY_INTERVAL", "-1s", "OUTBOX_RELAY_INTERVAL"},
		{"zero batch", "OUTBOX_RELAY_BATCH", "0", "OUTBOX_RELAY_BATCH"},
		{"negative batch", "OUTBOX_RELAY_BATCH", "-5", "OUTBOX_RELAY_BATCH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv("OUTBOX_RELAY_INTERVAL", "")
			t.Setenv("OUTBOX_RELAY_BATCH", "")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	assert.Equal(t, 7, getEnvIntFrom(t, "nope", 7))
	t.Setenv("X_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("X_DURATION", time.Second))
	t.Setenv("X_BOOL", "maybe")
	assert.True(t, getEnvBool("X_BOOL", true))
}

func getEnvIntFrom(t *testing.T, raw string, def int) int {
	t.Helper()
	t.Setenv("X_INT", raw)
	return getEnvInt("X_INT", def)
}
