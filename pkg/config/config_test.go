package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "estoque-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "120-M", cfg.HTTP.RateLimit)
	assert.Equal(t, 12*time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, 3, cfg.Inventory.MovementMaxRetries)
	assert.Equal(t, "pt-BR", cfg.Inventory.CollationLocale)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("MOVEMENT_MAX_RETRIES", "5")
	t.Setenv("DB_PASSWORD", "p@ss/word")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, 5, cfg.Inventory.MovementMaxRetries)
	assert.Contains(t, cfg.DB.DSN(), "p%40ss%2Fword")
}

func TestLoad_ReintentosInvalidos(t *testing.T) {
	t.Setenv("MOVEMENT_MAX_RETRIES", "0")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionStringPrefiereURL(t *testing.T) {
	c := config.DBConfig{DatabaseURL: "postgres://x@h/db", Host: "otro"}
	assert.Equal(t, "postgres://x@h/db", c.ConnectionString())
}
