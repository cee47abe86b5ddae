package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DEFAULT_DAILY_MAX", "40.5")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")

	cfg := Load()

	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "40.5", cfg.DefaultDailyMax.String())
	assert.Equal(t, 2*time.Hour, cfg.JWTExpirationHours)
	assert.False(t, cfg.AWSEnabled())
}

func TestLoad_InvalidDailyMaxFallsBack(t *testing.T) {
	t.Setenv("DEFAULT_DAILY_MAX", "-3")

	cfg := Load()

	assert.Equal(t, "50", cfg.DefaultDailyMax.String())
}

func TestAWSEnabled(t *testing.T) {
	t.Setenv("SQS_GATE_QUEUE_URL", "https://sqs.example/queue")

	assert.True(t, Load().AWSEnabled())
}
