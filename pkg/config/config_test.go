package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"kafka:9092", "kafka2:9092"}, CSV(" kafka:9092, ,kafka2:9092 "))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("KAFKA_BROKERS", "a:1,b:2")

	cfg := Load()
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.KafkaBrokers)
}
