package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "housecare", cfg.Database.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Auth.Enabled)
	assert.False(t, cfg.MQTT.Enabled)
	assert.True(t, cfg.Sweep.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Sweep.Schedule)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_PORT", "15432")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("MQTT_TOPIC", "housecare/inspection/tenant-a")
	t.Setenv("SWEEP_SCHEDULE", "@every 1h")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, 15432, cfg.Database.Port)
	assert.True(t, cfg.Auth.Enabled)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "housecare/inspection/tenant-a", cfg.MQTT.Topic)
	assert.Equal(t, "@every 1h", cfg.Sweep.Schedule)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestDatabaseConfigDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "secret",
		Database: "housecare", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=secret dbname=housecare sslmode=disable",
		c.DSN())
}
