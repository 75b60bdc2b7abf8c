package config

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3*time.Hour, cfg.CancelWindow)
	assert.Equal(t, 96*time.Hour, cfg.BackupRetention)
	assert.Equal(t, "orders.events", cfg.OrderEventsChannel)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "restored after the test")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read environment")
}

func TestLoadRejectsBackupHour(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BACKUP_HOUR", "25")

	_, err := Load()
	require.Error(t, err)
	assert.EqualError(t, err, "BACKUP_HOUR must be between 0 and 23, got 25")
	assert.Contains(t, fmt.Sprintf("%+v", err), "config.Load", "errors carry the stack of where they were raised")
}

func TestDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: "5432", DBUser: "shop", DBPassword: "pw", DBName: "store"}
	assert.Equal(t, "host=db user=shop password=pw dbname=store port=5432 sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.DSN())
}

func TestLogger(t *testing.T) {
	cfg := Config{LogLevel: "debug", LogFormat: "text"}
	logger := cfg.Logger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
