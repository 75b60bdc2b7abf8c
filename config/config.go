package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port        string   `envconfig:"PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	UploadsDir        string        `envconfig:"UPLOADS_DIR" default:"./uploads"`
	UploadsPublicPath string        `envconfig:"UPLOADS_PUBLIC_PATH" default:"/uploads"`
	BackupDir         string        `envconfig:"BACKUP_DIR" default:"./backup/uploads"`
	BackupRetention   time.Duration `envconfig:"BACKUP_RETENTION" default:"96h"`
	BackupHour        int           `envconfig:"BACKUP_HOUR" default:"2"`

	PaymentAPIURL    string `envconfig:"PAYMENT_API_URL" default:"https://api.razorpay.com/v1"`
	PaymentKeyID     string `envconfig:"PAYMENT_KEY_ID"`
	PaymentKeySecret string `envconfig:"PAYMENT_KEY_SECRET"`
	PaymentCurrency  string `envconfig:"PAYMENT_CURRENCY" default:"INR"`

	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
	OrderEventsChannel string `envconfig:"ORDER_EVENTS_CHANNEL" default:"orders.events"`

	CancelWindow time.Duration `envconfig:"CANCEL_WINDOW" default:"3h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if cfg.BackupHour < 0 || cfg.BackupHour > 23 {
		return nil, errors.Errorf("BACKUP_HOUR must be between 0 and 23, got %d", cfg.BackupHour)
	}
	return &cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a DSN assembled from the DB_* fields.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) Logger() *logrus.Logger {
	logger := logrus.New()
	if c.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
