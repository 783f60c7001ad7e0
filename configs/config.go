package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// AppConfig carries the typed engine settings. Everything has a default so
// the engine boots with nothing but DATABASE_URL set.
type AppConfig struct {
	Port               string        `envconfig:"PORT" default:"8080"`
	SweepInterval      time.Duration `envconfig:"SWEEP_INTERVAL" default:"30s"`
	PendingGraceWindow time.Duration `envconfig:"PENDING_GRACE_WINDOW" default:"5m"`
	AMQPURL            string        `envconfig:"AMQP_URL"`
	EventExchange      string        `envconfig:"EVENT_EXCHANGE" default:"hotel.events"`
}

func LoadAppConfig() (AppConfig, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
