package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/quantick/barpipe/pkg/questdb"
	"github.com/quantick/barpipe/pkg/redis"
)

// Config represents the application configuration.
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Vendor   VendorConfig   `envPrefix:"VENDOR_"`
	QuestDB  questdb.Config `envPrefix:"QUESTDB_"`
	Redis    redis.Config   `envPrefix:"REDIS_"`
	BarKafka BarKafkaConfig `envPrefix:"BAR_KAFKA_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name            string        `env:"NAME" envDefault:"barpipe"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	Port            int           `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// VendorConfig holds the market-data vendor endpoints and credentials.
type VendorConfig struct {
	StreamURL   string `env:"STREAM_URL" envDefault:"wss://stream.example-feeds.in/websocket"`
	RestURL     string `env:"REST_URL" envDefault:"https://api.example-feeds.in/getallsymbols"`
	User        string `env:"USER"`
	Password    string `env:"PASSWORD"`
	Segment     string `env:"SEGMENT" envDefault:"eq"`
	Exchange    string `env:"EXCHANGE" envDefault:"NSE"`
	SymbolLimit int    `env:"SYMBOL_LIMIT" envDefault:"50"`
	BarInterval string `env:"BAR_INTERVAL" envDefault:"1min"`
}

// BarKafkaConfig configures the finalized-bar publisher. Publishing is
// disabled when the broker list is empty.
type BarKafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"market.bars"`
}

// Enabled reports whether bar publishing is configured.
func (c BarKafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
