package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openlob/openlob/pkg/db/queue"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		HTTPAddr  string `yaml:"http_addr"`
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"server"`

	Book struct {
		DefaultDepthLevels int `yaml:"default_depth_levels"`
		MaxDepthLevels     int `yaml:"max_depth_levels"`
	} `yaml:"book"`

	Broadcast struct {
		DepthInterval time.Duration `yaml:"depth_interval"`
		StatsInterval time.Duration `yaml:"stats_interval"`
		DepthLevels   int           `yaml:"depth_levels"`
	} `yaml:"broadcast"`

	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Kafka struct {
		Enabled    bool   `yaml:"enabled"`
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
		// Driver selects the producer implementation: "kafka-go" uses a
		// single batching writer, "sarama" uses the pooled sync producer.
		Driver string `yaml:"driver"`
	} `yaml:"kafka"`

	Feeds struct {
		Enabled   bool     `yaml:"enabled"`
		Exchanges []string `yaml:"exchanges"`
		Symbol    string   `yaml:"symbol"`
	} `yaml:"feeds"`

	Otel struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"otel"`
}

// Default configuration values
var (
	configFile = flag.String("config", "", "Path to config file (YAML)")
	httpPort   = flag.Int("http_port", 3000, "The HTTP server port")
	logLevel   = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat  = flag.String("log_format", "pretty", "Log format: json, pretty")
)

// LoadConfig loads the configuration from command line flags and optionally from a config file
func LoadConfig() (*Config, error) {
	flag.Parse()

	config := &Config{}
	config.Server.HTTPAddr = fmt.Sprintf(":%d", *httpPort)
	config.Server.LogLevel = *logLevel
	config.Server.LogFormat = *logFormat
	config.Book.DefaultDepthLevels = 20
	config.Book.MaxDepthLevels = 100
	config.Broadcast.DepthInterval = 100 * time.Millisecond
	config.Broadcast.StatsInterval = time.Second
	config.Broadcast.DepthLevels = 20
	config.RateLimit.Enabled = true
	config.RateLimit.RPS = 500
	config.RateLimit.Burst = 100
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.Topic = "order-executions"
	config.Kafka.Driver = "kafka-go"
	config.Feeds.Exchanges = []string{"binance", "coinbase", "bybit"}
	config.Feeds.Symbol = "BTCUSDT"
	config.Otel.Endpoint = "localhost:4317"

	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		log.Printf("Loaded configuration from %s", *configFile)
	}

	// Push broker settings into the queue package before any sender
	// or consumer is constructed.
	if config.Kafka.Enabled {
		queue.Configure(config.Kafka.BrokerAddr, config.Kafka.Topic)
	}

	return config, nil
}
