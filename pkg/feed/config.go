package feed

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the connection settings for the external exchange feeds
type Config struct {
	// WebSocket endpoints
	BinanceURL  string // e.g., "wss://stream.binance.com:9443/ws"
	CoinbaseURL string // e.g., "wss://ws-feed.exchange.coinbase.com"
	BybitURL    string // e.g., "wss://stream.bybit.com/v5/public/spot"

	// Per-exchange instrument identifiers
	BinanceSymbol   string // e.g., "btcusdt"
	CoinbaseProduct string // e.g., "BTC-USD"
	BybitSymbol     string // e.g., "BTCUSDT"

	ReconnectDelay   time.Duration
	HandshakeTimeout time.Duration
}

// LoadConfig loads feed configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("FEED_BINANCE_URL", "wss://stream.binance.com:9443/ws")
	v.SetDefault("FEED_COINBASE_URL", "wss://ws-feed.exchange.coinbase.com")
	v.SetDefault("FEED_BYBIT_URL", "wss://stream.bybit.com/v5/public/spot")
	v.SetDefault("FEED_BINANCE_SYMBOL", "btcusdt")
	v.SetDefault("FEED_COINBASE_PRODUCT", "BTC-USD")
	v.SetDefault("FEED_BYBIT_SYMBOL", "BTCUSDT")
	v.SetDefault("FEED_RECONNECT_DELAY_SECONDS", 5)
	v.SetDefault("FEED_HANDSHAKE_TIMEOUT_SECONDS", 10)

	// Allow environment variables
	v.AutomaticEnv()

	cfg := &Config{
		BinanceURL:       v.GetString("FEED_BINANCE_URL"),
		CoinbaseURL:      v.GetString("FEED_COINBASE_URL"),
		BybitURL:         v.GetString("FEED_BYBIT_URL"),
		BinanceSymbol:    v.GetString("FEED_BINANCE_SYMBOL"),
		CoinbaseProduct:  v.GetString("FEED_COINBASE_PRODUCT"),
		BybitSymbol:      v.GetString("FEED_BYBIT_SYMBOL"),
		ReconnectDelay:   time.Duration(v.GetInt("FEED_RECONNECT_DELAY_SECONDS")) * time.Second,
		HandshakeTimeout: time.Duration(v.GetInt("FEED_HANDSHAKE_TIMEOUT_SECONDS")) * time.Second,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid feed configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.BinanceURL == "" {
		return fmt.Errorf("FEED_BINANCE_URL must not be empty")
	}
	if cfg.CoinbaseURL == "" {
		return fmt.Errorf("FEED_COINBASE_URL must not be empty")
	}
	if cfg.BybitURL == "" {
		return fmt.Errorf("FEED_BYBIT_URL must not be empty")
	}
	if cfg.BinanceSymbol == "" {
		return fmt.Errorf("FEED_BINANCE_SYMBOL must not be empty")
	}
	if cfg.CoinbaseProduct == "" {
		return fmt.Errorf("FEED_COINBASE_PRODUCT must not be empty")
	}
	if cfg.BybitSymbol == "" {
		return fmt.Errorf("FEED_BYBIT_SYMBOL must not be empty")
	}
	if cfg.ReconnectDelay <= 0 {
		return fmt.Errorf("FEED_RECONNECT_DELAY_SECONDS must be positive")
	}
	if cfg.HandshakeTimeout <= 0 {
		return fmt.Errorf("FEED_HANDSHAKE_TIMEOUT_SECONDS must be positive")
	}
	return nil
}
