package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openlob/openlob/pkg/engine"
)

// binanceTrade is the payload of the @trade stream
type binanceTrade struct {
	Event        string `json:"e"`
	Symbol       string `json:"s"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
}

type binanceFeed struct {
	url              string
	handshakeTimeout time.Duration
	seeder           depthSeeder
}

func newBinanceFeed(book *engine.Book, cfg *Config) *binanceFeed {
	return &binanceFeed{
		url:              fmt.Sprintf("%s/%s@trade", cfg.BinanceURL, strings.ToLower(cfg.BinanceSymbol)),
		handshakeTimeout: cfg.HandshakeTimeout,
		seeder: depthSeeder{
			book:      book,
			owner:     "binance",
			levels:    5,
			priceStep: 0.5,
			qtyBase:   1.0,
			qtyFactor: 0.1,
		},
	}
}

func (f *binanceFeed) Name() string { return "binance" }

func (f *binanceFeed) run(ctx context.Context) error {
	// The stream name is part of the URL; no subscribe message needed.
	return stream(ctx, f.url, f.handshakeTimeout, nil, f.handleMessage)
}

func (f *binanceFeed) handleMessage(ctx context.Context, payload []byte) {
	var trade binanceTrade
	if err := json.Unmarshal(payload, &trade); err != nil || trade.Event != "trade" {
		return
	}

	price, err := strconv.ParseFloat(trade.Price, 64)
	if err != nil {
		return
	}
	quantity, err := strconv.ParseFloat(trade.Quantity, 64)
	if err != nil {
		return
	}

	// m set means the buyer was the maker, i.e. an aggressive sell.
	side := "Buy"
	if trade.IsBuyerMaker {
		side = "Sell"
	}

	f.seeder.seed(ctx, price, quantity)

	log.Debug().
		Str("exchange", "binance").
		Str("symbol", trade.Symbol).
		Float64("price", price).
		Float64("quantity", quantity).
		Str("side", side).
		Msg("Exchange trade")
}
