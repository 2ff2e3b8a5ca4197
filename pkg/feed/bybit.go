package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openlob/openlob/pkg/engine"
)

type bybitSubscribe struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

// bybitEnvelope is the publicTrade topic frame; one frame may batch
// several trades.
type bybitEnvelope struct {
	Topic string       `json:"topic"`
	Data  []bybitTrade `json:"data"`
}

type bybitTrade struct {
	Price     string `json:"p"`
	Volume    string `json:"v"`
	Side      string `json:"S"`
	TradeTime int64  `json:"T"`
}

type bybitFeed struct {
	url              string
	symbol           string
	handshakeTimeout time.Duration
	seeder           depthSeeder
}

func newBybitFeed(book *engine.Book, cfg *Config) *bybitFeed {
	return &bybitFeed{
		url:              cfg.BybitURL,
		symbol:           cfg.BybitSymbol,
		handshakeTimeout: cfg.HandshakeTimeout,
		seeder: depthSeeder{
			book:      book,
			owner:     "bybit",
			levels:    3,
			priceStep: 0.8,
			qtyBase:   0.9,
			qtyFactor: 0.12,
		},
	}
}

func (f *bybitFeed) Name() string { return "bybit" }

func (f *bybitFeed) run(ctx context.Context) error {
	subscribe, err := json.Marshal(bybitSubscribe{
		Op:   "subscribe",
		Args: []string{"publicTrade." + f.symbol},
	})
	if err != nil {
		return err
	}
	return stream(ctx, f.url, f.handshakeTimeout, subscribe, f.handleMessage)
}

func (f *bybitFeed) handleMessage(ctx context.Context, payload []byte) {
	var msg bybitEnvelope
	if err := json.Unmarshal(payload, &msg); err != nil || !strings.HasPrefix(msg.Topic, "publicTrade.") {
		return
	}

	for _, trade := range msg.Data {
		price, err := strconv.ParseFloat(trade.Price, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.ParseFloat(trade.Volume, 64)
		if err != nil {
			continue
		}
		if trade.Side != "Buy" && trade.Side != "Sell" {
			continue
		}

		f.seeder.seed(ctx, price, quantity)

		log.Debug().
			Str("exchange", "bybit").
			Float64("price", price).
			Float64("quantity", quantity).
			Str("side", trade.Side).
			Msg("Exchange trade")
	}
}
