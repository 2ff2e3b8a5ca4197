package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openlob/openlob/pkg/engine"
)

type coinbaseSubscribe struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

// coinbaseMessage covers every frame on the matches channel; only
// type "match" carries trade fields.
type coinbaseMessage struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Side      string `json:"side"`
}

type coinbaseFeed struct {
	url              string
	product          string
	handshakeTimeout time.Duration
	seeder           depthSeeder
}

func newCoinbaseFeed(book *engine.Book, cfg *Config) *coinbaseFeed {
	return &coinbaseFeed{
		url:              cfg.CoinbaseURL,
		product:          cfg.CoinbaseProduct,
		handshakeTimeout: cfg.HandshakeTimeout,
		seeder: depthSeeder{
			book:      book,
			owner:     "coinbase",
			levels:    3,
			priceStep: 1.0,
			qtyBase:   0.8,
			qtyFactor: 0.15,
		},
	}
}

func (f *coinbaseFeed) Name() string { return "coinbase" }

func (f *coinbaseFeed) run(ctx context.Context) error {
	subscribe, err := json.Marshal(coinbaseSubscribe{
		Type:       "subscribe",
		ProductIDs: []string{f.product},
		Channels:   []string{"matches"},
	})
	if err != nil {
		return err
	}
	return stream(ctx, f.url, f.handshakeTimeout, subscribe, f.handleMessage)
}

func (f *coinbaseFeed) handleMessage(ctx context.Context, payload []byte) {
	var msg coinbaseMessage
	if err := json.Unmarshal(payload, &msg); err != nil || msg.Type != "match" {
		return
	}

	price, err := strconv.ParseFloat(msg.Price, 64)
	if err != nil {
		return
	}
	quantity, err := strconv.ParseFloat(msg.Size, 64)
	if err != nil {
		return
	}
	if msg.Side != "buy" && msg.Side != "sell" {
		return
	}

	f.seeder.seed(ctx, price, quantity)

	log.Debug().
		Str("exchange", "coinbase").
		Str("product", msg.ProductID).
		Float64("price", price).
		Float64("quantity", quantity).
		Str("side", msg.Side).
		Msg("Exchange trade")
}
