// Package feed connects to public exchange trade streams and mirrors
// their activity into the local book as synthetic resting liquidity.
// Each trade observed on an external venue is expanded into a small
// ladder of limit orders around the traded price, so the book always
// carries realistic depth to match against.
package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/rs/zerolog/log"

	"github.com/openlob/openlob/pkg/engine"
)

// exchange is a single upstream connection. run blocks until the
// connection drops or the context is cancelled.
type exchange interface {
	Name() string
	run(ctx context.Context) error
}

// Manager owns the feed goroutines and their reconnect loops
type Manager struct {
	book *engine.Book
	cfg  *Config
	wg   sync.WaitGroup
}

// NewManager creates a manager seeding the given book
func NewManager(book *engine.Book, cfg *Config) *Manager {
	return &Manager{book: book, cfg: cfg}
}

// Start launches one goroutine per named exchange. Supported names are
// "binance", "coinbase" and "bybit". Each goroutine reconnects with a
// fixed delay until the context is cancelled.
func (m *Manager) Start(ctx context.Context, exchanges []string) error {
	for _, name := range exchanges {
		var ex exchange
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "binance":
			ex = newBinanceFeed(m.book, m.cfg)
		case "coinbase":
			ex = newCoinbaseFeed(m.book, m.cfg)
		case "bybit":
			ex = newBybitFeed(m.book, m.cfg)
		default:
			return fmt.Errorf("unknown exchange %q", name)
		}

		m.wg.Add(1)
		go m.runLoop(ctx, ex)
	}
	return nil
}

// Wait blocks until all feed goroutines have exited
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) runLoop(ctx context.Context, ex exchange) {
	defer m.wg.Done()

	for {
		log.Info().Str("exchange", ex.Name()).Msg("Connecting to exchange feed")
		err := ex.run(ctx)
		if ctx.Err() != nil {
			log.Info().Str("exchange", ex.Name()).Msg("Exchange feed stopped")
			return
		}
		log.Error().Err(err).
			Str("exchange", ex.Name()).
			Dur("retry_in", m.cfg.ReconnectDelay).
			Msg("Exchange feed disconnected")

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.cfg.ReconnectDelay):
		}
	}
}

// stream dials the endpoint, optionally sends a subscribe message, and
// pumps every received frame through handle until the connection fails
// or the context is cancelled.
func stream(ctx context.Context, url string, handshakeTimeout time.Duration, subscribe []byte, handle func(ctx context.Context, payload []byte)) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	if subscribe != nil {
		if err := conn.WriteMessage(websocket.TextMessage, subscribe); err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
	}

	// Unblock the read loop when the context goes away.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		handle(ctx, payload)
	}
}

// depthSeeder turns one observed trade into a ladder of synthetic limit
// orders on both sides of the traded price. Level i (1-based) rests at
// price ± i*priceStep with quantity qty*(qtyBase + i*qtyFactor).
type depthSeeder struct {
	book      *engine.Book
	owner     string
	levels    int
	priceStep float64
	qtyBase   float64
	qtyFactor float64
}

func (s depthSeeder) seed(ctx context.Context, price, quantity float64) {
	if price <= 0 || quantity <= 0 {
		return
	}
	for i := 1; i <= s.levels; i++ {
		offset := float64(i) * s.priceStep
		levelQty := fpdecimal.FromFloat(quantity * (s.qtyBase + float64(i)*s.qtyFactor))

		if bid := price - offset; bid > 0 {
			s.add(ctx, fmt.Sprintf("%s_bid_%d", s.owner, i), engine.Buy, bid, levelQty)
		}
		s.add(ctx, fmt.Sprintf("%s_ask_%d", s.owner, i), engine.Sell, price+offset, levelQty)
	}
}

func (s depthSeeder) add(ctx context.Context, userID string, side engine.Side, price float64, quantity fpdecimal.Decimal) {
	_, err := s.book.AddOrder(ctx, userID, side, engine.TypeLimit, fpdecimal.FromFloat(price), quantity)
	if err != nil {
		log.Debug().Err(err).Str("owner", userID).Msg("Skipped synthetic depth order")
	}
}
