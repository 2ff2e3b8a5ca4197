package api

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlob/openlob/pkg/engine"
)

func TestHub_DepthFrame(t *testing.T) {
	book := engine.NewBook()
	ctx := context.Background()

	_, err := book.AddOrder(ctx, "u", engine.Buy, engine.TypeLimit, fpdecimal.FromFloat(99.0), fpdecimal.FromFloat(2.0))
	require.NoError(t, err)
	_, err = book.AddOrder(ctx, "u", engine.Sell, engine.TypeLimit, fpdecimal.FromFloat(101.0), fpdecimal.FromFloat(1.0))
	require.NoError(t, err)

	hub := NewHub(book, 100*time.Millisecond, time.Second, 20)

	var frame wsEnvelope
	require.NoError(t, json.Unmarshal(hub.depthFrame(), &frame))

	assert.Equal(t, "DepthUpdate", frame.Type)
	require.Len(t, frame.Bids, 1)
	require.Len(t, frame.Asks, 1)
	assert.InDelta(t, 99.0, frame.Bids[0][0], 1e-9)
	assert.InDelta(t, 2.0, frame.Bids[0][1], 1e-9)
	assert.InDelta(t, 101.0, frame.Asks[0][0], 1e-9)
}

func TestHub_StatsFrame(t *testing.T) {
	book := engine.NewBook()
	ctx := context.Background()

	_, err := book.AddOrder(ctx, "u", engine.Buy, engine.TypeLimit, fpdecimal.FromFloat(100.0), fpdecimal.FromFloat(1.0))
	require.NoError(t, err)
	_, err = book.AddOrder(ctx, "u", engine.Sell, engine.TypeLimit, fpdecimal.FromFloat(100.0), fpdecimal.FromFloat(0.5))
	require.NoError(t, err)

	hub := NewHub(book, 100*time.Millisecond, time.Second, 20)

	var frame wsEnvelope
	require.NoError(t, json.Unmarshal(hub.statsFrame(), &frame))

	assert.Equal(t, "StatsUpdate", frame.Type)
	require.NotNil(t, frame.BestBid)
	assert.InDelta(t, 100.0, *frame.BestBid, 1e-9)
	require.NotNil(t, frame.Volume24h)
	assert.InDelta(t, 0.5, *frame.Volume24h, 1e-9)
}

func TestHub_DropsUnresponsiveClient(t *testing.T) {
	// A client that keeps draining frames but never answers pings must
	// be disconnected when the read deadline expires, and its handler
	// goroutine and hub slot must be released, not leaked.
	book := engine.NewBook()
	hub := NewHub(book, 20*time.Millisecond, time.Second, 5)
	hub.pingInterval = 30 * time.Millisecond
	hub.clientTimeout = 150 * time.Millisecond

	handler := NewHandler(book, nil, 20, 100)
	app := NewApp()
	SetupRoutes(app, handler, hub, RouterConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	defer app.Shutdown()

	conn, _, err := gws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	// Swallow pings instead of ponging, but keep reading so every
	// server write still succeeds.
	conn.SetPingHandler(func(string) error { return nil })
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond, "client never registered")

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond, "unresponsive client was not dropped")
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	hub := NewHub(engine.NewBook(), 10*time.Millisecond, 20*time.Millisecond, 5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	// Let a few ticks fire against an empty client set.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after context cancellation")
	}

	assert.Equal(t, 0, hub.ClientCount())
}
