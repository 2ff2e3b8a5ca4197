package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"

	"github.com/openlob/openlob/pkg/engine"
)

const (
	heartbeatInterval = 5 * time.Second
	clientTimeout     = 10 * time.Second

	// Outbound buffer per client; a client that cannot drain this many
	// frames is dropped rather than allowed to stall the hub.
	clientSendBuffer = 64
)

// wsEnvelope is the tagged wire format of every pushed frame
type wsEnvelope struct {
	Type string `json:"type"`

	// DepthUpdate
	Bids [][2]float64 `json:"bids,omitempty"`
	Asks [][2]float64 `json:"asks,omitempty"`

	// StatsUpdate
	BestBid   *float64 `json:"best_bid,omitempty"`
	BestAsk   *float64 `json:"best_ask,omitempty"`
	Spread    *float64 `json:"spread,omitempty"`
	Volume24h *float64 `json:"volume_24h,omitempty"`
}

// Hub pushes periodic depth and stats frames to every connected
// WebSocket client. One Hub serves the whole process.
type Hub struct {
	book          *engine.Book
	depthInterval time.Duration
	statsInterval time.Duration
	depthLevels   int

	// Heartbeat knobs; defaults suit production, tests shrink them.
	pingInterval  time.Duration
	clientTimeout time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewHub creates a hub reading from the given book
func NewHub(book *engine.Book, depthInterval, statsInterval time.Duration, depthLevels int) *Hub {
	if depthInterval <= 0 {
		depthInterval = 100 * time.Millisecond
	}
	if statsInterval <= 0 {
		statsInterval = time.Second
	}
	if depthLevels <= 0 {
		depthLevels = 20
	}
	return &Hub{
		book:          book,
		depthInterval: depthInterval,
		statsInterval: statsInterval,
		depthLevels:   depthLevels,
		pingInterval:  heartbeatInterval,
		clientTimeout: clientTimeout,
		clients:       make(map[*websocket.Conn]chan []byte),
	}
}

// Run broadcasts until the context is cancelled. Depth goes out on the
// fast tick, stats on the slow one; broadcasting with no clients is a
// cheap no-op.
func (h *Hub) Run(ctx context.Context) {
	depthTicker := time.NewTicker(h.depthInterval)
	statsTicker := time.NewTicker(h.statsInterval)
	defer depthTicker.Stop()
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-depthTicker.C:
			h.broadcast(h.depthFrame())
		case <-statsTicker.C:
			h.broadcast(h.statsFrame())
		}
	}
}

// ClientCount reports the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) depthFrame() []byte {
	snap := h.book.Depth(h.depthLevels)

	msg := wsEnvelope{
		Type: "DepthUpdate",
		Bids: make([][2]float64, 0, len(snap.Bids)),
		Asks: make([][2]float64, 0, len(snap.Asks)),
	}
	for _, lvl := range snap.Bids {
		msg.Bids = append(msg.Bids, [2]float64{lvl.Price.Float64(), lvl.Quantity.Float64()})
	}
	for _, lvl := range snap.Asks {
		msg.Asks = append(msg.Asks, [2]float64{lvl.Price.Float64(), lvl.Quantity.Float64()})
	}

	data, _ := json.Marshal(msg)
	return data
}

func (h *Hub) statsFrame() []byte {
	snap := h.book.Stats()
	volume := snap.VolumeTraded.Float64()

	data, _ := json.Marshal(wsEnvelope{
		Type:      "StatsUpdate",
		BestBid:   snap.BestBid,
		BestAsk:   snap.BestAsk,
		Spread:    snap.Spread,
		Volume24h: &volume,
	})
	return data
}

func (h *Hub) broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- frame:
		default:
			// Slow consumer. Closing the conn errors out its reader
			// and writer; the channel itself stays open so a late
			// trySend from the connection goroutine cannot panic.
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *Hub) register(conn *websocket.Conn) chan []byte {
	send := make(chan []byte, clientSendBuffer)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()
	return send
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		close(send)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

// Handler returns the /ws connection handler. Each client gets an
// immediate depth and stats frame, then the periodic pushes; the text
// commands "depth" and "stats" request an out-of-band refresh.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		log.Info().Str("remote", conn.RemoteAddr().String()).Msg("WebSocket connection established")

		send := h.register(conn)
		defer func() {
			h.unregister(conn)
			conn.Close()
			log.Info().Str("remote", conn.RemoteAddr().String()).Msg("WebSocket connection closed")
		}()

		// Writer: pumps broadcast frames and heartbeat pings. stop lets
		// the reader shut it down promptly; a dead-but-draining client
		// would otherwise keep the writer (and this handler) alive.
		stop := make(chan struct{})
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			pingTicker := time.NewTicker(h.pingInterval)
			defer pingTicker.Stop()
			for {
				select {
				case <-stop:
					return
				case frame, ok := <-send:
					if !ok {
						return
					}
					if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
						return
					}
				case <-pingTicker.C:
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()

		// Initial snapshot before the first tick lands.
		h.trySend(send, h.depthFrame())
		h.trySend(send, h.statsFrame())

		conn.SetReadDeadline(time.Now().Add(h.clientTimeout))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(h.clientTimeout))
			return nil
		})

		// Reader: client commands and liveness.
		for {
			msgType, payload, err := conn.ReadMessage()
			if err != nil {
				break
			}
			conn.SetReadDeadline(time.Now().Add(h.clientTimeout))

			if msgType != websocket.TextMessage {
				continue
			}
			switch string(payload) {
			case "depth":
				h.trySend(send, h.depthFrame())
			case "stats":
				h.trySend(send, h.statsFrame())
			default:
				log.Debug().Str("command", string(payload)).Msg("Unknown WebSocket command")
			}
		}

		close(stop)
		<-writerDone
	}
}

// trySend drops the frame if the client buffer is full
func (h *Hub) trySend(send chan []byte, frame []byte) {
	select {
	case send <- frame:
	default:
	}
}
