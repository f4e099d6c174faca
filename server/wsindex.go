package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// indexUpgrader is shared by every /index/subscribe connection. CheckOrigin
// is permissive, matching the router's permissive CORS policy elsewhere.
var indexUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// subscriber buffer depth. A subscriber whose outbound buffer fills (it is
// reading deltas slower than they're produced) is lagging and gets
// disconnected with close code 4000 rather than let the hub's broadcast
// loop block on it.
const subscriberBufferSize = 64

type subscriber struct {
	id   uuid.UUID
	conn *websocket.Conn
	out  chan []byte
}

// IndexHub fans out bucket-index deltas to every open /index/subscribe
// connection, grounded on the broadcast-channel + per-client-goroutine
// pattern the coinjoin dashboard's websocket Hub uses, extended here with
// a bounded per-client buffer so one slow reader can't stall every other
// subscriber (close code 4000, reason "lagged:<block>", per spec.md §6).
type IndexHub struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]*subscriber
	logger      *zap.SugaredLogger
}

// NewIndexHub constructs an empty IndexHub.
func NewIndexHub(logger *zap.SugaredLogger) *IndexHub {
	return &IndexHub{
		subscribers: make(map[uuid.UUID]*subscriber),
		logger:      logger,
	}
}

// Subscribe upgrades r to a websocket and registers it for delta
// broadcasts until the client disconnects or lags.
func (h *IndexHub) Subscribe(w http.ResponseWriter, r *http.Request) error {
	conn, err := indexUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{
		id:   uuid.New(),
		conn: conn,
		out:  make(chan []byte, subscriberBufferSize),
	}

	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()

	go h.writePump(sub)
	go h.readPump(sub)
	return nil
}

func (h *IndexHub) writePump(sub *subscriber) {
	defer func() {
		h.mu.Lock()
		delete(h.subscribers, sub.id)
		h.mu.Unlock()
		sub.conn.Close()
	}()

	for msg := range sub.out {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := sub.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			return
		}
	}
}

func (h *IndexHub) readPump(sub *subscriber) {
	defer sub.conn.Close()
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends a delta to every subscriber. A subscriber whose buffer is
// full is disconnected with close code 4000 and the given block number in
// the reason, rather than blocking the broadcaster.
func (h *IndexHub) Broadcast(delta []byte, blockNumber uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		select {
		case sub.out <- delta:
		default:
			reason := fmt.Sprintf("lagged:%d", blockNumber)
			closeMsg := websocket.FormatCloseMessage(4000, reason)
			_ = sub.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
			close(sub.out)
			delete(h.subscribers, id)
			h.logger.Warnw("index subscriber disconnected for lag", "subscriber_id", id, "block_number", blockNumber)
		}
	}
}

// Count returns the current number of open subscriptions.
func (h *IndexHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
