package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"rtsp-bridge/internal/logging"
	"rtsp-bridge/internal/metrics"
	"rtsp-bridge/internal/session"
)

const (
	// wsPingInterval must stay under wsReadDeadline so pongs keep an
	// idle viewer's connection alive.
	wsPingInterval  = 54 * time.Second
	wsReadDeadline  = 60 * time.Second
	wsWriteDeadline = 10 * time.Second

	// Clients never send media; anything beyond control-frame size is
	// a misbehaving peer.
	wsReadLimit = 512

	// wsSendBuffer smooths bursts between the queue drain and the
	// socket write without distorting backlog accounting much.
	wsSendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The bridge runs behind the operator's ingress; origin policy
	// belongs there.
	CheckOrigin: func(*http.Request) bool { return true },
}

// AttachStream upgrades GET /ws/{id} to a WebSocket and relays the
// session's byte ranges as binary messages: the initialization block
// first, then live ranges in production order. Rejections happen
// before the upgrade so the client sees a plain HTTP status.
func (h *Handlers) AttachStream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	client := clientHost(r.RemoteAddr)

	if !h.addPeer(id, client) {
		writeJSONError(w, "client already attached to this session", http.StatusConflict)
		return
	}

	queue, err := h.registry.Attach(id)
	if err != nil {
		h.removePeer(id, client)
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			writeJSONError(w, "session not found", http.StatusNotFound)
		case errors.Is(err, session.ErrNotActive):
			writeJSONError(w, "session not active", http.StatusConflict)
		default:
			writeJSONError(w, "attach failed", http.StatusInternalServerError)
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote its own error response.
		h.registry.Detach(id, queue)
		h.removePeer(id, client)
		logging.Error("websocket upgrade failed for session %s: %v", id, err)
		return
	}

	metrics.WSConnectionsTotal.Inc()
	logging.Info("client %s attached to session %s", client, id)

	// The read pump owns disconnect detection; its exit cancels the
	// context the write pump drains the queue under.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		h.readPump(conn)
		cancel()
	}()

	h.writePump(ctx, conn, queue)

	cancel()
	conn.Close()
	h.registry.Detach(id, queue)
	h.removePeer(id, client)
	logging.Info("client %s detached from session %s", client, id)
}

// writePump moves byte ranges from the client queue onto the socket,
// interleaving pings during idle stretches. It returns when the queue
// closes (session stopped, backlog ceiling hit), the client goes away,
// or a write fails.
func (h *Handlers) writePump(ctx context.Context, conn *websocket.Conn, queue *session.Queue) {
	send := make(chan []byte, wsSendBuffer)
	go func() {
		defer close(send)
		for {
			data, err := queue.Next(ctx)
			if err != nil {
				return
			}
			select {
			case send <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if !ok {
				// The queue is done; tell the client this was
				// deliberate before the connection drops.
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames while watching for disconnect. The
// relay is one-way; reads exist to process control frames and notice
// the peer going away.
func (h *Handlers) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Debug("websocket read error: %v", err)
			}
			return
		}
	}
}

// addPeer claims the (session, client) attachment slot. It reports
// false when that pair already holds a live connection.
func (h *Handlers) addPeer(id, client string) bool {
	h.peerMu.Lock()
	defer h.peerMu.Unlock()
	key := peerKey{session: id, client: client}
	if _, dup := h.peers[key]; dup {
		return false
	}
	h.peers[key] = struct{}{}
	return true
}

func (h *Handlers) removePeer(id, client string) {
	h.peerMu.Lock()
	defer h.peerMu.Unlock()
	delete(h.peers, peerKey{session: id, client: client})
}

// clientHost is the host half of a remote address, used to key attach
// deduplication. Addresses that do not split are used whole.
func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
