package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oshokin/study-safe-server/internal/domain/safe"
	"github.com/oshokin/study-safe-server/internal/logger"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// pongWait is the time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// pingPeriod is how often pings are sent; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize bounds inbound control frames; they are tiny.
	maxMessageSize = 512
	// sendBufferSize is the per-session outbound buffer. A session that
	// falls this far behind is dropped by the hub.
	sendBufferSize = 64
)

// upgrader performs the websocket handshake. Origins are not checked:
// client authentication is out of scope for this system.
//
//nolint:gochecknoglobals,exhaustruct // Shared handshake settings.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// session is a middleman between one websocket connection and the hub.
type session struct {
	// hub that fans events out to this session.
	hub *Hub
	// controller receives the control events this session sends.
	controller Controller
	// conn is the underlying websocket connection.
	conn *websocket.Conn
	// send buffers outbound frames for the write pump.
	send chan []byte
	// remoteAddr identifies the peer in logs.
	remoteAddr string
}

// ServeWS upgrades an HTTP request to a websocket session and registers it
// with the hub. The request context carries the logger.
func (h *Hub) ServeWS(controller Controller, w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf(ctx, "Failed to upgrade viewer connection: %v", err)

		return
	}

	s := &session{
		hub:        h,
		controller: controller,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		remoteAddr: r.RemoteAddr,
	}

	if !h.attach(s) {
		// The hub stopped between the upgrade and the registration.
		conn.Close()

		return
	}

	go s.writePump()
	go s.readPump(logger.WithKV(context.WithoutCancel(ctx), "remote_addr", s.remoteAddr))
}

// readPump reads control frames from the viewer and routes them to the
// controller. It runs until the connection drops, then unregisters the
// session.
func (s *session) readPump(ctx context.Context) {
	defer func() {
		s.hub.detach(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf(ctx, "Viewer read error: %v", err)
			}

			return
		}

		s.dispatch(ctx, message)
	}
}

// dispatch decodes one inbound frame and invokes the matching controller
// operation. Unknown events are logged and dropped, never fatal.
func (s *session) dispatch(ctx context.Context, message []byte) {
	var f frame
	if err := json.Unmarshal(message, &f); err != nil {
		logger.Warnf(ctx, "Dropping malformed viewer frame: %v", err)

		return
	}

	switch f.Event {
	case eventSetMode:
		var raw string
		if err := json.Unmarshal(f.Data, &raw); err != nil {
			logger.Warnf(ctx, "Dropping setMode frame with bad payload: %v", err)

			return
		}

		mode, ok := safe.ParseMode(raw)
		if !ok {
			logger.Warnf(ctx, "Dropping setMode frame with unknown mode %q", raw)

			return
		}

		s.controller.SetMode(ctx, mode)
	case eventDisableAlarm:
		s.controller.DisableAlarm(ctx)
	case eventSavePhoneNumber:
		var raw string
		if err := json.Unmarshal(f.Data, &raw); err != nil {
			logger.Warnf(ctx, "Dropping savePhoneNumber frame with bad payload: %v", err)

			return
		}

		s.controller.SavePhoneNumber(ctx, raw)
	default:
		logger.Warnf(ctx, "Dropping unknown viewer event %q", f.Event)
	}
}

// writePump forwards hub messages to the websocket connection and keeps
// the connection alive with pings. One writer per connection, as the
// websocket package requires.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				// Hub closed the channel.
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
