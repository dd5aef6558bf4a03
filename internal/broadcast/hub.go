package broadcast

import (
	"context"
	"encoding/json"

	"github.com/oshokin/study-safe-server/internal/domain/safe"
	"github.com/oshokin/study-safe-server/internal/logger"
)

// Outbound event names on the realtime channel.
const (
	// EventAccelerometerData carries a reading payload {X, Y, Z}.
	EventAccelerometerData = "accelerometerData"
	// EventAlarmTriggered carries no payload.
	EventAlarmTriggered = "alarmTriggered"
)

// Inbound event names on the realtime channel.
const (
	eventSetMode         = "setMode"
	eventDisableAlarm    = "disableAlarm"
	eventSavePhoneNumber = "savePhoneNumber"
)

// frame is the JSON envelope for every message on the realtime channel,
// in both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Controller receives the control events browser clients send over the
// realtime channel.
type Controller interface {
	SetMode(ctx context.Context, mode safe.Mode)
	DisableAlarm(ctx context.Context)
	SavePhoneNumber(ctx context.Context, raw string)
}

// Hub maintains the set of connected viewer sessions and fans events out
// to all of them. Registration, unregistration and fan-out are serialized
// by the run loop, so no session bookkeeping needs a lock.
type Hub struct {
	// register receives sessions that finished the websocket upgrade.
	register chan *session
	// unregister receives sessions whose connection is gone.
	unregister chan *session
	// broadcast receives encoded frames to fan out to every session.
	broadcast chan []byte
	// done is closed when Run returns, releasing sessions that would
	// otherwise block handing themselves back to a stopped run loop.
	done chan struct{}
	// sessions is the live set, owned exclusively by Run.
	sessions map[*session]struct{}
}

// NewHub returns a hub ready to accept sessions once Run is started.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *session),
		unregister: make(chan *session),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
		sessions:   make(map[*session]struct{}),
	}
}

// Run owns the session set until the context is canceled, at which point
// every session's send channel is closed and the sessions drain out.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case s := <-h.register:
			h.sessions[s] = struct{}{}

			logger.InfoKV(ctx, "Viewer connected", "remote_addr", s.remoteAddr, "viewers", len(h.sessions))
		case s := <-h.unregister:
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
				close(s.send)

				logger.InfoKV(ctx, "Viewer disconnected", "remote_addr", s.remoteAddr, "viewers", len(h.sessions))
			}
		case message := <-h.broadcast:
			for s := range h.sessions {
				select {
				case s.send <- message:
				default:
					// Slow consumer: drop it rather than stall the rest.
					delete(h.sessions, s)
					close(s.send)
				}
			}
		case <-ctx.Done():
			for s := range h.sessions {
				delete(h.sessions, s)
				close(s.send)
			}

			return
		}
	}
}

// BroadcastReading delivers a reading to every connected viewer.
// With no viewers connected this is a silent no-op.
func (h *Hub) BroadcastReading(ctx context.Context, r safe.Reading) {
	h.send(ctx, EventAccelerometerData, r)
}

// BroadcastAlarm delivers the alarm marker to every connected viewer.
// Viewers keep the warning up until their own mode switch clears it.
func (h *Hub) BroadcastAlarm(ctx context.Context) {
	h.send(ctx, EventAlarmTriggered, nil)
}

// ClearAlarm is invoked when the mode returns to "with". The alarm flag is
// viewer-local and cleared optimistically on the viewer's own mode action,
// so nothing is pushed here.
func (h *Hub) ClearAlarm(ctx context.Context) {
	logger.Debug(ctx, "Alarm cleared, viewers reset locally")
}

// send encodes the event envelope and hands it to the run loop.
func (h *Hub) send(ctx context.Context, event string, payload any) {
	f := frame{Event: event}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Errorf(ctx, "Failed to encode %s event: %v", event, err)

			return
		}

		f.Data = data
	}

	message, err := json.Marshal(f)
	if err != nil {
		logger.Errorf(ctx, "Failed to encode %s frame: %v", event, err)

		return
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	case <-ctx.Done():
	}
}

// attach registers a session with the run loop.
// It reports false when the hub already stopped.
func (h *Hub) attach(s *session) bool {
	select {
	case h.register <- s:
		return true
	case <-h.done:
		return false
	}
}

// detach hands a session back to the run loop, or gives up immediately if
// the run loop already stopped and closed every session itself.
func (h *Hub) detach(s *session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}
