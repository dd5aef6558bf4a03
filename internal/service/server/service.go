package server

import (
	"context"
	"sync"

	"github.com/oshokin/study-safe-server/internal/domain/safe"
	"github.com/oshokin/study-safe-server/internal/logger"
	"github.com/oshokin/study-safe-server/internal/notifier"
	"github.com/oshokin/study-safe-server/internal/queue"
)

// Broadcaster is the outbound fan-out the service drives. The websocket
// hub satisfies it in production.
type Broadcaster interface {
	BroadcastReading(ctx context.Context, r safe.Reading)
	BroadcastAlarm(ctx context.Context)
	ClearAlarm(ctx context.Context)
}

// service is the mode/alarm state machine: the single owner of the current
// device mode and the pending command queue. Browser control events mutate
// the mode and enqueue commands; the device drains them by polling.
//
// mu guards mode and commands as one unit, so a mode change and its
// enqueued command are never observed half-applied, mirroring the
// run-to-completion handlers this design replaces. It is unexported to keep
// the transport decoupled from the implementation.
type service struct {
	// broadcaster fans readings and alarm markers out to viewers.
	broadcaster Broadcaster
	// notifier sends the out-of-band alarm alert.
	notifier notifier.Notifier
	// commands holds instructions awaiting the device's next poll.
	commands *queue.CommandQueue
	// mode is the current operating mode.
	mode safe.Mode
	// mu protects mode and commands together.
	mu sync.Mutex
	// notified signals each completed alert dispatch; nil outside tests.
	notified chan struct{}
}

// newService creates the state machine with the startup default mode.
func newService(broadcaster Broadcaster, n notifier.Notifier) *service {
	return &service{
		broadcaster: broadcaster,
		notifier:    n,
		commands:    queue.New(),
		mode:        safe.ModeWith,
	}
}

// SetMode applies a viewer's mode request. Every request enqueues the
// matching command, including a repeat of the current mode: the device
// treats the tokens as idempotent and a duplicate covers a missed poll.
// Returning to "with" also clears the viewer-side alarm flag.
func (s *service) SetMode(ctx context.Context, mode safe.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = mode
	s.commands.Enqueue(safe.CommandForMode(mode))

	if mode == safe.ModeWith {
		s.broadcaster.ClearAlarm(ctx)
	}

	logger.InfoKV(ctx, "Mode set", "mode", mode, "pending_commands", s.commands.Len())
}

// DisableAlarm is the viewer's manual stand-down: it forces the mode to
// "with" and tells the device to stop monitoring. No SMS is sent for a
// manual disable.
func (s *service) DisableAlarm(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = safe.ModeWith
	s.commands.Enqueue(safe.CommandStopMonitoring)
	s.broadcaster.ClearAlarm(ctx)

	logger.Info(ctx, "Alarm disabled by viewer")
}

// TriggerAlarm handles a device-reported alarm. The device already decided
// it was in away mode, so the server mode is not consulted. Viewers get
// the alarm marker; the SMS alert is dispatched without waiting, and its
// failure is logged, never propagated.
func (s *service) TriggerAlarm(ctx context.Context) {
	logger.Warn(ctx, "Alarm triggered, movement detected in away mode")

	s.broadcaster.BroadcastAlarm(ctx)

	// The triggering request must not outlive-block on the SMS round trip.
	alertCtx := context.WithoutCancel(ctx)

	go func() {
		if err := s.notifier.SendAlert(alertCtx); err != nil {
			logger.Errorf(alertCtx, "Failed to send alarm alert: %v", err)
		}

		if s.notified != nil {
			s.notified <- struct{}{}
		}
	}()
}

// PollCommand hands the device the oldest pending command, or reports an
// empty queue. Polling an empty queue is the steady state, not an error.
func (s *service) PollCommand(ctx context.Context) (safe.Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.commands.DequeueOrEmpty()
	if ok {
		logger.InfoKV(ctx, "Command delivered to device", "command", cmd)
	}

	return cmd, ok
}

// ReceiveReading forwards a device reading to all viewers. The mode the
// device reports alongside its readings is advisory: it is logged for
// diagnosis but never reconciled against the server-side mode.
func (s *service) ReceiveReading(ctx context.Context, r safe.Reading, reportedMode string) {
	logger.InfoKV(ctx, "Reading received",
		"x", r.X, "y", r.Y, "z", r.Z, "device_mode", reportedMode)

	s.broadcaster.BroadcastReading(ctx, r)
}

// SavePhoneNumber logs and discards a viewer-submitted phone number.
// Alerts always go to the configured destination; viewer input is a sink.
func (s *service) SavePhoneNumber(ctx context.Context, raw string) {
	logger.InfoKV(ctx, "Phone number received from viewer and ignored", "value", raw)
}

// Mode returns the current operating mode.
func (s *service) Mode(context.Context) safe.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}
