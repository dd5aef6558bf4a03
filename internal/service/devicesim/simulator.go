package devicesim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"

	"github.com/oshokin/study-safe-server/internal/domain/safe"
	"github.com/oshokin/study-safe-server/internal/logger"
)

const (
	// gravity is the resting Z-axis acceleration in m/s^2.
	gravity = 9.81
	// restingJitter is the noise amplitude while the device sits still.
	restingJitter = 0.05
	// bumpChance is the per-report probability of a shove while monitoring.
	bumpChance = 0.05
	// bumpAmplitude is the acceleration spike of a shove.
	bumpAmplitude = 6.0
	// alarmThreshold is the deviation from rest that raises an alarm.
	alarmThreshold = 2.0
)

// simulator stands in for the embedded sensor: it reports readings,
// polls for commands and raises alarms, all over the same plain HTTP
// protocol the real device speaks.
type simulator struct {
	// client issues all HTTP calls.
	client *http.Client
	// baseURL is the bridge server base URL, without a trailing slash.
	baseURL string
	// rng drives the synthetic accelerometer.
	rng *rand.Rand
	// monitoring mirrors the armed state the device keeps on its side.
	monitoring bool
}

// newSimulator builds a simulator speaking to the given server.
func newSimulator(baseURL string, client *http.Client, seed int64) *simulator {
	return &simulator{
		client:  client,
		baseURL: baseURL,
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // Synthetic sensor noise, not cryptography.
	}
}

// mode is the mode the device believes it is in, derived from its own
// monitoring switch. Reported alongside readings as advisory data.
func (s *simulator) mode() safe.Mode {
	if s.monitoring {
		return safe.ModeAway
	}

	return safe.ModeWith
}

// nextReading produces a synthetic accelerometer sample. While monitoring,
// an occasional shove pushes the sample past the alarm threshold.
func (s *simulator) nextReading() safe.Reading {
	r := safe.Reading{
		X: s.noise(restingJitter),
		Y: s.noise(restingJitter),
		Z: gravity + s.noise(restingJitter),
	}

	if s.monitoring && s.rng.Float64() < bumpChance {
		r.X += s.noise(bumpAmplitude)
		r.Y += s.noise(bumpAmplitude)
	}

	return r
}

// noise returns a sample uniformly distributed in [-amplitude, amplitude].
func (s *simulator) noise(amplitude float64) float64 {
	return (s.rng.Float64()*2 - 1) * amplitude
}

// exceedsThreshold reports whether a reading deviates enough from rest to
// count as movement.
func exceedsThreshold(r safe.Reading) bool {
	deviation := r.X*r.X + r.Y*r.Y + (r.Z-gravity)*(r.Z-gravity)

	return deviation > alarmThreshold*alarmThreshold
}

// report posts one reading and raises an alarm when armed movement is seen.
func (s *simulator) report(ctx context.Context) error {
	reading := s.nextReading()

	payload, err := json.Marshal(struct {
		safe.Reading

		Mode string `json:"mode"`
	}{Reading: reading, Mode: s.mode().String()})
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}

	if err = s.post(ctx, "/data", payload); err != nil {
		return fmt.Errorf("post reading: %w", err)
	}

	logger.DebugKV(ctx, "Reading reported",
		"x", reading.X, "y", reading.Y, "z", reading.Z, "mode", s.mode())

	if s.monitoring && exceedsThreshold(reading) {
		logger.Warn(ctx, "Movement detected while armed, raising alarm")

		if err = s.post(ctx, "/alarm", nil); err != nil {
			return fmt.Errorf("post alarm: %w", err)
		}
	}

	return nil
}

// poll fetches the oldest pending command and applies it.
// An empty body means no command is pending.
func (s *simulator) poll(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/command", nil)
	if err != nil {
		return fmt.Errorf("build poll request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("poll command: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read command: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poll command: unexpected status %d", resp.StatusCode)
	}

	s.apply(ctx, string(body))

	return nil
}

// apply flips the monitoring switch according to a command token.
// Unknown tokens are logged and ignored, like the real firmware does.
func (s *simulator) apply(ctx context.Context, token string) {
	switch safe.Command(token) {
	case safe.CommandStartMonitoring:
		s.monitoring = true

		logger.Info(ctx, "Monitoring started")
	case safe.CommandStopMonitoring:
		s.monitoring = false

		logger.Info(ctx, "Monitoring stopped")
	case "":
		// Nothing pending.
	default:
		logger.Warnf(ctx, "Ignoring unknown command token %q", token)
	}
}

// post issues a JSON POST and drains the acknowledgement body.
func (s *simulator) post(ctx context.Context, path string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}
