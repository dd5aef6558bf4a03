package devicesim

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/study-safe-server/internal/domain/safe"
)

// TestApply verifies command tokens flip the monitoring switch and garbage is ignored.
func TestApply(t *testing.T) {
	t.Parallel()

	sim := newSimulator("http://unused", http.DefaultClient, 1)
	ctx := context.Background()

	require.False(t, sim.monitoring)
	require.Equal(t, safe.ModeWith, sim.mode())

	sim.apply(ctx, "startMonitoring")
	require.True(t, sim.monitoring)
	require.Equal(t, safe.ModeAway, sim.mode())

	sim.apply(ctx, "")
	require.True(t, sim.monitoring)

	sim.apply(ctx, "selfDestruct")
	require.True(t, sim.monitoring)

	sim.apply(ctx, "stopMonitoring")
	require.False(t, sim.monitoring)
}

// TestExceedsThreshold verifies resting readings stay quiet and shoves trip the alarm.
func TestExceedsThreshold(t *testing.T) {
	t.Parallel()

	require.False(t, exceedsThreshold(safe.Reading{X: 0.02, Y: -0.01, Z: gravity + 0.03}))
	require.True(t, exceedsThreshold(safe.Reading{X: 5, Y: 0, Z: gravity}))
}

// TestReportPostsReadingWithMode verifies the /data payload shape and the advisory mode field.
func TestReportPostsReadingWithMode(t *testing.T) {
	t.Parallel()

	var got struct {
		X    float64 `json:"X"`
		Y    float64 `json:"Y"`
		Z    float64 `json:"Z"`
		Mode string  `json:"mode"`
	}

	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		calls++

		_, _ = w.Write([]byte("Data received"))
	}))
	defer srv.Close()

	sim := newSimulator(srv.URL, srv.Client(), 1)

	require.NoError(t, sim.report(context.Background()))
	require.Equal(t, 1, calls)
	require.Equal(t, "with", got.Mode)
	require.InDelta(t, gravity, got.Z, 1)
}

// TestPollAppliesCommand verifies the poll round trip against a fake bridge server.
func TestPollAppliesCommand(t *testing.T) {
	t.Parallel()

	responses := []string{"startMonitoring", "", "stopMonitoring"}
	next := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/command", r.URL.Path)

		_, _ = w.Write([]byte(responses[next]))
		next++
	}))
	defer srv.Close()

	sim := newSimulator(srv.URL, srv.Client(), 1)
	ctx := context.Background()

	require.NoError(t, sim.poll(ctx))
	require.True(t, sim.monitoring)

	require.NoError(t, sim.poll(ctx))
	require.True(t, sim.monitoring)

	require.NoError(t, sim.poll(ctx))
	require.False(t, sim.monitoring)
}

// TestReportRaisesAlarmWhenArmed verifies a shove while monitoring produces a /alarm post.
func TestReportRaisesAlarmWhenArmed(t *testing.T) {
	t.Parallel()

	alarms := 0
	readings := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data":
			readings++
		case "/alarm":
			alarms++
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sim := newSimulator(srv.URL, srv.Client(), 1)
	sim.monitoring = true

	// Enough reports to make a bump statistically certain.
	for i := 0; i < 500; i++ {
		require.NoError(t, sim.report(context.Background()))
	}

	require.Equal(t, 500, readings)
	require.Positive(t, alarms)
}
