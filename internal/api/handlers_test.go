package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/study-safe-server/internal/broadcast"
	"github.com/oshokin/study-safe-server/internal/domain/safe"
)

// fakeService records gateway calls and serves canned poll results.
type fakeService struct {
	// readings holds every reading passed to ReceiveReading.
	readings []safe.Reading
	// reportedModes holds the advisory mode accompanying each reading.
	reportedModes []string
	// alarms counts TriggerAlarm calls.
	alarms int
	// pending is drained by PollCommand.
	pending []safe.Command
}

func (f *fakeService) ReceiveReading(_ context.Context, r safe.Reading, reportedMode string) {
	f.readings = append(f.readings, r)
	f.reportedModes = append(f.reportedModes, reportedMode)
}

func (f *fakeService) TriggerAlarm(context.Context) {
	f.alarms++
}

func (f *fakeService) PollCommand(context.Context) (safe.Command, bool) {
	if len(f.pending) == 0 {
		return "", false
	}

	head := f.pending[0]
	f.pending = f.pending[1:]

	return head, true
}

func (f *fakeService) SetMode(context.Context, safe.Mode) {}

func (f *fakeService) DisableAlarm(context.Context) {}

func (f *fakeService) SavePhoneNumber(context.Context, string) {}

// newTestRouter builds the full router around a fake service.
func newTestRouter(f *fakeService) http.Handler {
	return NewRouter(f, broadcast.NewHub(), f)
}

// TestHandleData verifies readings are decoded, forwarded and acknowledged.
func TestHandleData(t *testing.T) {
	t.Parallel()

	f := new(fakeService)
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/data",
		strings.NewReader(`{"X":1,"Y":2,"Z":3,"mode":"away"}`))

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Data received", rec.Body.String())
	require.Equal(t, []safe.Reading{{X: 1, Y: 2, Z: 3}}, f.readings)
	require.Equal(t, []string{"away"}, f.reportedModes)
}

// TestHandleDataMalformed verifies a broken JSON body is the only 4xx condition.
func TestHandleDataMalformed(t *testing.T) {
	t.Parallel()

	f := new(fakeService)
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/data", strings.NewReader(`{broken`))

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, f.readings)
}

// TestHandleAlarm verifies the alarm acknowledgement and the trigger call.
func TestHandleAlarm(t *testing.T) {
	t.Parallel()

	f := new(fakeService)
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/alarm", nil)

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Alarm received", rec.Body.String())
	require.Equal(t, 1, f.alarms)
}

// TestHandleCommand verifies the token body and the empty-queue empty body.
func TestHandleCommand(t *testing.T) {
	t.Parallel()

	f := &fakeService{pending: []safe.Command{safe.CommandStartMonitoring}}
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/command", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "startMonitoring", rec.Body.String())

	// Drained queue yields an empty body, still 200.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/command", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
}

// TestHandleHealth verifies the liveness endpoint.
func TestHandleHealth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(new(fakeService))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

// TestMethodNotAllowed verifies the device routes are method-scoped.
func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(new(fakeService))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
