package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/oshokin/study-safe-server/internal/domain/safe"
)

// Response bodies on the device protocol. The device matches them
// literally, so they are part of the wire format.
const (
	dataReceivedBody  = "Data received"
	alarmReceivedBody = "Alarm received"
)

// readingRequest is the POST /data payload.
type readingRequest struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
	Z float64 `json:"Z"`
	// Mode is the mode the device believes it is in. Advisory only.
	Mode string `json:"mode"`
}

// gateway adapts HTTP requests from the device to service operations.
// The device protocol has no error channel: business conditions never
// produce a non-2xx status, only malformed JSON does.
type gateway struct {
	service Service
}

// handleData accepts an accelerometer reading and forwards it to viewers.
func (g *gateway) handleData(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)

		return
	}

	reading := safe.Reading{X: req.X, Y: req.Y, Z: req.Z}
	g.service.ReceiveReading(r.Context(), reading, req.Mode)

	writeText(w, dataReceivedBody)
}

// handleAlarm accepts a device-reported alarm. The body, if any, is
// irrelevant and drained only to keep the connection reusable.
func (g *gateway) handleAlarm(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)

	g.service.TriggerAlarm(r.Context())

	writeText(w, alarmReceivedBody)
}

// handleCommand hands the device its oldest pending command as a bare
// token string, or an empty body when nothing is pending.
func (g *gateway) handleCommand(w http.ResponseWriter, r *http.Request) {
	cmd, ok := g.service.PollCommand(r.Context())
	if !ok {
		writeText(w, "")

		return
	}

	writeText(w, cmd.String())
}

// handleHealth reports liveness.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "OK")
}

// writeText writes a 200 response with a plain text body.
func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Nothing useful to do if the device hung up mid-response.
	_, _ = w.Write([]byte(body))
}
