package api

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/oshokin/study-safe-server/internal/broadcast"
	"github.com/oshokin/study-safe-server/internal/domain/safe"
)

// Service abstracts the device-facing operations the transport layer
// depends on.
type Service interface {
	ReceiveReading(ctx context.Context, r safe.Reading, reportedMode string)
	TriggerAlarm(ctx context.Context)
	PollCommand(ctx context.Context) (safe.Command, bool)
}

// NewRouter wires the device endpoints and the viewer websocket upgrade
// into a mux router with CORS and request logging applied.
func NewRouter(svc Service, hub *broadcast.Hub, controller broadcast.Controller) http.Handler {
	g := &gateway{service: svc}

	r := mux.NewRouter()
	r.HandleFunc("/data", g.handleData).Methods(http.MethodPost)
	r.HandleFunc("/alarm", g.handleAlarm).Methods(http.MethodPost)
	r.HandleFunc("/command", g.handleCommand).Methods(http.MethodGet)
	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		hub.ServeWS(controller, w, req)
	}).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	return handlers.LoggingHandler(os.Stdout, cors(r))
}
