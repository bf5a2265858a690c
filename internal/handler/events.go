package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"docvault/internal/httputil"
	"docvault/internal/realtime"
)

// keepAliveInterval is how often an SSE comment is written to hold the
// connection open through proxies.
const keepAliveInterval = 10 * time.Second

// EventsHandler bridges the realtime bus to Server-Sent Events clients.
// Events are ephemeral invalidation hints; a client that reconnects
// re-fetches state instead of replaying missed events.
type EventsHandler struct {
	bus    *realtime.Bus
	logger *slog.Logger
}

// NewEventsHandler creates a new SSE events handler
func NewEventsHandler(bus *realtime.Bus, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		bus:    bus,
		logger: logger,
	}
}

// Stream subscribes the client to structural-change events
// GET /api/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	clientID, events := h.bus.Subscribe()
	defer h.bus.Unsubscribe(clientID)

	h.logger.Debug("sse client connected", "client_id", clientID)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("sse client disconnected", "client_id", clientID)
			return

		case event := <-events:
			if err := writeEvent(w, flusher, event); err != nil {
				h.logger.Debug("sse write failed", "client_id", clientID, "error", err)
				return
			}

		case <-keepAlive.C:
			// SSE comment line; clients ignore it, proxies see traffic.
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event realtime.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
