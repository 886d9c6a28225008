package sse

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// writeDeadline is extended after every frame. Heartbeats arrive well inside it.
const writeDeadline = 60 * time.Second

// Handler streams session state changes at GET /api/v1/events.
//
// The optional "types" query parameter is a comma-separated list of event
// types the client wants, e.g. ?types=search.updated,theme.changed.
// Heartbeats are always delivered.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// ConnectedEventData is the payload of the first frame on every stream.
type ConnectedEventData struct {
	ClientID string      `json:"client_id"`
	Types    []EventType `json:"types,omitempty"`
}

// ServeHTTP handles the SSE connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	wanted := parseTypes(r.URL.Query().Get("types"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect()
	if err != nil {
		h.logger.Error("failed to register SSE client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID))
	stream := &frameWriter{w: w, rc: rc, logger: log}

	hello := ConnectedEventData{ClientID: client.ID}
	for t := range wanted {
		hello.Types = append(hello.Types, t)
	}
	if err := stream.write("connected", hello); err != nil {
		log.Warn("failed to send initial connection message", slog.String("error", err.Error()))
		return
	}

	ctx := r.Context()
	for {
		select {
		case event, ok := <-client.EventChan:
			if !ok {
				log.Debug("client closed by manager")
				return
			}
			if !wants(wanted, event.Type) {
				continue
			}
			if err := stream.write(string(event.Type), event); err != nil {
				log.Debug("client disconnected during send")
				return
			}

		case <-client.Done:
			log.Debug("client closed by manager")
			return

		case <-ctx.Done():
			log.Debug("client context canceled")
			return
		}
	}
}

// parseTypes reads the subscription filter. An empty result means every type.
func parseTypes(raw string) map[EventType]struct{} {
	if raw == "" {
		return nil
	}
	set := make(map[EventType]struct{})
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set[EventType(part)] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func wants(set map[EventType]struct{}, t EventType) bool {
	if set == nil || t == EventHeartbeat {
		return true
	}
	_, ok := set[t]
	return ok
}

// frameWriter encodes "event:" and "data:" frames and flushes each one.
type frameWriter struct {
	w      http.ResponseWriter
	rc     *http.ResponseController
	logger *slog.Logger
}

func (f *frameWriter) write(eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(f.w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}
	if err := f.rc.Flush(); err != nil {
		return err
	}
	if err := f.rc.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		// Not every ResponseWriter supports deadlines.
		f.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}
	return nil
}
