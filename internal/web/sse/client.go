package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/gameofchests/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 15 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one connected SSE stream
type Client struct {
	hub         *Hub
	identity    model.Identity
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client
func NewClient(hub *Hub, identity model.Identity) *Client {
	return &Client{
		hub:         hub,
		identity:    identity,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams hub events to the client until it disconnects. initial,
// when set, is written once the client is registered so no commit between
// the two is missed.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, identity model.Identity, initial func() ([]byte, error)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := NewClient(hub, identity)
	if !hub.Register(client) {
		http.Error(w, "Room is no longer watched", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	_, _ = w.Write(formatSSEMessage("connected", `{"status":"connected"}`))
	if initial != nil {
		msg, err := initial()
		if err != nil {
			_, _ = w.Write(formatSSEMessage("error", err.Error()))
			flusher.Flush()
			return
		}
		_, _ = w.Write(msg)
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
