// Package sse implements the server-sent-events stream used for live
// evaluation job updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stream writes SSE frames to one client connection.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewStream prepares a response for SSE and returns the stream. It fails if
// the connection does not support flushing (required for SSE).
func NewStream(w http.ResponseWriter) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported by connection")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, flusher: flusher}, nil
}

// WriteEvent sends one named event with a JSON payload and flushes.
func (s *Stream) WriteEvent(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode event %q: %w", event, err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("write event %q: %w", event, err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive sends an SSE comment line and flushes. Lines starting with
// a colon are ignored by clients; the write keeps proxies from timing out
// the connection and detects dropped clients.
func (s *Stream) WriteKeepAlive() error {
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive: %w", err)
	}
	s.flusher.Flush()
	return nil
}
