package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// StreamContext is passed to SSE handlers for pushing events to the client.
type StreamContext interface {
	context.Context

	// Send writes a named event with a JSON-encoded payload and flushes it.
	Send(event string, data any) error
}

// SSEHandler is a function that handles Server-Sent Events streaming.
//
// The handler should run for the lifetime of the SSE connection, typically
// using a loop that listens for events and sends updates. The connection
// is closed when the handler returns or the client disconnects.
//
//	handler.SSE(func(stream handler.StreamContext) error {
//		sub := events.Subscribe(stream)
//		defer sub.Close()
//
//		for {
//			select {
//			case <-stream.Done():
//				return nil
//			case msg := <-sub.Receive(stream):
//				if err := stream.Send("progress", msg.Data); err != nil {
//					return err
//				}
//			}
//		}
//	})
type SSEHandler func(stream StreamContext) error

// sseResponse implements Response for Server-Sent Events.
type sseResponse struct {
	handler SSEHandler
}

// Render prepares the event-stream connection and executes the SSE handler.
func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return NewHTTPError(http.StatusInternalServerError, "streaming_unsupported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := &streamContext{
		Context: r.Context(),
		w:       w,
		flusher: flusher,
	}

	return s.handler(stream)
}

// SSE creates a response that runs the given handler over an open
// text/event-stream connection. Intended for EventSource consumers.
func SSE(handler SSEHandler) Response {
	return sseResponse{handler: handler}
}

type streamContext struct {
	context.Context
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *streamContext) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
