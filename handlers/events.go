// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/samber/lo"

	"github.com/danielhkuo/pulsepoll/metrics"
	"github.com/danielhkuo/pulsepoll/notify"
	"github.com/danielhkuo/pulsepoll/store"
)

const wsWriteTimeout = 10 * time.Second

// EventsHandler streams a marker each time a poll changes. Markers carry no
// poll data; clients re-fetch GET /polls/{id} when one arrives.
type EventsHandler struct {
	store          store.Polls
	notifier       *notify.Notifier
	metrics        *metrics.Admission
	originPatterns []string
}

// NewEventsHandler builds the stream handlers. allowedOrigins uses the
// CORS format (scheme://host[:port] or "*").
func NewEventsHandler(st store.Polls, notifier *notify.Notifier, m *metrics.Admission, allowedOrigins []string) *EventsHandler {
	return &EventsHandler{
		store:          st,
		notifier:       notifier,
		metrics:        m,
		originPatterns: originPatterns(allowedOrigins),
	}
}

// originPatterns converts CORS origins into the host patterns the
// websocket origin check expects
func originPatterns(origins []string) []string {
	return lo.FilterMap(origins, func(o string, _ int) (string, bool) {
		if o == "*" {
			return o, true
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			return "", false
		}
		return u.Host, true
	})
}

func marker() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// subscribe checks the poll exists and starts observing it. The
// subscription is taken before the stream opens so no change is missed
// in between.
func (h *EventsHandler) subscribe(w http.ResponseWriter, r *http.Request) (*notify.Subscription, bool) {
	pollID := r.PathValue("id")
	if _, err := h.store.GetPoll(r.Context(), pollID); err != nil {
		writeError(w, "open event stream", err)
		return nil, false
	}
	return h.notifier.Subscribe(pollID), true
}

// Stream handles GET /polls/{id}/events (Server-Sent Events)
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subscribe(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		slog.Error("failed to start event stream", "error", err)
		return
	}

	defer h.metrics.StreamOpened()()

	ctx := r.Context()
	for {
		if err := sub.Wait(ctx); err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", marker()); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// WebSocket handles GET /polls/{id}/ws. It sends the same markers as
// text messages and ignores anything the client sends.
func (h *EventsHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subscribe(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		// Accept has already written the HTTP error
		slog.Debug("websocket handshake rejected", "error", err)
		return
	}
	defer conn.CloseNow()

	defer h.metrics.StreamOpened()()

	// CloseRead cancels ctx once the client closes or the connection drops
	ctx := conn.CloseRead(r.Context())
	for {
		if err := sub.Wait(ctx); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		if err := writeMarker(ctx, conn); err != nil {
			return
		}
	}
}

func writeMarker(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(marker()))
}
