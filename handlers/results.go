// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/pollvote/middleware"
	"github.com/danielhkuo/pollvote/results"
)

const liveWriteTimeout = 10 * time.Second

type ResultsHandler struct {
	results  *results.Projector
	upgrader websocket.Upgrader
}

// NewResultsHandler serves result views. allowedOrigin restricts live
// stream upgrades to one browser origin; empty allows any.
func NewResultsHandler(p *results.Projector, allowedOrigin string) *ResultsHandler {
	return &ResultsHandler{
		results: p,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// GetResults handles GET /polls/{id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	res, err := h.results.GetResults(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

// LiveResults handles GET /polls/{id}/results/live. It upgrades to a
// websocket and pushes a results view on connect and after every change.
// The stream ends when the client goes away or the poll is deleted.
func (h *ResultsHandler) LiveResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before upgrading so a missing poll is a plain 404
	sub, err := h.results.Subscribe(ctx, pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		slog.Warn("websocket upgrade failed", "poll_id", pollID, "error", err)
		return
	}
	defer conn.Close()

	// The client never sends anything meaningful; reading surfaces its
	// close frame or a dropped connection.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	slog.Debug("live results opened", "poll_id", pollID)
	for res := range sub.C {
		conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		if err := conn.WriteJSON(res); err != nil {
			slog.Debug("live results write failed", "poll_id", pollID, "error", err)
			return
		}
	}

	conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"))
	slog.Debug("live results closed", "poll_id", pollID)
}
