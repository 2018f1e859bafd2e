// Package api provides the WebSocket session watch stream.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	watchWriteTimeout = 10 * time.Second
	watchPingPeriod   = 30 * time.Second
)

var watchUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Keys never travel over this stream and sessions are unguessable
	// UUIDs, so cross-origin reads are acceptable here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// watchHandler handles GET /sessions/{id}/watch. It upgrades to a
// WebSocket and streams a state snapshot on every session change, starting
// with the current state.
func (s *Server) watchHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("watchHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	conn, err := watchUpgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("watchHandler upgrade failed", "sessionID", sess.ID(), "error", err)
		return
	}
	defer conn.Close()

	updates, stop := sess.Watch()
	defer stop()

	// Reader goroutine: we never expect client messages, but reading is
	// required to notice the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	writeSnapshot := func(v interface{}) error {
		conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
		return conn.WriteJSON(v)
	}

	if err := writeSnapshot(sess.Snapshot()); err != nil {
		slog.Debug("watchHandler initial write failed", "sessionID", sess.ID(), "error", err)
		return
	}

	ticker := time.NewTicker(watchPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, open := <-updates:
			if !open {
				// Session closed or evicted.
				conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := writeSnapshot(snap); err != nil {
				slog.Debug("watchHandler write failed", "sessionID", sess.ID(), "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
