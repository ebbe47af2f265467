package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/prosentry/prosentry/internal/simulate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is same-origin on localhost.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeWait = 5 * time.Second

// wsMessage is the envelope for everything sent over the socket.
type wsMessage struct {
	Type     string                  `json:"type"`
	Snapshot *simulate.Snapshot      `json:"snapshot,omitempty"`
	Entry    *simulate.TimelineEntry `json:"entry,omitempty"`
}

// handleWS streams the current snapshot followed by every timeline
// entry as it is appended. The buffer absorbs bursts; a client that
// falls further behind misses entries and should re-sync via
// /api/state.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	entries := make(chan simulate.TimelineEntry, 64)
	s.runner.Subscribe(entries)
	defer s.runner.Unsubscribe(entries)

	snap := s.runner.Snapshot()
	if err := writeWS(conn, wsMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
		return
	}

	// Reader goroutine: we never expect client messages, but reading
	// is how the closed connection is noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case entry := <-entries:
			if err := writeWS(conn, wsMessage{Type: "entry", Entry: &entry}); err != nil {
				return
			}
		}
	}
}

func writeWS(conn *websocket.Conn, msg wsMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
