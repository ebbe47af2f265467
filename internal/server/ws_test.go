package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/prosentry/prosentry/internal/simulate"
)

func TestWebSocketStream(t *testing.T) {
	srv := newTestServer(t, openTestDB(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first wsMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if first.Type != "snapshot" || first.Snapshot == nil {
		t.Fatalf("expected snapshot first, got %+v", first)
	}
	if first.Snapshot.State != simulate.StateIdle {
		t.Errorf("expected idle snapshot, got %v", first.Snapshot.State)
	}

	rec := do(srv, "POST", "/api/start?source=demo", nil, "")
	if rec.Code != 200 {
		t.Fatalf("start: %d", rec.Code)
	}
	defer srv.runner.Stop()

	var entry wsMessage
	if err := conn.ReadJSON(&entry); err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if entry.Type != "entry" || entry.Entry == nil {
		t.Fatalf("expected timeline entry, got %+v", entry)
	}
	if entry.Entry.Step != 0 {
		t.Errorf("expected first step, got %d", entry.Entry.Step)
	}
}
