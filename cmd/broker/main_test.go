package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nwillc/raydist/pkg/rlog"
	"github.com/nwillc/raydist/pkg/signaling"
)

func TestBrokerAcceptsWebSocketUpgrade(t *testing.T) {
	broker := signaling.NewBroker(rlog.New())
	mux := http.NewServeMux()
	mux.Handle("/signal", broker)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/signal"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(signaling.Message{Type: signaling.TypeConnectionRequest, ID: "smoke", SessionInfo: []byte(`{}`)}); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	// as the first peer for this id, no reply is expected yet; just confirm
	// the connection stays open rather than getting closed immediately.
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var msg signaling.Message
	err = conn.ReadJSON(&msg)
	if err == nil {
		t.Fatalf("did not expect a reply for the first peer, got %+v", msg)
	}
	if !strings.Contains(err.Error(), "timeout") && !strings.Contains(err.Error(), "i/o timeout") {
		t.Fatalf("expected a read timeout (connection still open), got: %v", err)
	}
}
