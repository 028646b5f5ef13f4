package events

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Recorder captures published events for assertions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestFanout_DeliversInOrder(t *testing.T) {
	first := &Recorder{}
	second := &Recorder{}
	fanout := Fanout{first, second}

	fanout.Publish(context.Background(), FundsDeposited{Caller: "0xadmin", Amount: 100})
	fanout.Publish(context.Background(), FundsAllocated{ProgramID: 0, Amount: 500})

	for _, rec := range []*Recorder{first, second} {
		got := rec.Events()
		if len(got) != 2 {
			t.Fatalf("expected 2 events, got %d", len(got))
		}
		if got[0].EventType() != "funds.deposited" || got[1].EventType() != "funds.allocated" {
			t.Fatalf("unexpected order: %s, %s", got[0].EventType(), got[1].EventType())
		}
	}
}

func TestHub_BroadcastsToClient(t *testing.T) {
	hub := NewHub(nil)
	if err := hub.Start(context.Background()); err != nil {
		t.Fatalf("start hub: %v", err)
	}
	defer hub.Stop(context.Background())

	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the server a moment to register the client.
	time.Sleep(50 * time.Millisecond)

	hub.Publish(context.Background(), FundsWithdrawn{ProgramID: 3, PIC: "0xpic", Note: "supplies", Amount: 120})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(msg, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Type != "funds.withdrawn" {
		t.Fatalf("unexpected event type %s", envelope.Type)
	}
}
