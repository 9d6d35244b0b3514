package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/choreledger/internal/model"
)

type fakeLog []model.Event

func (l fakeLog) Events(_ context.Context, after int64, limit int) ([]model.Event, error) {
	var out []model.Event
	for _, e := range l {
		if e.Seq > after && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func dial(t *testing.T, srv *httptest.Server, query string) *ws.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := ws.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readMessage(t *testing.T, conn *ws.Conn) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandleWebSocketReplayThenLive(t *testing.T) {
	hub := NewHub(slog.Default())
	log := fakeLog{testEvent(1, model.EventParentRegistered), testEvent(2, model.EventChildAdded)}
	srv := httptest.NewServer(HandleWebSocket(hub, log))
	defer srv.Close()

	conn := dial(t, srv, "?after=0")

	if got := readMessage(t, conn); got.Seq != 1 {
		t.Errorf("first seq = %d, want 1", got.Seq)
	}
	if got := readMessage(t, conn); got.Seq != 2 {
		t.Errorf("second seq = %d, want 2", got.Seq)
	}

	waitForClients(t, hub, 1)
	// Already replayed; must not be sent twice.
	hub.Publish(testEvent(2, model.EventChildAdded))
	hub.Publish(testEvent(3, model.EventTaskAdded))

	if got := readMessage(t, conn); got.Seq != 3 || got.Name != model.EventTaskAdded {
		t.Errorf("live message = %+v", got)
	}
}

func TestHandleWebSocketLiveOnly(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := httptest.NewServer(HandleWebSocket(hub, fakeLog{testEvent(1, model.EventParentRegistered)}))
	defer srv.Close()

	conn := dial(t, srv, "?names=TaskCompleted")
	waitForClients(t, hub, 1)

	hub.Publish(testEvent(2, model.EventTaskAdded))
	hub.Publish(testEvent(3, model.EventTaskCompleted))

	if got := readMessage(t, conn); got.Seq != 3 {
		t.Errorf("seq = %d, want 3", got.Seq)
	}
}

func TestHandleWebSocketBadAfter(t *testing.T) {
	hub := NewHub(slog.Default())
	h := HandleWebSocket(hub, fakeLog{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/ws?after=-1", nil))
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// burstLog hides all but the first events from the initial replay and
// publishes the rest live during it, more than the send buffer holds.
type burstLog struct {
	hub     *Hub
	all     fakeLog
	initial int
	calls   int
}

func (l *burstLog) Events(ctx context.Context, after int64, limit int) ([]model.Event, error) {
	l.calls++
	if l.calls == 1 {
		for _, e := range l.all[l.initial:] {
			l.hub.Publish(e)
		}
		return l.all[:l.initial].Events(ctx, after, limit)
	}
	return l.all.Events(ctx, after, limit)
}

func TestClientResyncsAfterDroppedFrames(t *testing.T) {
	hub := NewHub(slog.Default())
	const total = 100
	log := &burstLog{hub: hub, initial: 10}
	for i := int64(1); i <= total; i++ {
		log.all = append(log.all, testEvent(i, model.EventTaskAdded))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		NewClient(hub, conn, nil).Run(r.Context(), log, 0)
	}))
	defer srv.Close()

	conn := dial(t, srv, "")
	for want := int64(1); want <= total; want++ {
		if got := readMessage(t, conn); got.Seq != want {
			t.Fatalf("seq = %d, want %d", got.Seq, want)
		}
	}
}
