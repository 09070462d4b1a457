package livefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/recaudopro/recaudo-api/internal/domain/collection"
	"github.com/recaudopro/recaudo-api/internal/middleware"
	jwtpkg "github.com/recaudopro/recaudo-api/internal/pkg/jwt"
)

func waitEvent(t *testing.T, ch <-chan []byte) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var event Event
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return Event{}
}

func waitConnections(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, got %d", want, hub.ConnectionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCollectionRecordedReachesOnlyItsBusiness(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	bizA, bizB := uuid.New(), uuid.New()
	a := &Connection{UserID: uuid.New(), BusinessID: bizA, Send: make(chan []byte, 4)}
	b := &Connection{UserID: uuid.New(), BusinessID: bizB, Send: make(chan []byte, 4)}
	hub.Register(a)
	hub.Register(b)
	waitConnections(t, hub, 2)

	c := &collection.Collection{ID: uuid.New(), BusinessID: bizA, Amount: decimal.NewFromInt(15)}
	if err := hub.CollectionRecorded(context.Background(), c); err != nil {
		t.Fatalf("publish: %v", err)
	}

	event := waitEvent(t, a.Send)
	if event.Type != EventCollectionRecorded || event.Collection == nil || event.Collection.ID != c.ID {
		t.Fatalf("unexpected event %+v", event)
	}
	select {
	case msg := <-b.Send:
		t.Fatalf("other business received %s", msg)
	default:
	}

	hub.Unregister(a)
	waitConnections(t, hub, 1)
	if _, open := <-a.Send; open {
		t.Fatalf("send channel must be closed on unregister")
	}
}

func TestFullBufferDropsEvent(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	biz := uuid.New()
	slow := &Connection{UserID: uuid.New(), BusinessID: biz, Send: make(chan []byte, 1)}
	hub.Register(slow)
	waitConnections(t, hub, 1)

	for i := 0; i < 3; i++ {
		if err := hub.Publish(biz, &Event{Type: EventCollectionRecorded, BusinessID: biz}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if len(slow.Send) != 1 {
		t.Fatalf("expected one buffered event, got %d", len(slow.Send))
	}
}

func TestWebSocketFeed(t *testing.T) {
	jwtSvc := jwtpkg.NewService("test-secret", time.Minute, time.Hour)
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	r := chi.NewRouter()
	r.Mount("/ws", NewHandler(hub, nil).Routes(middleware.Auth(jwtSvc)))
	srv := httptest.NewServer(r)
	defer srv.Close()

	biz := uuid.New()
	token, err := jwtSvc.GenerateAccessToken(uuid.New(), biz, "cobrador")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial: %v (status %d)", err, status)
	}
	defer conn.Close()
	waitConnections(t, hub, 1)

	c := &collection.Collection{ID: uuid.New(), BusinessID: biz, Amount: decimal.NewFromInt(20)}
	if err := hub.CollectionRecorded(context.Background(), c); err != nil {
		t.Fatalf("publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read: %v", err)
	}
	if event.BusinessID != biz || event.Collection == nil || event.Collection.ID != c.ID {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	jwtSvc := jwtpkg.NewService("test-secret", time.Minute, time.Hour)
	hub := NewHub(nil)
	r := chi.NewRouter()
	r.Mount("/ws", NewHandler(hub, nil).Routes(middleware.Auth(jwtSvc)))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
