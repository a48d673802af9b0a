package realtime

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zap.NewNop().Sugar(), "*")
	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPublishReachesRoomMembersOnly(t *testing.T) {
	hub, url := newTestHub(t)

	kitchen := dial(t, url)
	waiter := dial(t, url)
	if err := kitchen.WriteJSON(Message{Event: "join-kitchen"}); err != nil {
		t.Fatal(err)
	}
	if err := waiter.WriteJSON(Message{Event: "join-waiter"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return hub.Clients(RoomKitchen) == 1 && hub.Clients(RoomWaiter) == 1 })

	hub.Publish(RoomKitchen, EventNewOrder, map[string]string{"orderNumber": "ORD20261017001"})
	hub.Publish(RoomWaiter, EventOrderUpdated, map[string]string{"status": "READY"})

	_ = kitchen.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	if err := kitchen.ReadJSON(&got); err != nil {
		t.Fatalf("kitchen read: %v", err)
	}
	if got.Event != EventNewOrder || got.Data["orderNumber"] != "ORD20261017001" {
		t.Fatalf("kitchen got %+v", got)
	}

	_ = waiter.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := waiter.ReadJSON(&got); err != nil {
		t.Fatalf("waiter read: %v", err)
	}
	if got.Event != EventOrderUpdated {
		t.Fatalf("waiter should only see its room's event, got %q", got.Event)
	}
}

func TestLeaveRoom(t *testing.T) {
	hub, url := newTestHub(t)

	conn := dial(t, url)
	_ = conn.WriteJSON(Message{Event: "join-kitchen"})
	waitFor(t, func() bool { return hub.Clients(RoomKitchen) == 1 })

	_ = conn.WriteJSON(Message{Event: "leave-kitchen"})
	waitFor(t, func() bool { return hub.Clients(RoomKitchen) == 0 })
	if hub.Clients("") != 1 {
		t.Fatal("leaving a room must not disconnect the client")
	}
}

func TestPublishWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar(), "*")
	done := make(chan struct{})
	go func() {
		hub.Publish(RoomKitchen, EventNewOrder, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no clients")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Publish(RoomKitchen, EventNewOrder, 1)
	r.Publish(RoomWaiter, EventOrderUpdated, 2)
	if n := len(r.Find(RoomKitchen, EventNewOrder)); n != 1 {
		t.Fatalf("found %d kitchen events", n)
	}
	if n := len(r.Events()); n != 2 {
		t.Fatalf("recorded %d events", n)
	}
}
