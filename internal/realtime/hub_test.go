package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bookforge/bookforge-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for realtime message")
	}
	return Message{}
}

func TestHubDeliversInOrder(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	channel := "build." + uuid.New().String()

	client := hub.NewClient()
	hub.Subscribe(client, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventBuildStarted, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Message{Channel: channel, Event: EventOutlineReady, Data: map[string]any{"seq": 2}})

	first := recvMessage(t, client.Outbound, time.Second)
	second := recvMessage(t, client.Outbound, time.Second)
	if first.Event != EventBuildStarted {
		t.Fatalf("first event: want=%s got=%s", EventBuildStarted, first.Event)
	}
	if second.Event != EventOutlineReady {
		t.Fatalf("second event: want=%s got=%s", EventOutlineReady, second.Event)
	}
}

func TestHubReconnectGetsLaterMessages(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	channel := "build." + uuid.New().String()

	clientA := hub.NewClient()
	hub.Subscribe(clientA, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventBuildStarted})
	recvMessage(t, clientA.Outbound, time.Second)

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewClient()
	hub.Subscribe(clientB, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventBuildFinished})
	got := recvMessage(t, clientB.Outbound, time.Second)
	if got.Event != EventBuildFinished {
		t.Fatalf("reconnect event: want=%s got=%s", EventBuildFinished, got.Event)
	}
}

func TestHubIsolatesChannels(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	client := hub.NewClient()
	hub.Subscribe(client, "build.a")

	hub.Broadcast(Message{Channel: "build.b", Event: EventChapterStarted})
	hub.Broadcast(Message{Channel: "build.a", Event: EventChapterFinished})

	got := recvMessage(t, client.Outbound, time.Second)
	if got.Channel != "build.a" || got.Event != EventChapterFinished {
		t.Fatalf("got message from wrong channel: %+v", got)
	}
	select {
	case extra := <-client.Outbound:
		t.Fatalf("unexpected extra message: %+v", extra)
	default:
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	channel := "build." + uuid.New().String()

	client := hub.NewClient()
	hub.Subscribe(client, channel)
	hub.Unsubscribe(client, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventCoverReady})
	select {
	case msg := <-client.Outbound:
		t.Fatalf("unexpected message after unsubscribe: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}
