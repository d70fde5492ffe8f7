package hub

import (
	"testing"
	"time"
)

func recvOrTimeout(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublishReachesSubscribedScopeOnly(t *testing.T) {
	h := New()

	office := NewClient("office-client", 4)
	region := NewClient("region-client", 4)
	h.Register(office)
	h.Register(region)
	h.Subscribe(office, Scope(ScopeOffice, 5))
	h.Subscribe(region, Scope(ScopeRegion, 2))

	if err := h.Publish(Scope(ScopeOffice, 5), []byte(`{"type":"TICKET_CREATED"}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if got := recvOrTimeout(t, office.Send); string(got) != `{"type":"TICKET_CREATED"}` {
		t.Fatalf("unexpected payload %s", got)
	}
	select {
	case msg := <-region.Send:
		t.Fatalf("region client should not receive office message, got %s", msg)
	default:
	}
}

func TestPublishToMultipleSubscribers(t *testing.T) {
	h := New()

	first := NewClient("first", 4)
	second := NewClient("second", 4)
	h.Register(first)
	h.Register(second)
	h.Subscribe(first, Scope(ScopeRegion, 2))
	h.Subscribe(second, Scope(ScopeRegion, 2))

	if err := h.Publish(Scope(ScopeRegion, 2), []byte("hello")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	recvOrTimeout(t, first.Send)
	recvOrTimeout(t, second.Send)
}

func TestPublishDropsSlowClient(t *testing.T) {
	h := New()

	slow := NewClient("slow", 1)
	h.Register(slow)
	h.Subscribe(slow, Scope(ScopeCounter, 9))

	if err := h.Publish(Scope(ScopeCounter, 9), []byte("one")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// Buffer is full; this publish must not block.
	done := make(chan struct{})
	go func() {
		_ = h.Publish(Scope(ScopeCounter, 9), []byte("two"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow client")
	}

	if got := recvOrTimeout(t, slow.Send); string(got) != "one" {
		t.Fatalf("expected first message, got %s", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := New()

	client := NewClient("client", 4)
	h.Register(client)
	h.Subscribe(client, Scope(ScopeOffice, 5))
	h.Unsubscribe(client, Scope(ScopeOffice, 5))

	if err := h.Publish(Scope(ScopeOffice, 5), []byte("late")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case msg := <-client.Send:
		t.Fatalf("unsubscribed client received %s", msg)
	default:
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	h := New()

	client := NewClient("client", 4)
	h.Register(client)
	h.Unregister(client)

	if _, open := <-client.Send; open {
		t.Fatal("send channel should be closed after unregister")
	}
}

func TestParseSubscribe(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"subscribe office", `{"action":"subscribe","scope":"office:5"}`, true},
		{"subscribe region", `{"action":"subscribe","scope":"region:2"}`, true},
		{"unsubscribe counter", `{"action":"unsubscribe","scope":"counter:9"}`, true},
		{"unknown action", `{"action":"listen","scope":"office:5"}`, false},
		{"unknown scope kind", `{"action":"subscribe","scope":"tenant:5"}`, false},
		{"missing id", `{"action":"subscribe","scope":"office"}`, false},
		{"non-numeric id", `{"action":"subscribe","scope":"office:abc"}`, false},
		{"zero id", `{"action":"subscribe","scope":"office:0"}`, false},
		{"not json", `subscribe office:5`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := ParseSubscribe([]byte(tc.input))
			if ok != tc.ok {
				t.Fatalf("ParseSubscribe(%s) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && msg.Scope == "" {
				t.Fatal("valid message must carry its scope")
			}
		})
	}
}
