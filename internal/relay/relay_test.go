package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"cqs/queue-service/internal/store"
)

type fakeEventStore struct {
	mu      sync.Mutex
	events  []store.OutboxEvent
	offset  store.Offset
	cleaned time.Time
}

func (f *fakeEventStore) ListOutboxEvents(ctx context.Context, after store.Offset, limit int) ([]store.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.OutboxEvent
	for _, event := range f.events {
		if event.CreatedAt.After(after.LastEventTime) {
			out = append(out, event)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeEventStore) GetOffset(ctx context.Context, consumer string) (store.Offset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offset, nil
}

func (f *fakeEventStore) UpdateOffset(ctx context.Context, consumer string, offset store.Offset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offset = offset
	return nil
}

func (f *fakeEventStore) CleanupOutbox(ctx context.Context, before time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = before
	return nil
}

type capturingPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func newCapturingPublisher() *capturingPublisher {
	return &capturingPublisher{messages: make(map[string][][]byte)}
}

func (p *capturingPublisher) Publish(scope string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[scope] = append(p.messages[scope], payload)
	return nil
}

func (p *capturingPublisher) scopes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for scope := range p.messages {
		out = append(out, scope)
	}
	return out
}

func (p *capturingPublisher) get(scope string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[scope]
}

func counterID(id int64) *int64 { return &id }

func event(eventType string) store.OutboxEvent {
	return store.OutboxEvent{
		EventID:   "event-1",
		Type:      eventType,
		RegionID:  2,
		OfficeID:  5,
		CounterID: counterID(9),
		Payload:   json.RawMessage(`{"ticket_id":7,"office_id":5}`),
		CreatedAt: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
	}
}

func TestScopesForTicketCreated(t *testing.T) {
	scopes := ScopesFor(event(store.EventTicketCreated))
	want := []string{"office:5", "region:2"}
	if len(scopes) != len(want) {
		t.Fatalf("expected %v, got %v", want, scopes)
	}
	for i := range want {
		if scopes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, scopes)
		}
	}
}

func TestScopesForTicketCalled(t *testing.T) {
	scopes := ScopesFor(event(store.EventTicketCalled))
	want := []string{"office:5", "region:2", "counter:9"}
	if len(scopes) != len(want) {
		t.Fatalf("expected %v, got %v", want, scopes)
	}
	for i := range want {
		if scopes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, scopes)
		}
	}
}

func TestScopesForTicketCalledWithoutCounter(t *testing.T) {
	ev := event(store.EventTicketCalled)
	ev.CounterID = nil
	scopes := ScopesFor(ev)
	if len(scopes) != 2 {
		t.Fatalf("expected office and region only, got %v", scopes)
	}
}

func TestScopesForServiceProgress(t *testing.T) {
	for _, eventType := range []string{store.EventServiceStarted, store.EventServiceCompleted} {
		scopes := ScopesFor(event(eventType))
		if len(scopes) != 1 || scopes[0] != "office:5" {
			t.Fatalf("%s: expected office scope only, got %v", eventType, scopes)
		}
	}
}

func TestScopesForUnknownType(t *testing.T) {
	if scopes := ScopesFor(event("TICKET_EXPLODED")); scopes != nil {
		t.Fatalf("expected no scopes, got %v", scopes)
	}
}

func TestDispatchWrapsPayloadInEnvelope(t *testing.T) {
	publisher := newCapturingPublisher()
	r := New(&fakeEventStore{}, []Publisher{publisher}, Config{})

	r.Dispatch(event(store.EventTicketCalled))

	messages := publisher.get("counter:9")
	if len(messages) != 1 {
		t.Fatalf("expected one message on counter scope, got %d", len(messages))
	}

	var env Envelope
	if err := json.Unmarshal(messages[0], &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != store.EventTicketCalled {
		t.Fatalf("unexpected envelope type %q", env.Type)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["office_id"] != float64(5) {
		t.Fatalf("payload must pass through unchanged, got %v", data)
	}
}

func TestDispatchFansOutToAllPublishers(t *testing.T) {
	first := newCapturingPublisher()
	second := newCapturingPublisher()
	r := New(&fakeEventStore{}, []Publisher{first, second}, Config{})

	r.Dispatch(event(store.EventServiceCompleted))

	if len(first.get("office:5")) != 1 || len(second.get("office:5")) != 1 {
		t.Fatal("both publishers must receive the event")
	}
}

func TestRunAdvancesOffsetAndCleans(t *testing.T) {
	eventStore := &fakeEventStore{events: []store.OutboxEvent{event(store.EventTicketCreated)}}
	publisher := newCapturingPublisher()
	r := New(eventStore, []Publisher{publisher}, Config{
		PollInterval: 5 * time.Millisecond,
		Retention:    time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(publisher.scopes()) == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("relay never published the event")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	eventStore.mu.Lock()
	defer eventStore.mu.Unlock()
	if eventStore.offset.LastEventID != "event-1" {
		t.Fatalf("offset not advanced: %+v", eventStore.offset)
	}
	wantCleanup := eventStore.offset.LastEventTime.Add(-time.Hour)
	if !eventStore.cleaned.Equal(wantCleanup) {
		t.Fatalf("cleanup cutoff = %v, want %v", eventStore.cleaned, wantCleanup)
	}

	// The same event must not be published twice once the offset moved past it.
	count := len(publisher.get("office:5"))
	if count != 1 {
		t.Fatalf("expected exactly one office publish, got %d", count)
	}
}
