// Package relay bridges committed outbox events to the realtime publishers.
// It polls the outbox on a ticker, so events reach listeners only after the
// mutation that produced them has durably committed.
package relay

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"cqs/queue-service/internal/hub"
	"cqs/queue-service/internal/store"
)

const consumerName = "realtime-relay"

// Publisher delivers a payload to one scope. Delivery is best-effort: errors
// are logged by the relay and never fail the originating mutation.
type Publisher interface {
	Publish(scope string, payload []byte) error
}

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Relay struct {
	store      store.EventStore
	publishers []Publisher
	interval   time.Duration
	batchSize  int
	retention  time.Duration
	running    int32
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	Retention    time.Duration
}

func New(eventStore store.EventStore, publishers []Publisher, cfg Config) *Relay {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return &Relay{
		store:      eventStore,
		publishers: publishers,
		interval:   interval,
		batchSize:  batch,
		retention:  cfg.Retention,
	}
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
				continue
			}
			r.poll(ctx)
			atomic.StoreInt32(&r.running, 0)
		}
	}
}

func (r *Relay) poll(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	offset, err := r.store.GetOffset(pollCtx, consumerName)
	if err != nil {
		log.Printf("relay: load offset error: %v", err)
		return
	}
	if offset.LastEventTime.IsZero() {
		offset.LastEventTime = time.Unix(0, 0).UTC()
	}

	events, err := r.store.ListOutboxEvents(pollCtx, offset, r.batchSize)
	if err != nil {
		log.Printf("relay: list outbox error: %v", err)
		return
	}
	if len(events) == 0 {
		return
	}

	for _, event := range events {
		r.Dispatch(event)
		offset.LastEventTime = event.CreatedAt
		offset.LastEventID = event.EventID
	}

	if err := r.store.UpdateOffset(pollCtx, consumerName, offset); err != nil {
		log.Printf("relay: update offset error: %v", err)
		return
	}
	if r.retention > 0 {
		if err := r.store.CleanupOutbox(pollCtx, offset.LastEventTime.Add(-r.retention)); err != nil {
			log.Printf("relay: cleanup outbox error: %v", err)
		}
	}
}

// Dispatch publishes one event envelope to every scope the event type
// addresses.
func (r *Relay) Dispatch(event store.OutboxEvent) {
	payload, err := json.Marshal(Envelope{Type: event.Type, Data: event.Payload})
	if err != nil {
		log.Printf("relay: marshal envelope error: %v", err)
		return
	}
	for _, scope := range ScopesFor(event) {
		for _, publisher := range r.publishers {
			if err := publisher.Publish(scope, payload); err != nil {
				log.Printf("relay: publish %s to %s error: %v", event.Type, scope, err)
			}
		}
	}
}

// ScopesFor maps an event type to its broadcast scopes: creation fans out to
// office and region, a call additionally to the claiming counter, service
// progress to the office only.
func ScopesFor(event store.OutboxEvent) []string {
	switch event.Type {
	case store.EventTicketCreated:
		return []string{
			hub.Scope(hub.ScopeOffice, event.OfficeID),
			hub.Scope(hub.ScopeRegion, event.RegionID),
		}
	case store.EventTicketCalled:
		scopes := []string{
			hub.Scope(hub.ScopeOffice, event.OfficeID),
			hub.Scope(hub.ScopeRegion, event.RegionID),
		}
		if event.CounterID != nil {
			scopes = append(scopes, hub.Scope(hub.ScopeCounter, *event.CounterID))
		}
		return scopes
	case store.EventServiceStarted, store.EventServiceCompleted:
		return []string{hub.Scope(hub.ScopeOffice, event.OfficeID)}
	default:
		return nil
	}
}
