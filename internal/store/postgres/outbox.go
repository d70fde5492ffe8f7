package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"cqs/queue-service/internal/models"
	"cqs/queue-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// insertOutboxEvent records a lifecycle transition inside the owning
// transaction. The relay only sees the row once that transaction commits,
// which gives listeners publish-after-commit ordering for free.
func insertOutboxEvent(ctx context.Context, tx pgx.Tx, eventType string, ticket models.Ticket, occurredAt time.Time) error {
	payload := map[string]interface{}{
		"ticket_id":     ticket.TicketID,
		"ticket_number": ticket.TicketNumber,
		"region_id":     ticket.RegionID,
		"office_id":     ticket.OfficeID,
		"counter_id":    ticket.CounterID,
		"status":        ticket.Status,
		"timestamp":     occurredAt.Format(time.RFC3339Nano),
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO outbox_events (event_id, type, region_id, office_id, counter_id, payload_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.NewString(), eventType, ticket.RegionID, ticket.OfficeID, ticket.CounterID, payloadJSON, occurredAt)
	return err
}

func (s *Store) ListOutboxEvents(ctx context.Context, after store.Offset, limit int) ([]store.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT event_id, type, region_id, office_id, counter_id, payload_json, created_at
		FROM outbox_events
		WHERE created_at > $1
		ORDER BY created_at ASC, event_id ASC
		LIMIT $2
	`, after.LastEventTime, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []store.OutboxEvent
	for rows.Next() {
		var event store.OutboxEvent
		var counterIDNull sql.NullInt64
		if err := rows.Scan(&event.EventID, &event.Type, &event.RegionID, &event.OfficeID, &counterIDNull, &event.Payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		event.CounterID = nullInt64Ptr(counterIDNull)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) GetOffset(ctx context.Context, consumer string) (store.Offset, error) {
	var offset store.Offset
	row := s.pool.QueryRow(ctx, `
		SELECT last_event_time, last_event_id
		FROM event_offsets
		WHERE consumer = $1
	`, consumer)
	if err := row.Scan(&offset.LastEventTime, &offset.LastEventID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Offset{}, nil
		}
		return store.Offset{}, err
	}
	return offset, nil
}

func (s *Store) UpdateOffset(ctx context.Context, consumer string, offset store.Offset) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO event_offsets (consumer, last_event_time, last_event_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (consumer)
		DO UPDATE SET last_event_time = $2, last_event_id = $3
	`, consumer, offset.LastEventTime, offset.LastEventID)
	return err
}

func (s *Store) CleanupOutbox(ctx context.Context, before time.Time) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM outbox_events WHERE created_at < $1
	`, before)
	return err
}
