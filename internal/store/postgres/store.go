package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cqs/queue-service/internal/models"
	"cqs/queue-service/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	officeCodePad = 3
	sequencePad   = 4
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const ticketColumns = `ticket_id, ticket_number, region_id, office_id, counter_id, status, created_at, called_at, served_at, updated_at`

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var ticket models.Ticket
	var counterIDNull sql.NullInt64
	var calledAtNull sql.NullTime
	var servedAtNull sql.NullTime
	if err := row.Scan(&ticket.TicketID, &ticket.TicketNumber, &ticket.RegionID, &ticket.OfficeID,
		&counterIDNull, &ticket.Status, &ticket.CreatedAt, &calledAtNull, &servedAtNull, &ticket.UpdatedAt); err != nil {
		return models.Ticket{}, err
	}
	ticket.CounterID = nullInt64Ptr(counterIDNull)
	ticket.CalledAt = nullTimePtr(calledAtNull)
	ticket.ServedAt = nullTimePtr(servedAtNull)
	return ticket, nil
}

func (s *Store) CreateTicket(ctx context.Context, regionID, officeID int64) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var officeRegionID int64
	row := tx.QueryRow(ctx, `
		SELECT region_id
		FROM offices
		WHERE office_id = $1
	`, officeID)
	if err = row.Scan(&officeRegionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrOfficeNotFound
		}
		return models.Ticket{}, err
	}
	if officeRegionID != regionID {
		err = store.ErrRegionMismatch
		return models.Ticket{}, err
	}

	createdAt := time.Now().UTC()
	seq, err := nextSequence(ctx, tx, officeID, createdAt)
	if err != nil {
		return models.Ticket{}, err
	}
	number := formatTicketNumber(officeID, createdAt, seq)

	row = tx.QueryRow(ctx, `
		INSERT INTO tickets (ticket_number, region_id, office_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+ticketColumns+`
	`, number, regionID, officeID, models.StatusWaiting, createdAt)
	ticket, err := scanTicket(row)
	if err != nil {
		return models.Ticket{}, err
	}

	if err = insertOutboxEvent(ctx, tx, store.EventTicketCreated, ticket, createdAt); err != nil {
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) CallNext(ctx context.Context, counterID int64) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var officeID int64
	var isActive bool
	row := tx.QueryRow(ctx, `
		SELECT office_id, is_active
		FROM counters
		WHERE counter_id = $1
	`, counterID)
	if err = row.Scan(&officeID, &isActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrCounterNotFound
		}
		return models.Ticket{}, err
	}
	if !isActive {
		err = store.ErrCounterInactive
		return models.Ticket{}, err
	}

	calledAt := time.Now().UTC()
	row = tx.QueryRow(ctx, `
		WITH next_ticket AS (
			SELECT ticket_id
			FROM tickets
			WHERE office_id = $1 AND status = $2
			ORDER BY created_at ASC, ticket_id ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE tickets
		SET status = $3,
			counter_id = $4,
			called_at = $5,
			updated_at = $5
		FROM next_ticket
		WHERE tickets.ticket_id = next_ticket.ticket_id
		RETURNING tickets.ticket_id, tickets.ticket_number, tickets.region_id, tickets.office_id,
			tickets.counter_id, tickets.status, tickets.created_at, tickets.called_at,
			tickets.served_at, tickets.updated_at
	`, officeID, models.StatusWaiting, models.StatusCalled, counterID, calledAt)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err = tx.Commit(ctx); err != nil {
				return models.Ticket{}, err
			}
			return models.Ticket{}, store.ErrNoTicket
		}
		return models.Ticket{}, err
	}

	if err = insertOutboxEvent(ctx, tx, store.EventTicketCalled, ticket, calledAt); err != nil {
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) StartService(ctx context.Context, ticketID int64) (models.Ticket, error) {
	return s.advanceTicket(ctx, ticketID, "start_service", models.StatusServing, store.EventServiceStarted, false)
}

func (s *Store) CompleteService(ctx context.Context, ticketID int64) (models.Ticket, error) {
	return s.advanceTicket(ctx, ticketID, "complete_service", models.StatusServed, store.EventServiceCompleted, true)
}

// advanceTicket moves a ticket to the next lifecycle state. The current row
// is locked first and the transition table consulted, so a ticket in the
// wrong state is rejected without any mutation or broadcast.
func (s *Store) advanceTicket(ctx context.Context, ticketID int64, action string, to models.Status, eventType string, stampServed bool) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var current models.Status
	row := tx.QueryRow(ctx, `
		SELECT status
		FROM tickets
		WHERE ticket_id = $1
		FOR UPDATE
	`, ticketID)
	if err = row.Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrTicketNotFound
		}
		return models.Ticket{}, err
	}
	if !store.ValidTransition(action, current) {
		err = store.ErrInvalidState
		return models.Ticket{}, err
	}

	occurredAt := time.Now().UTC()
	query := `
		UPDATE tickets
		SET status = $2,
			updated_at = $3
		WHERE ticket_id = $1
		RETURNING ` + ticketColumns
	if stampServed {
		query = `
		UPDATE tickets
		SET status = $2,
			served_at = $3,
			updated_at = $3
		WHERE ticket_id = $1
		RETURNING ` + ticketColumns
	}
	ticket, err := scanTicket(tx.QueryRow(ctx, query, ticketID, to, occurredAt))
	if err != nil {
		return models.Ticket{}, err
	}

	if err = insertOutboxEvent(ctx, tx, eventType, ticket, occurredAt); err != nil {
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) GetTicket(ctx context.Context, ticketID int64) (models.Ticket, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE ticket_id = $1
	`, ticketID)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, store.ErrTicketNotFound
		}
		return models.Ticket{}, err
	}
	return ticket, nil
}

// nextSequence serializes numbering per (office, calendar day): the upsert
// takes a row lock on the sequence row, so concurrent creates for the same
// office never observe the same value.
func nextSequence(ctx context.Context, tx pgx.Tx, officeID int64, createdAt time.Time) (int64, error) {
	var next int64
	row := tx.QueryRow(ctx, `
		INSERT INTO ticket_sequences (office_id, day, next_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (office_id, day)
		DO UPDATE SET next_number = ticket_sequences.next_number + 1
		RETURNING next_number
	`, officeID, createdAt.Format("2006-01-02"))
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

// formatTicketNumber renders OOO-YYYYMMDD-NNNN. Past 9999 the sequence field
// widens instead of wrapping, keeping numbers unique within the day.
func formatTicketNumber(officeID int64, day time.Time, seq int64) string {
	return fmt.Sprintf("%0*d-%s-%0*d", officeCodePad, officeID, day.Format("20060102"), sequencePad, seq)
}

func nullInt64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	v := value.Time
	return &v
}
