package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cqs/queue-service/internal/models"
	"cqs/queue-service/internal/store"

	"github.com/jackc/pgx/v5"
)

func (s *Store) NextWaitingTicket(ctx context.Context, officeID int64) (models.Ticket, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE office_id = $1 AND status = $2
		ORDER BY created_at ASC, ticket_id ASC
		LIMIT 1
	`, officeID, models.StatusWaiting)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, false, nil
		}
		return models.Ticket{}, false, err
	}
	return ticket, true, nil
}

func (s *Store) StatusCounts(ctx context.Context, officeID int64) (map[models.Status]int, error) {
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, status := range models.Statuses {
		counts[status] = 0
	}

	rows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM tickets
		WHERE office_id = $1
		GROUP BY status
	`, officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status models.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *Store) ActiveCounters(ctx context.Context, officeID int64) ([]models.Counter, error) {
	return s.queryCounters(ctx, `
		SELECT DISTINCT c.counter_id, c.office_id, c.name, c.is_active, c.created_at, c.updated_at
		FROM counters c
		JOIN tickets t ON t.counter_id = c.counter_id
		WHERE c.office_id = $1 AND c.is_active
			AND t.status IN ('CALLED', 'SERVING')
		ORDER BY c.counter_id ASC
	`, officeID)
}

func (s *Store) IdleCounters(ctx context.Context, officeID int64) ([]models.Counter, error) {
	return s.queryCounters(ctx, `
		SELECT c.counter_id, c.office_id, c.name, c.is_active, c.created_at, c.updated_at
		FROM counters c
		WHERE c.office_id = $1 AND c.is_active
			AND NOT EXISTS (
				SELECT 1
				FROM tickets t
				WHERE t.counter_id = c.counter_id AND t.status IN ('CALLED', 'SERVING')
			)
		ORDER BY c.counter_id ASC
	`, officeID)
}

func (s *Store) queryCounters(ctx context.Context, query string, args ...interface{}) ([]models.Counter, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counters []models.Counter
	for rows.Next() {
		var counter models.Counter
		if err := rows.Scan(&counter.CounterID, &counter.OfficeID, &counter.Name, &counter.IsActive, &counter.CreatedAt, &counter.UpdatedAt); err != nil {
			return nil, err
		}
		counters = append(counters, counter)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counters, nil
}

// AverageServiceSeconds returns nil, not zero, when no ticket has both
// timestamps yet.
func (s *Store) AverageServiceSeconds(ctx context.Context, officeID int64) (*float64, error) {
	var avg sql.NullFloat64
	row := s.pool.QueryRow(ctx, `
		SELECT AVG(EXTRACT(EPOCH FROM (served_at - called_at)))
		FROM tickets
		WHERE office_id = $1 AND status = 'SERVED'
			AND called_at IS NOT NULL AND served_at IS NOT NULL
	`, officeID)
	if err := row.Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	value := avg.Float64
	return &value, nil
}

func (s *Store) RecentTickets(ctx context.Context, officeID int64, limit int) ([]store.ActivityEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT t.ticket_number, t.status, c.name, t.updated_at
		FROM tickets t
		LEFT JOIN counters c ON c.counter_id = t.counter_id
		WHERE t.office_id = $1
		ORDER BY t.updated_at DESC, t.ticket_id DESC
		LIMIT $2
	`, officeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []store.ActivityEntry
	for rows.Next() {
		var entry store.ActivityEntry
		var counterNameNull sql.NullString
		if err := rows.Scan(&entry.TicketNumber, &entry.Status, &counterNameNull, &entry.Timestamp); err != nil {
			return nil, err
		}
		if counterNameNull.Valid {
			name := counterNameNull.String
			entry.CounterName = &name
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
