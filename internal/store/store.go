package store

import (
	"context"
	"encoding/json"
	"time"

	"cqs/queue-service/internal/models"
)

// Event types written to the outbox and fanned out to realtime scopes.
const (
	EventTicketCreated    = "TICKET_CREATED"
	EventTicketCalled     = "TICKET_CALLED"
	EventServiceStarted   = "SERVICE_STARTED"
	EventServiceCompleted = "SERVICE_COMPLETED"
)

// ActivityEntry is one row of the supervisor activity feed.
type ActivityEntry struct {
	TicketNumber string        `json:"ticket_number"`
	Status       models.Status `json:"status"`
	CounterName  *string       `json:"counter_name"`
	Timestamp    time.Time     `json:"timestamp"`
}

// TicketStore covers the lifecycle engine and the read-only queue selectors.
// Mutating operations are atomic: the status change and the matching outbox
// event commit together or not at all.
type TicketStore interface {
	CreateTicket(ctx context.Context, regionID, officeID int64) (models.Ticket, error)
	CallNext(ctx context.Context, counterID int64) (models.Ticket, error)
	StartService(ctx context.Context, ticketID int64) (models.Ticket, error)
	CompleteService(ctx context.Context, ticketID int64) (models.Ticket, error)
	GetTicket(ctx context.Context, ticketID int64) (models.Ticket, error)

	NextWaitingTicket(ctx context.Context, officeID int64) (models.Ticket, bool, error)
	StatusCounts(ctx context.Context, officeID int64) (map[models.Status]int, error)
	ActiveCounters(ctx context.Context, officeID int64) ([]models.Counter, error)
	IdleCounters(ctx context.Context, officeID int64) ([]models.Counter, error)
	AverageServiceSeconds(ctx context.Context, officeID int64) (*float64, error)
	RecentTickets(ctx context.Context, officeID int64, limit int) ([]ActivityEntry, error)
}

// EntityStore is the administrative CRUD surface over the durable records.
type EntityStore interface {
	ListRegions(ctx context.Context) ([]models.Region, error)
	CreateRegion(ctx context.Context, name string) (models.Region, error)
	UpdateRegion(ctx context.Context, regionID int64, name string) (models.Region, error)
	DeleteRegion(ctx context.Context, regionID int64) error

	ListOffices(ctx context.Context, regionID int64) ([]models.Office, error)
	GetOffice(ctx context.Context, officeID int64) (models.Office, error)
	CreateOffice(ctx context.Context, regionID int64, name string) (models.Office, error)
	UpdateOffice(ctx context.Context, officeID int64, name string) (models.Office, error)
	DeleteOffice(ctx context.Context, officeID int64) error

	ListCounters(ctx context.Context, officeID int64) ([]models.Counter, error)
	GetCounter(ctx context.Context, counterID int64) (models.Counter, error)
	CreateCounter(ctx context.Context, officeID int64, name string) (models.Counter, error)
	UpdateCounter(ctx context.Context, counterID int64, name string, isActive bool) (models.Counter, error)
	DeleteCounter(ctx context.Context, counterID int64) error

	ListOfficers(ctx context.Context, officeID int64) ([]models.Officer, error)
	CreateOfficer(ctx context.Context, name, userEmail string, counterID *int64) (models.Officer, error)
	UpdateOfficer(ctx context.Context, officerID int64, name string, counterID *int64) (models.Officer, error)
	DeleteOfficer(ctx context.Context, officerID int64) error
}

// OutboxEvent is a committed lifecycle transition waiting for broadcast.
type OutboxEvent struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	RegionID  int64           `json:"region_id"`
	OfficeID  int64           `json:"office_id"`
	CounterID *int64          `json:"counter_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Offset marks how far a relay consumer has read the outbox.
type Offset struct {
	LastEventTime time.Time
	LastEventID   string
}

// EventStore is consumed by the broadcast relay. Events become visible here
// only after the owning transaction has committed.
type EventStore interface {
	ListOutboxEvents(ctx context.Context, after Offset, limit int) ([]OutboxEvent, error)
	GetOffset(ctx context.Context, consumer string) (Offset, error)
	UpdateOffset(ctx context.Context, consumer string, offset Offset) error
	CleanupOutbox(ctx context.Context, before time.Time) error
}
