package models

import "time"

// Status is the closed set of ticket lifecycle states. Transitions only ever
// move forward: WAITING -> CALLED -> SERVING -> SERVED.
type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusCalled  Status = "CALLED"
	StatusServing Status = "SERVING"
	StatusServed  Status = "SERVED"
)

// Statuses lists every lifecycle state in transition order.
var Statuses = []Status{StatusWaiting, StatusCalled, StatusServing, StatusServed}

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusCalled, StatusServing, StatusServed:
		return true
	}
	return false
}

type Ticket struct {
	TicketID     int64      `json:"ticket_id"`
	TicketNumber string     `json:"ticket_number"`
	RegionID     int64      `json:"region_id"`
	OfficeID     int64      `json:"office_id"`
	CounterID    *int64     `json:"counter_id"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CalledAt     *time.Time `json:"called_at,omitempty"`
	ServedAt     *time.Time `json:"served_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
