package models

import "time"

type Region struct {
	RegionID  int64     `json:"region_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Office struct {
	OfficeID  int64     `json:"office_id"`
	RegionID  int64     `json:"region_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Counter struct {
	CounterID int64     `json:"counter_id"`
	OfficeID  int64     `json:"office_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Officer struct {
	OfficerID int64     `json:"officer_id"`
	CounterID *int64    `json:"counter_id"`
	Name      string    `json:"name"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
