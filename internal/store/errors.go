package store

import "errors"

var (
	ErrRegionNotFound   = errors.New("region not found")
	ErrOfficeNotFound   = errors.New("office not found")
	ErrCounterNotFound  = errors.New("counter not found")
	ErrOfficerNotFound  = errors.New("officer not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrRegionMismatch   = errors.New("office does not belong to region")
	ErrCounterInactive  = errors.New("counter inactive")
	ErrInvalidState     = errors.New("invalid ticket state")
	ErrNoTicket         = errors.New("no ticket available")
	ErrRegionHasOffices = errors.New("region still has offices")
)
