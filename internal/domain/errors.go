package domain

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrConflict  = errors.New("record was modified concurrently")
	ErrSlotTaken = errors.New("time slot is fully booked")
)
