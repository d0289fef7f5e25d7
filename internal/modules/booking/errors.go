package booking

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrUnknownService          = errors.New("unknown service")
	ErrClientNotFound          = errors.New("client not found")
	ErrSlotTaken               = errors.New("master is busy at this time")
	ErrVersionConflict         = errors.New("booking was modified by someone else")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
