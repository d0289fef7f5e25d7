package cabinet

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrAlreadyRegistered  = errors.New("phone is already registered")
	ErrNotOwner           = errors.New("booking belongs to another client")
	ErrNotReschedulable   = errors.New("booking can no longer be changed")
	ErrSlotUnavailable    = errors.New("selected time is not available")
	ErrConcurrentChange   = errors.New("booking was changed meanwhile")
)
