package clients

import "errors"

var (
	ErrValidation     = errors.New("validation error")
	ErrPhoneTaken     = errors.New("phone already belongs to another client")
	ErrMissingContact = errors.New("phone or instagram id is required")
)
