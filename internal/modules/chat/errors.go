package chat

import "errors"

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrMessageTooLong   = errors.New("message is too long")
	ErrNoRecipient      = errors.New("recipient_id is required for a direct message")
	ErrRecipientMissing = errors.New("recipient does not exist or is inactive")
	ErrSelfMessage      = errors.New("cannot message yourself")
)
