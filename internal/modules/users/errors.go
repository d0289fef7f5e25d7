package users

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidRole       = errors.New("unknown role")
	ErrInvalidPermission = errors.New("unknown resource or action")
	ErrSelfDelete        = errors.New("cannot delete own account")
	ErrLastAdmin         = errors.New("at least one active admin must remain")
)
