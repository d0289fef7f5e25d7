package catalog

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrDuplicateKey = errors.New("service key already exists")
)
