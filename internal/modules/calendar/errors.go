package calendar

import "errors"

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
