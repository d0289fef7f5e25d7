package booking

type CreateBookingRequest struct {
	Name     string  `json:"name" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Service  string  `json:"service" binding:"required"`
	Datetime string  `json:"datetime" binding:"required"`
	Master   string  `json:"master"`
	Revenue  float64 `json:"revenue" binding:"gte=0"`
	Notes    string  `json:"notes"`
	Status   string  `json:"status"`
	ClientID *int64  `json:"client_id"`
}

// PublicBookingRequest is the booking form of the public site.
type PublicBookingRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Service  string `json:"service" binding:"required"`
	Datetime string `json:"datetime" binding:"required"`
	Notes    string `json:"notes"`
}

// UpdateBookingRequest is a partial update; nil fields are left untouched.
// Version, when sent, must match the stored booking.
type UpdateBookingRequest struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Phone    *string  `json:"phone,omitempty" validate:"omitempty,min=3"`
	Service  *string  `json:"service,omitempty" validate:"omitempty,min=1"`
	Datetime *string  `json:"datetime,omitempty"`
	Master   *string  `json:"master,omitempty"`
	Revenue  *float64 `json:"revenue,omitempty" validate:"omitempty,gte=0"`
	Notes    *string  `json:"notes,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Version  *int     `json:"version,omitempty" validate:"omitempty,gte=1"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListQuery struct {
	Status   string `form:"status"`
	Master   string `form:"master"`
	ClientID *int64 `form:"client_id"`
	From     string `form:"from"`
	To       string `form:"to"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}
