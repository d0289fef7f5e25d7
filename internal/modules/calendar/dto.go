package calendar

type DayView struct {
	Date string `json:"date"`
	Grid
}

type DaySummary struct {
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Bookings int    `json:"bookings"`
	IsToday  bool   `json:"is_today"`
}

type WeekView struct {
	Start string       `json:"start"`
	Days  []DaySummary `json:"days"`
}
