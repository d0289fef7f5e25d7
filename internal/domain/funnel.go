package domain

type FunnelStage string

const (
	StageVisitor        FunnelStage = "visitor"
	StageEngaged        FunnelStage = "engaged"
	StageStartedBooking FunnelStage = "started_booking"
	StageBooked         FunnelStage = "booked"
	StageCompleted      FunnelStage = "completed"
)

var FunnelStages = []FunnelStage{StageVisitor, StageEngaged, StageStartedBooking, StageBooked, StageCompleted}

type FunnelCounts struct {
	Visitor        int64 `db:"visitor"`
	Engaged        int64 `db:"engaged"`
	StartedBooking int64 `db:"started_booking"`
	Booked         int64 `db:"booked"`
	Completed      int64 `db:"completed"`
	NoShow         int64 `db:"no_show"`
}

func (c FunnelCounts) Get(stage FunnelStage) int64 {
	switch stage {
	case StageVisitor:
		return c.Visitor
	case StageEngaged:
		return c.Engaged
	case StageStartedBooking:
		return c.StartedBooking
	case StageBooked:
		return c.Booked
	case StageCompleted:
		return c.Completed
	}
	return 0
}
