package salonclient

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var (
	ErrStaleResult   = errors.New("slot result superseded by a newer date selection")
	ErrSlotNotLoaded = errors.New("time is not among the loaded slots")
	ErrInvalidState  = errors.New("operation not allowed in the current state")
	ErrSubmitting    = errors.New("reschedule already being submitted")
)

type FlowState string

const (
	StateIdle         FlowState = "idle"
	StateDateSelected FlowState = "date_selected"
	StateSlotsLoaded  FlowState = "slots_loaded"
	StateTimeSelected FlowState = "time_selected"
	StateSubmitted    FlowState = "submitted"
)

// SlotSource is the part of the API the reschedule flow talks to.
// *Client satisfies it.
type SlotSource interface {
	AvailableSlots(ctx context.Context, date, service, master string) ([]string, error)
	Reschedule(ctx context.Context, bookingID int64, date, hhmm string) (*Booking, error)
}

// RescheduleFlow drives the cabinet's "move my booking" dialog. Picking a
// date fetches that day's slots; only the answer for the most recent pick
// is ever applied, so clicking through dates quickly never shows slots of
// a day the client already left.
type RescheduleFlow struct {
	src       SlotSource
	bookingID int64
	service   string
	master    string

	mu         sync.Mutex
	state      FlowState
	seq        uint64
	cancel     context.CancelFunc
	date       string
	slots      []string
	time       string
	submitting bool
	result     *Booking
}

func NewRescheduleFlow(src SlotSource, bookingID int64, service, master string) *RescheduleFlow {
	return &RescheduleFlow{
		src:       src,
		bookingID: bookingID,
		service:   service,
		master:    master,
		state:     StateIdle,
	}
}

// SelectDate picks a day and loads its free slots with exactly one request.
// A fetch still running for an earlier pick is cancelled. If another
// SelectDate happens before this one returns, the result is dropped and
// ErrStaleResult is returned.
func (f *RescheduleFlow) SelectDate(ctx context.Context, date string) ([]string, error) {
	f.mu.Lock()
	if f.state == StateSubmitted || f.submitting {
		f.mu.Unlock()
		return nil, ErrInvalidState
	}
	f.seq++
	seq := f.seq
	if f.cancel != nil {
		f.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.state = StateDateSelected
	f.date = date
	f.slots = nil
	f.time = ""
	f.mu.Unlock()

	slots, err := f.src.AvailableSlots(fetchCtx, date, f.service, f.master)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		return nil, ErrStaleResult
	}
	cancel()
	f.cancel = nil
	if err != nil {
		return nil, err
	}
	f.slots = slots
	f.state = StateSlotsLoaded
	return slices.Clone(slots), nil
}

// SelectTime picks one of the loaded slots. Picking again replaces the
// previous choice.
func (f *RescheduleFlow) SelectTime(hhmm string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting || (f.state != StateSlotsLoaded && f.state != StateTimeSelected) {
		return ErrInvalidState
	}
	if !slices.Contains(f.slots, hhmm) {
		return ErrSlotNotLoaded
	}
	f.time = hhmm
	f.state = StateTimeSelected
	return nil
}

// Submit sends the reschedule. On failure the flow stays in time_selected
// so the client can pick another slot or retry.
func (f *RescheduleFlow) Submit(ctx context.Context) (*Booking, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitting
	}
	if f.state != StateTimeSelected {
		f.mu.Unlock()
		return nil, ErrInvalidState
	}
	f.submitting = true
	date, hhmm := f.date, f.time
	f.mu.Unlock()

	b, err := f.src.Reschedule(ctx, f.bookingID, date, hhmm)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return nil, err
	}
	f.state = StateSubmitted
	f.result = b
	return b, nil
}

// Reset returns the flow to idle and cancels any pending fetch.
func (f *RescheduleFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state = StateIdle
	f.date, f.time = "", ""
	f.slots = nil
	f.result = nil
}

func (f *RescheduleFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *RescheduleFlow) Date() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.date
}

func (f *RescheduleFlow) Time() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.time
}

func (f *RescheduleFlow) Slots() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.slots)
}

// Result is the booking returned by a successful Submit.
func (f *RescheduleFlow) Result() *Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}
