package pipeline

import "time"

// Event is one entry of a run's event stream. Exactly one terminal event
// (Success or Error) ends every stream.
type Event interface {
	Terminal() bool
}

// Progress reports Current of Total units done since Start.
type Progress struct {
	Current int
	Total   int
	Start   time.Time
}

func (Progress) Terminal() bool { return false }

// Elapsed is the time since the run started.
func (p Progress) Elapsed(now time.Time) time.Duration { return now.Sub(p.Start) }

// ETA estimates the remaining time from the average time per unit so far.
// ok is false until at least one unit is done.
func (p Progress) ETA(now time.Time) (eta time.Duration, ok bool) {
	if p.Current <= 0 {
		return 0, false
	}
	remaining := p.Total - p.Current
	if remaining <= 0 {
		return 0, true
	}
	return p.Elapsed(now) / time.Duration(p.Current) * time.Duration(remaining), true
}

// Status carries a human readable phase label.
type Status struct {
	Text string
}

func (Status) Terminal() bool { return false }

// Success ends a run that wrote OutputPath.
type Success struct {
	OutputPath string
}

func (Success) Terminal() bool { return true }

// Error ends a failed run. Nothing was written to the destination.
type Error struct {
	Message string
	Err     error
}

func (Error) Terminal() bool { return true }

func (e Error) Error() string { return e.Message }

func (e Error) Unwrap() error { return e.Err }
