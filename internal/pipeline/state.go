package pipeline

import "time"

// Phase is a step of the run state machine.
type Phase int

const (
	Idle Phase = iota
	Selecting
	Rasterizing
	Assembling
	LayingOut
	Succeeded
	Failed
)

var phaseNames = [...]string{"idle", "selecting", "rasterizing", "assembling", "laying_out", "succeeded", "failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Done reports whether p is terminal.
func (p Phase) Done() bool { return p == Succeeded || p == Failed }

// State is the worker-side view of a run.
type State struct {
	RunID   string
	Phase   Phase
	Current int
	Total   int
	Start   time.Time
	End     time.Time
	Output  string
	Err     error
}
