package batch

import (
	"github.com/rs/zerolog"
)

// State is a step of the batch state machine
type State string

const (
	StateIdle           State = "idle"
	StateSampling       State = "sampling"
	StateValidating     State = "validating"
	StateScoring        State = "scoring"
	StateAccepted       State = "accepted"
	StateRetrying       State = "retrying"
	StateComplete       State = "complete"
	StatePartialFailure State = "partial_failure"
)

// tracker follows one batch through the state machine and logs every
// transition at debug level.
type tracker struct {
	state State
	slot  int
	path  []State
	log   zerolog.Logger
}

func newTracker(log zerolog.Logger) *tracker {
	return &tracker{state: StateIdle, slot: -1, path: []State{StateIdle}, log: log}
}

func (t *tracker) enter(next State) {
	t.log.Debug().
		Int("slot", t.slot).
		Str("from", string(t.state)).
		Str("to", string(next)).
		Msg("State transition")
	t.state = next
	t.path = append(t.path, next)
}

func (t *tracker) startSlot(slot int) {
	t.slot = slot
	t.enter(StateSampling)
}
