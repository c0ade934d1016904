package attendance

import (
	"sync"
	"time"
)

// FlowState is the client-visible registration state.
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowSubmitting
	FlowSuccess
	FlowFailure
)

// Flow drives the Idle -> Submitting -> {Success, Failure} -> Idle
// registration state machine. While an attempt is in flight repeat
// submissions are suppressed. Success holds long enough to be read;
// failure clears faster. A begin token that resolved after Reset or a
// newer Begin does not change state.
type Flow struct {
	mu           sync.Mutex
	state        FlowState
	message      string
	gen          uint64
	timer        *time.Timer
	successDwell time.Duration
	failureDwell time.Duration
}

// NewFlow creates a flow with the given dwell times.
func NewFlow(successDwell, failureDwell time.Duration) *Flow {
	if successDwell <= 0 {
		successDwell = 5 * time.Second
	}
	if failureDwell <= 0 {
		failureDwell = 2 * time.Second
	}
	return &Flow{successDwell: successDwell, failureDwell: failureDwell}
}

// Begin moves Idle to Submitting. The returned token must be handed to
// Succeed or Fail; ok is false when a submission is already in flight or
// a result is still dwelling.
func (f *Flow) Begin() (token uint64, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FlowIdle {
		return 0, false
	}
	f.gen++
	f.state = FlowSubmitting
	f.message = ""
	return f.gen, true
}

// Succeed records a successful registration and arms the long dwell.
func (f *Flow) Succeed(token uint64, message string) {
	f.resolve(token, FlowSuccess, message, f.successDwell)
}

// Fail records a failed registration and arms the short dwell.
func (f *Flow) Fail(token uint64, message string) {
	f.resolve(token, FlowFailure, message, f.failureDwell)
}

func (f *Flow) resolve(token uint64, state FlowState, message string, dwell time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token != f.gen || f.state != FlowSubmitting {
		return
	}
	f.state = state
	f.message = message
	gen := f.gen
	f.timer = time.AfterFunc(dwell, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.gen == gen {
			f.state = FlowIdle
			f.message = ""
		}
	})
}

// Reset returns the flow to Idle immediately and invalidates any pending
// token, so late resolutions cannot update state after teardown.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.state = FlowIdle
	f.message = ""
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// State returns the current state and its display message.
func (f *Flow) State() (FlowState, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.message
}
