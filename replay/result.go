package replay

import (
	"fmt"

	"github.com/snaprec/snaprec/recipe"
)

// State is the terminal or in-progress state of a run.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Result aggregates the step-level outcomes of one run.
type Result struct {
	State      State
	TotalSteps int
	Completed  int

	// Set when State is StateFailed.
	FailedStep int // index into the step sequence, -1 otherwise
	FailedKind recipe.Action
	Err        error
}

func (r Result) fail(step int, kind recipe.Action, err error) Result {
	r.State = StateFailed
	r.FailedStep = step
	r.FailedKind = kind
	r.Err = err
	return r
}

// Failed reports whether the run ended in failure.
func (r Result) Failed() bool { return r.State == StateFailed }

// String summarizes the run for diagnostics.
func (r Result) String() string {
	if r.Failed() {
		return fmt.Sprintf("failed at step %d (%s) after %d/%d steps: %v",
			r.FailedStep, r.FailedKind, r.Completed, r.TotalSteps, r.Err)
	}
	return fmt.Sprintf("%s, %d/%d steps", r.State, r.Completed, r.TotalSteps)
}
