package operations

import (
	"time"

	"tabprep/pkg/contracts/domain"
)

// Run tracks one command invocation and its steps
type Run struct {
	ID        string
	Command   string
	Input     string
	Output    string
	StartedAt time.Time
	Steps     []*StepState
}

func newRun(id, command, input string) *Run {
	return &Run{
		ID:        id,
		Command:   command,
		Input:     input,
		StartedAt: time.Now(),
	}
}

func (r *Run) addStep(id, name string) *StepState {
	st := NewStepState(id, name)
	r.Steps = append(r.Steps, st)
	return st
}

// Step returns the state of the step with the given id, or nil
func (r *Run) Step(id string) *StepState {
	for _, st := range r.Steps {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// Summary snapshots the run; err is the error the run ended with, if any
func (r *Run) Summary(err error) domain.RunSummary {
	sum := domain.RunSummary{
		ID:        r.ID,
		Command:   r.Command,
		Input:     r.Input,
		Output:    r.Output,
		Status:    domain.RunStatusSucceeded,
		StartedAt: r.StartedAt,
		Duration:  time.Since(r.StartedAt),
		Steps:     make([]domain.StepSummary, 0, len(r.Steps)),
	}
	for _, st := range r.Steps {
		sum.Steps = append(sum.Steps, st.Summary())
	}
	if err != nil {
		sum.Status = domain.RunStatusFailed
		if GetErrorType(err) == ErrorTypeCancellation {
			sum.Status = domain.RunStatusCancelled
		}
		sum.Error = err.Error()
	}
	return sum
}
