package domain

import "time"

// RunStatus is the outcome of a command run
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// StepSummary is the serialisable record of one step of a run
type StepSummary struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Status   string                 `json:"status"`
	Duration time.Duration          `json:"duration_ns"`
	Message  string                 `json:"message,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RunSummary describes a finished impute, clean or transform run
type RunSummary struct {
	ID        string        `json:"id"`
	Command   string        `json:"command"`
	Input     string        `json:"input"`
	Output    string        `json:"output,omitempty"`
	Status    RunStatus     `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Steps     []StepSummary `json:"steps"`
	Error     string        `json:"error,omitempty"`
}

// Failed reports whether the run did not succeed
func (s RunSummary) Failed() bool {
	return s.Status != RunStatusSucceeded
}
