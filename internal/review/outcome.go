package review

// Status is the terminal state of one pipeline step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	// StatusDegraded means the step produced output but some of the model
	// response was dropped or replaced with a sentinel.
	StatusDegraded Status = "degraded"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Outcome describes how a step went, next to the data it produced.
type Outcome struct {
	Step       string `json:"step"`
	Status     Status `json:"status"`
	Parsed     int    `json:"parsed"`
	Dropped    int    `json:"dropped"`
	Errors     int    `json:"errors"`
	FirstError string `json:"first_error,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// NewOutcome builds an outcome from the parse counters and failures of a step.
func NewOutcome(step string, parsed, dropped int, errs []error) Outcome {
	o := Outcome{
		Step:    step,
		Status:  StatusCompleted,
		Parsed:  parsed,
		Dropped: dropped,
		Errors:  len(errs),
	}
	if len(errs) > 0 {
		o.Status = StatusDegraded
		o.FirstError = errs[0].Error()
	}
	return o
}

// Finished reports whether the step reached a state downstream steps can rely on.
func (o Outcome) Finished() bool {
	return o.Status == StatusCompleted || o.Status == StatusDegraded
}
