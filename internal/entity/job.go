package entity

import (
	"time"
)

type JobStatus string

const (
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusError   JobStatus = "error"
)

// Terminal reports whether the status can no longer change.
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// BodyBase64 marks a Result body that was not valid UTF-8 and is carried
// as standard base64.
const BodyBase64 = "base64"

// Result is the upstream validator response, relayed verbatim. Body holds
// the raw text unless BodyEncoding is set.
type Result struct {
	StatusCode   int    `json:"statusCode"`
	ContentType  string `json:"contentType"`
	Body         string `json:"body"`
	BodyEncoding string `json:"bodyEncoding,omitempty"`
}

type Job struct {
	ID          string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Email       string     `json:"email"`
	URL         string     `json:"url"`
	Result      *Result    `json:"result,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Outcome is the terminal write a worker applies to a running job.
// Exactly one of Result and Err is set.
type Outcome struct {
	Result *Result
	Err    string
}

func DoneOutcome(r Result) Outcome {
	return Outcome{Result: &r}
}

func ErrorOutcome(msg string) Outcome {
	return Outcome{Err: msg}
}

func (o Outcome) Status() JobStatus {
	if o.Result != nil {
		return StatusDone
	}
	return StatusError
}
