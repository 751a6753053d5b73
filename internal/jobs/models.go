package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"reelforge/internal/services"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSynthesizing Status = "synthesizing"
	StatusAligning     Status = "aligning"
	StatusRendering    Status = "rendering"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusCanceled     Status = "canceled"
)

// InterruptedReason is recorded on jobs found mid-flight when a new run starts.
const InterruptedReason = "interrupted before completion"

var allStatuses = []Status{
	StatusPending,
	StatusSynthesizing,
	StatusAligning,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
	StatusCanceled,
}

var processingStatuses = []Status{StatusSynthesizing, StatusAligning, StatusRendering}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transitions are expected.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// Job is one persisted generation attempt.
type Job struct {
	ID           string
	BatchID      string
	Title        string
	Voice        string
	Speed        float64
	Status       Status
	TitleEnd     float64
	CaptionCount int
	AudioSeconds float64
	AudioPath    string
	OutputPath   string
	ErrorKind    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Fail records err on the job using FailureStatus and services.Kind.
func (j *Job) Fail(err error) {
	if j == nil || err == nil {
		return
	}
	j.Status = FailureStatus(err)
	j.ErrorKind = services.Kind(err)
	j.ErrorMessage = err.Error()
}

// FailureStatus maps a pipeline error to the status persisted for the job.
// Cancellation is kept distinct so interrupted batches are not reported as
// broken renders.
func FailureStatus(err error) Status {
	if errors.Is(err, context.Canceled) {
		return StatusCanceled
	}
	return StatusFailed
}
