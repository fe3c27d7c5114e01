// Package reminders holds the scheduled email jobs: the one-off nudge to gift
// recipients who never gave a shipping address, and the escalating request
// for a review after an order completes.
//
// Both jobs read candidates, send, then record the send. A failure between
// the send and the record means the row is picked again on the next run, so
// a duplicate email is possible. Callers must not run the same job
// concurrently against the same database.
package reminders

import (
	"context"
	"time"
)

// Result is what one job run reports back to the scheduler.
type Result struct {
	Sent   int `json:"sent"`
	Errors int `json:"errors"`
}

// Job is a runnable reminder job.
type Job interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
