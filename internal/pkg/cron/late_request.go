package cron

import (
	"context"
	"time"
)

const reminderTimeout = 5 * time.Minute

// PendingReminder is the part of the late request service the reminder job needs.
type PendingReminder interface {
	RemindPending(ctx context.Context) error
}

// LateRequestJobs holds the periodic jobs of the late request lifecycle.
type LateRequestJobs struct {
	reminder PendingReminder
	interval time.Duration
}

func NewLateRequestJobs(reminder PendingReminder, interval time.Duration) *LateRequestJobs {
	return &LateRequestJobs{reminder: reminder, interval: interval}
}

func (j *LateRequestJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "remind_pending_late_requests",
		Interval: j.interval,
		Timeout:  reminderTimeout,
		Fn:       j.reminder.RemindPending,
	})
}
