package jobs

import "context"

// Job is a unit of background work run by the Scheduler.
type Job interface {
	// Name identifies the job in logs and for on-demand runs.
	Name() string

	// Schedule is a cron spec ("0 3 * * *", "@every 1h"). An empty schedule
	// registers the job for on-demand runs only.
	Schedule() string

	Run(ctx context.Context) error
}
