package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is the unit of work fired by the Runner. The context is the
// Runner's lifetime context for scheduled fires, or the caller's for
// manual triggers.
type JobFunc func(ctx context.Context) error

// Runner fires registered jobs when their schedules come due.
type Runner struct {
	jobs     map[string]*job
	mu       sync.RWMutex
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// job holds a registered periodic job and its run state.
type job struct {
	name     string
	schedule Schedule
	fn       JobFunc
	onRun    func(name string, at time.Time, err error)
	nextRun  time.Time
	lastRun  *time.Time

	// running guards against overlapping executions: a scheduled fire
	// and a manual trigger contend on the same lock.
	running sync.Mutex
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCheckInterval sets how often the Runner polls for due jobs.
func WithCheckInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the Runner's logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source. Tests use this to control fires.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// JobOption configures a registered job.
type JobOption func(*job)

// WithOnRun registers a callback invoked after every execution with the
// run time and the job's error (nil on success).
func WithOnRun(fn func(name string, at time.Time, err error)) JobOption {
	return func(j *job) {
		j.onRun = fn
	}
}

// NewRunner creates a Runner with a 30 second check interval.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		jobs:     make(map[string]*job),
		interval: 30 * time.Second,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddJob registers a periodic job. The first fire is at
// schedule.Next(now), never immediately.
func (r *Runner) AddJob(name string, schedule Schedule, fn JobFunc, opts ...JobOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyRegistered, name)
	}

	j := &job{
		name:     name,
		schedule: schedule,
		fn:       fn,
		nextRun:  schedule.Next(r.now()),
	}
	for _, opt := range opts {
		opt(j)
	}
	r.jobs[name] = j

	r.logger.Info("registered periodic job",
		slog.String("job", name),
		slog.String("schedule", schedule.String()),
		slog.Time("next_run", j.nextRun))

	return nil
}

// Reschedule replaces a job's schedule, recomputing its next fire.
func (r *Runner) Reschedule(name string, schedule Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	j.schedule = schedule
	j.nextRun = schedule.Next(r.now())

	r.logger.Info("rescheduled periodic job",
		slog.String("job", name),
		slog.String("schedule", schedule.String()),
		slog.Time("next_run", j.nextRun))

	return nil
}

// RemoveJob unregisters a job. Removing an unknown name is a no-op.
func (r *Runner) RemoveJob(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.jobs, name)
}

// Jobs returns the names of all registered jobs.
func (r *Runner) Jobs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	return names
}

// NextRun returns when the named job will next fire.
func (r *Runner) NextRun(name string) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return j.nextRun, nil
}

// Trigger runs the named job immediately, bypassing its schedule but not
// its overlap guard: a trigger while the job is executing returns
// ErrJobRunning. The scheduled fire times are unaffected.
func (r *Runner) Trigger(ctx context.Context, name string) error {
	r.mu.RLock()
	j, ok := r.jobs[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if !j.running.TryLock() {
		return fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	defer j.running.Unlock()

	return r.execute(ctx, j, r.now())
}

// Start runs the polling loop until ctx is cancelled. It returns
// ErrNoJobs when called with an empty job table.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.RLock()
	jobCount := len(r.jobs)
	r.mu.RUnlock()

	if jobCount == 0 {
		return ErrNoJobs
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("cron runner shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.fireDue(ctx)
		}
	}
}

// fireDue runs every job whose next fire time has passed. Each due job
// runs in its own goroutine; a job still executing from a previous fire
// or a manual trigger is skipped, not queued.
func (r *Runner) fireDue(ctx context.Context) {
	now := r.now()

	r.mu.Lock()
	var due []*job
	for _, j := range r.jobs {
		if j.nextRun.After(now) {
			continue
		}
		j.nextRun = j.schedule.Next(now)
		due = append(due, j)
	}
	r.mu.Unlock()

	for _, j := range due {
		go func(j *job) {
			if !j.running.TryLock() {
				r.logger.Warn("skipping fire, job still running",
					slog.String("job", j.name))
				return
			}
			defer j.running.Unlock()

			if err := r.execute(ctx, j, now); err != nil {
				r.logger.Error("periodic job failed",
					slog.String("job", j.name),
					slog.String("error", err.Error()))
			}
		}(j)
	}
}

// execute runs the job body and records the run. Callers hold j.running.
func (r *Runner) execute(ctx context.Context, j *job, at time.Time) error {
	r.logger.Info("running periodic job", slog.String("job", j.name))

	err := j.fn(ctx)

	r.mu.Lock()
	j.lastRun = &at
	r.mu.Unlock()

	if j.onRun != nil {
		j.onRun(j.name, at, err)
	}
	return err
}
