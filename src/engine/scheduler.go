package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is one periodic task owned by the scheduler.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Scheduler owns the process's interval timers: signal regeneration,
// the venue health probe and the monitor sweep. Jobs can also be fired
// manually through Trigger, which is how tests step time without
// waiting on the wall clock.
type Scheduler struct {
	logger   *logrus.Entry
	jobs     []Job
	triggers map[string]chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(logger *logrus.Entry) *Scheduler {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scheduler{
		logger:   logger,
		triggers: make(map[string]chan struct{}),
	}
}

// Add registers a job. Must be called before Start.
func (s *Scheduler) Add(name string, interval time.Duration, run func(ctx context.Context)) {
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Run: run})
	s.triggers[name] = make(chan struct{}, 1)
}

// Start launches one goroutine per job. Jobs stop when ctx is
// cancelled; nothing else cancels them.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}

	s.logger.WithField("jobs", len(s.jobs)).Info("scheduler started")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.WithField("job", job.Name).Info("scheduler job stopped")
			return
		case <-ticker.C:
			job.Run(ctx)
		case <-s.triggers[job.Name]:
			job.Run(ctx)
		}
	}
}

// Trigger fires a job out of band. Non-blocking; a pending trigger is
// not queued twice.
func (s *Scheduler) Trigger(name string) {
	ch, ok := s.triggers[name]
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Wait blocks until every job loop has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
