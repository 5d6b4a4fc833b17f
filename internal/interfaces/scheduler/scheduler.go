package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"wealthtrackr/internal/shared/config"
)

const fetchTimeout = 5 * time.Minute

// ScheduleTime is a time of day at which the scheduler fires.
type ScheduleTime struct {
	Hour   int
	Minute int
}

func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// Spec renders the daily cron expression for this time.
func (st ScheduleTime) Spec() string {
	return fmt.Sprintf("%d %d * * *", st.Minute, st.Hour)
}

func ParseScheduleTime(s string) (ScheduleTime, error) {
	hour, minute, err := config.ParseClock(s)
	if err != nil {
		return ScheduleTime{}, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	return ScheduleTime{Hour: hour, Minute: minute}, nil
}

type Config struct {
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
	JobProvider   JobProvider
}

// Scheduler fires the job provider at every configured time of day and
// feeds the resulting jobs to a worker pool.
type Scheduler struct {
	cron          *cron.Cron
	workerPool    *WorkerPool
	scheduleTimes []ScheduleTime
	runOnStartup  bool
	jobProvider   JobProvider

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(cfg Config) (*Scheduler, error) {
	scheduleTimes := make([]ScheduleTime, 0, len(cfg.ScheduleTimes))
	for _, timeStr := range cfg.ScheduleTimes {
		st, err := ParseScheduleTime(timeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schedule time %q: %w", timeStr, err)
		}
		scheduleTimes = append(scheduleTimes, st)
	}
	if len(scheduleTimes) == 0 {
		return nil, fmt.Errorf("at least one schedule time is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:          cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(log.Default())))),
		workerPool:    NewWorkerPool(cfg.WorkerCount, cfg.JobDelay, cfg.QueueSize),
		scheduleTimes: scheduleTimes,
		runOnStartup:  cfg.RunOnStartup,
		jobProvider:   cfg.JobProvider,
		ctx:           ctx,
		cancel:        cancel,
	}

	for _, st := range scheduleTimes {
		if _, err := s.cron.AddFunc(st.Spec(), s.runJobs); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to register schedule %s: %w", st, err)
		}
	}

	log.Printf("Scheduler initialized with %d schedule times: %v", len(scheduleTimes), cfg.ScheduleTimes)
	return s, nil
}

func (s *Scheduler) Start() {
	s.workerPool.Start()

	if s.runOnStartup {
		log.Println("Scheduler: Running initial job batch on startup")
		s.TriggerNow()
	}

	s.cron.Start()
	log.Printf("Scheduler started, next run at %s", s.NextRun(time.Now()).Format(time.RFC3339))
}

// TriggerNow runs one batch immediately in the background.
func (s *Scheduler) TriggerNow() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runJobs()
	}()
}

func (s *Scheduler) runJobs() {
	if s.jobProvider == nil {
		log.Println("Scheduler: No job provider configured")
		return
	}
	if s.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, fetchTimeout)
	defer cancel()

	jobs, err := s.jobProvider(ctx)
	if err != nil {
		log.Printf("Scheduler: Failed to fetch jobs: %v", err)
		return
	}
	if len(jobs) == 0 {
		log.Println("Scheduler: No jobs to process")
		return
	}

	s.workerPool.SubmitBatch(jobs)
}

// Shutdown stops the cron triggers, waits for in-flight batches and then
// drains the worker pool.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	log.Println("Scheduler: Initiating graceful shutdown...")

	s.cancel()
	stopped := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		<-stopped.Done()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Println("Scheduler: Timeout waiting for running batches")
	}

	s.workerPool.ShutdownWithTimeout(timeout)
	log.Println("Scheduler: Shutdown complete")
}

// NextRun returns the first scheduled time strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	var next time.Time
	for _, st := range s.scheduleTimes {
		schedule, err := cron.ParseStandard(st.Spec())
		if err != nil {
			continue
		}
		if t := schedule.Next(now); next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next
}

func (s *Scheduler) ScheduleTimes() []ScheduleTime {
	return s.scheduleTimes
}
