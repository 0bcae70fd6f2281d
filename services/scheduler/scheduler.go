// Package scheduler runs housekeeping jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/photoproos/platform/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is one run of a job
type JobFunc func(ctx context.Context) error

type job struct {
	name    string
	spec    string
	fn      JobFunc
	entryID cron.EntryID
	running atomic.Bool
}

// Scheduler runs registered jobs on their cron schedules. A job never overlaps
// itself: a scheduled tick or a RunNow arriving while the job runs is skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]*job

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

// New creates a Scheduler. Each run gets its own context bounded by timeout.
// Metrics are registered on reg when it is not nil.
func New(logger *zap.Logger, timeout time.Duration, reg prometheus.Registerer) (*Scheduler, error) {
	cl := cronLogger{sugar: logger.Named("scheduler").Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		logger:  logger,
		timeout: timeout,
		jobs:    make(map[string]*job),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "photoproos_scheduler_job_runs_total",
			Help: "Scheduled job runs by job and outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "photoproos_scheduler_job_duration_seconds",
			Help:    "Scheduled job run duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{s.runs, s.duration} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("failed to register scheduler metrics: %w", err)
			}
		}
	}
	return s, nil
}

// Register adds a job. An empty spec leaves the job disabled.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}
	j := &job{name: name, spec: spec, fn: fn}
	if spec == "" {
		s.logger.Info("scheduled job disabled", zap.String("job", name))
		s.jobs[name] = j
		return nil
	}

	id, err := s.cron.AddFunc(spec, func() { _ = s.run(j) })
	if err != nil {
		return fmt.Errorf("invalid schedule for job %q: %w", name, err)
	}
	j.entryID = id
	s.jobs[name] = j
	return nil
}

func (s *Scheduler) run(j *job) error {
	if !j.running.CompareAndSwap(false, true) {
		s.runs.WithLabelValues(j.name, "skipped").Inc()
		s.logger.Info("job still running, skipping", zap.String("job", j.name))
		return services.ErrJobRunning
	}
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := j.fn(ctx)
	elapsed := time.Since(start)

	s.duration.WithLabelValues(j.name).Observe(elapsed.Seconds())
	if err != nil {
		s.runs.WithLabelValues(j.name, "error").Inc()
		s.logger.Error("scheduled job failed", zap.String("job", j.name), zap.Duration("duration", elapsed), zap.Error(err))
		return err
	}
	s.runs.WithLabelValues(j.name, "success").Inc()
	s.logger.Debug("scheduled job finished", zap.String("job", j.name), zap.Duration("duration", elapsed))
	return nil
}

// RunNow runs a registered job immediately, outside its schedule.
// It returns services.ErrJobRunning when the job is already running.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.run(j)
}

// JobInfo describes a registered job
type JobInfo struct {
	Name    string    `json:"name"`
	Spec    string    `json:"spec"`
	Enabled bool      `json:"enabled"`
	Next    time.Time `json:"next,omitempty"`
}

// Jobs lists registered jobs by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{Name: j.name, Spec: j.spec, Enabled: j.spec != ""}
		if info.Enabled {
			info.Next = s.cron.Entry(j.entryID).Next
		}
		out = append(out, info)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}
