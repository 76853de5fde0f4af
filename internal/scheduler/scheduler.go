package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"habitflow/internal/models"
	"habitflow/internal/services"
)

var (
	// ErrJobRunning is returned when a job is triggered while its previous run is still going.
	ErrJobRunning = errors.New("job is already running")
	// ErrStopped is returned for triggers that arrive after Stop has begun.
	ErrStopped = errors.New("scheduler is stopping")
)

// Runner executes a job by name.
type Runner interface {
	Run(ctx context.Context, name string) (services.JobReport, error)
}

// Claimer reserves a (job, day) pair so a scheduled job runs at most once per day. Release
// gives the pair back after a run that failed outright.
type Claimer interface {
	Claim(ctx context.Context, job string, day models.Date, at time.Time) (bool, error)
	Release(ctx context.Context, job string, day models.Date) error
}

type Config struct {
	// Schedules maps a job name to its cron expression (minute hour dom month dow).
	Schedules map[string]string
	Location  *time.Location
	Now       func() time.Time
}

// DailyScheduler triggers the daily jobs. Each job is single-flight: a trigger that arrives
// while the same job is running is skipped.
type DailyScheduler struct {
	cron    *cron.Cron
	runner  Runner
	claims  Claimer
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
	running map[string]*atomic.Bool

	mu       sync.Mutex
	started  bool
	stopping bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New registers every job in cfg.Schedules. claims may be nil, in which case scheduled runs
// are not deduplicated across restarts.
func New(runner Runner, claims Claimer, cfg Config, log *zap.Logger) (*DailyScheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &DailyScheduler{
		runner:  runner,
		claims:  claims,
		loc:     loc,
		now:     now,
		log:     log.Named("scheduler"),
		running: make(map[string]*atomic.Bool, len(cfg.Schedules)),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{s.log})),
		cron.WithLogger(cronLogger{s.log}),
	)

	for _, name := range sortedKeys(cfg.Schedules) {
		spec := cfg.Schedules[name]
		s.running[name] = new(atomic.Bool)
		if _, err := s.cron.AddFunc(spec, func() { s.fire(name) }); err != nil {
			cancel()
			return nil, fmt.Errorf("schedule %s (%q): %w", name, spec, err)
		}
	}
	return s, nil
}

// Start begins triggering jobs. Calling it twice has no effect.
func (s *DailyScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.stopping = false
	s.cron.Start()

	for _, e := range s.cron.Entries() {
		s.log.Info("job scheduled", zap.Time("next", e.Next))
	}
}

// Stop halts triggering and waits for running jobs. If ctx ends first, running jobs are
// cancelled and ctx's error is returned.
func (s *DailyScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.cron.Stop()
		s.started = false
	}
	s.stopping = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}

// RunNow runs a job immediately, bypassing the once-per-day claim but not single-flight.
func (s *DailyScheduler) RunNow(ctx context.Context, name string) (services.JobReport, error) {
	if _, ok := s.running[name]; !ok {
		return services.JobReport{}, &models.ValidationError{Field: "job", Message: fmt.Sprintf("unknown job %q", name)}
	}
	if err := s.begin(name, "manual"); err != nil {
		return services.JobReport{}, err
	}
	defer s.end(name)
	return s.execute(ctx, name, "manual")
}

// Jobs lists the registered job names.
func (s *DailyScheduler) Jobs() []string {
	names := make([]string, 0, len(s.running))
	for name := range s.running {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *DailyScheduler) fire(name string) {
	log := s.log.With(zap.String("job", name))
	if err := s.begin(name, "schedule"); err != nil {
		return
	}
	defer s.end(name)

	now := s.now()
	day := models.Today(now, s.loc)
	if s.claims != nil {
		ok, err := s.claims.Claim(s.ctx, name, day, now)
		if err != nil {
			log.Error("claiming job run failed", zap.Error(err))
			return
		}
		if !ok {
			log.Info("job already ran today", zap.String("day", day.String()))
			return
		}
	}

	if _, err := s.execute(s.ctx, name, "schedule"); err != nil {
		log.Error("job failed", zap.Error(err))
		s.release(name, day)
	}
}

// release frees the day's claim so a later trigger can retry the job.
func (s *DailyScheduler) release(name string, day models.Date) {
	if s.claims == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.claims.Release(ctx, name, day); err != nil {
		s.log.Error("releasing job claim failed", zap.String("job", name), zap.String("day", day.String()), zap.Error(err))
	}
}

// begin marks name as running and registers it with the stop wait group.
func (s *DailyScheduler) begin(name, trigger string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		s.log.Warn("scheduler stopping, skipping trigger", zap.String("job", name), zap.String("trigger", trigger))
		return ErrStopped
	}
	if !s.running[name].CompareAndSwap(false, true) {
		s.log.Warn("job still running, skipping trigger", zap.String("job", name), zap.String("trigger", trigger))
		return ErrJobRunning
	}
	s.wg.Add(1)
	return nil
}

func (s *DailyScheduler) end(name string) {
	s.running[name].Store(false)
	s.wg.Done()
}

func (s *DailyScheduler) execute(ctx context.Context, name, trigger string) (services.JobReport, error) {
	start := time.Now()
	report, err := s.runner.Run(ctx, name)
	s.log.Info("job run complete",
		zap.String("job", name),
		zap.String("trigger", trigger),
		zap.Duration("duration", time.Since(start)),
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed),
		zap.Error(err),
	)
	return report, err
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
