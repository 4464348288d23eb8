package application

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// SweepReport summarises one sweep run.
type SweepReport struct {
	Checked  int
	Closed   int
	Failures int
}

// Sweeper closes expired auctions in the background through the same resolve path the
// request handlers use, so nobody has to look at an auction for it to close.
type Sweeper struct {
	resolve  *ResolveAuctionUseCase
	d        Deps
	cron     *cron.Cron
	schedule string
	timeout  time.Duration
}

// SweeperOption customises the Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepCron injects a preconfigured cron instance, mainly for tests.
func WithSweepCron(c *cron.Cron) SweeperOption {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithSweepTimeout bounds a single run.
func WithSweepTimeout(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSweeper builds a sweeper for schedule, an empty schedule disables Start.
func NewSweeper(d Deps, schedule string, opts ...SweeperOption) *Sweeper {
	d = d.withDefaults()
	s := &Sweeper{
		resolve:  NewResolveAuctionUseCase(d),
		d:        d,
		schedule: schedule,
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers the sweep job and launches the scheduler.
func (s *Sweeper) Start() error {
	if s.schedule == "" {
		log.Info("auction sweep disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			log.Warn("auction sweep finished with errors", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule auction sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()
	log.Info("auction sweep scheduled", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler, the returned context is done once a running sweep finishes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce resolves every stored-active auction whose end time has passed. One failing auction
// does not stop the others.
func (s *Sweeper) RunOnce(ctx context.Context) (*SweepReport, error) {
	started := time.Now()
	defer func() { s.d.Metrics.ObserveSweep(time.Since(started)) }()

	due, err := s.d.Auctions.ListActiveEndingBefore(ctx, s.d.Lifecycle.Clock().Now())
	if err != nil {
		return nil, fmt.Errorf("auction sweep: list expired: %w", err)
	}

	report := &SweepReport{Checked: len(due)}
	var errs error
	for _, a := range due {
		res, err := s.resolve.Execute(ctx, a.ID)
		if err != nil {
			report.Failures++
			errs = multierr.Append(errs, err)
			continue
		}
		if res.Changed {
			report.Closed++
		}
		errs = multierr.Append(errs, res.DispatchErr)
	}

	if report.Checked > 0 {
		log.Info("auction sweep done",
			zap.Int("checked", report.Checked),
			zap.Int("closed", report.Closed),
			zap.Int("failures", report.Failures),
		)
	}
	return report, errs
}
