// Package reminder periodically reports collections with reviews due.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/config"
	"github.com/abhisek/lingo/internal/mastery"
	"github.com/abhisek/lingo/internal/spacedrep"
)

// Due is the number of items due in one collection.
type Due struct {
	CollectionID string
	Name         string
	Count        int
	Overdue      int
}

// Source reports due counts for a learner.
type Source interface {
	Due(ctx context.Context, now time.Time) ([]Due, error)
}

// Notifier delivers a reminder.
type Notifier interface {
	Remind(ctx context.Context, due []Due) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, due []Due) error

// Remind calls f.
func (f NotifierFunc) Remind(ctx context.Context, due []Due) error { return f(ctx, due) }

// Scheduler runs due checks on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       config.Reminder
	source    Source
	notifier  Notifier
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock injects the time source used for window checks.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the scheduler's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates a scheduler. Checks run in local time so the reminder window
// follows the learner's clock.
func New(cfg config.Reminder, source Source, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		cfg:       cfg,
		source:    source,
		notifier:  notifier,
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start schedules the periodic check and begins running it in the
// background. The first check runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	interval := max(s.cfg.IntervalMinutes, 1)
	_, err := s.scheduler.Every(interval).Minutes().Do(func() {
		if _, err := s.Check(ctx); err != nil {
			s.logger.Warn("reminder check failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("reminders scheduled",
		"interval_minutes", interval,
		"start_hour", s.cfg.StartHour,
		"end_hour", s.cfg.EndHour,
	)
	return nil
}

// Stop terminates all scheduled checks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Check sends a reminder when the current hour falls inside the window and
// something is due. It reports whether a reminder was sent.
func (s *Scheduler) Check(ctx context.Context) (bool, error) {
	now := s.now()
	if !InWindow(now.Hour(), s.cfg.StartHour, s.cfg.EndHour) {
		s.logger.Debug("outside reminder hours, skipping",
			"hour", now.Hour(),
			"start_hour", s.cfg.StartHour,
			"end_hour", s.cfg.EndHour,
		)
		return false, nil
	}

	due, err := s.source.Due(ctx, now)
	if err != nil {
		return false, fmt.Errorf("count due items: %w", err)
	}
	if len(due) == 0 {
		return false, nil
	}
	if err := s.notifier.Remind(ctx, due); err != nil {
		return false, fmt.Errorf("send reminder: %w", err)
	}
	return true, nil
}

// InWindow reports whether hour lies in [start, end]. A window whose start
// is after its end wraps past midnight.
func InWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}

// ProgressSource counts due items per collection from stored progress.
type ProgressSource struct {
	Service  *mastery.Service
	Registry *catalog.Registry
	UserID   string
}

// Due implements Source. Collections with nothing due are omitted.
func (p ProgressSource) Due(ctx context.Context, now time.Time) ([]Due, error) {
	var out []Due
	for _, c := range p.Registry.List() {
		progress, err := p.Service.Progress(ctx, p.UserID, c.ID)
		if err != nil {
			return nil, err
		}
		items := spacedrep.DueItems(progress, now)
		if len(items) == 0 {
			continue
		}
		d := Due{CollectionID: c.ID, Name: c.Name, Count: len(items)}
		for _, it := range items {
			if it.Status == spacedrep.ReviewOverdue {
				d.Overdue++
			}
		}
		out = append(out, d)
	}
	return out, nil
}
