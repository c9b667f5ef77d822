// Package jobs runs periodic background work.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iliyamo/pv-site-manager/internal/queue"
	"github.com/iliyamo/pv-site-manager/internal/service"
)

// DashboardSource computes the project dashboard.
type DashboardSource interface {
	Dashboard(ctx context.Context) (service.Summary, error)
}

// Publisher sends a site event.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// Scheduler emits the overdue-milestone digest on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	dashboard DashboardSource
	pub       Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewScheduler parses spec with a leading seconds field, e.g.
// "0 0 6 * * *" for 06:00 every day.
func NewScheduler(spec string, dashboard DashboardSource, pub Publisher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		spec:      spec,
		dashboard: dashboard,
		pub:       pub,
		log:       log,
		now:       time.Now,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runDigest); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits up to five seconds for a running
// digest to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("digest job still running at shutdown")
	}
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Digest(ctx); err != nil {
		s.log.Error().Err(err).Msg("overdue digest failed")
	}
}

// Digest publishes one progress.overdue_digest event. Nothing is sent when
// no milestone is overdue.
func (s *Scheduler) Digest(ctx context.Context) error {
	sum, err := s.dashboard.Dashboard(ctx)
	if err != nil {
		return err
	}
	if sum.OverdueMilestones == 0 {
		s.log.Debug().Float64("overall", sum.OverallProgressPercent).Msg("no overdue milestones")
		return nil
	}

	payload := queue.DigestEvent{
		OverallProgressPercent: sum.OverallProgressPercent,
		OverdueMilestones:      sum.OverdueMilestones,
	}
	for _, m := range sum.Milestones {
		if m.Overdue {
			payload.Overdue = append(payload.Overdue, m.Name)
		}
	}
	ev, err := queue.NewEvent(queue.TypeOverdueDigest, "scheduler", s.now(), payload)
	if err != nil {
		return err
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		return err
	}
	s.log.Info().Int("overdue", sum.OverdueMilestones).Msg("overdue digest published")
	return nil
}
