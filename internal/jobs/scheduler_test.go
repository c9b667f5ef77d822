package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/queue"
	"github.com/iliyamo/pv-site-manager/internal/service"
)

type staticDashboard struct {
	sum service.Summary
	err error
}

func (d staticDashboard) Dashboard(context.Context) (service.Summary, error) { return d.sum, d.err }

type recorder struct{ events []queue.Event }

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func TestDigestPublishesOverdueNames(t *testing.T) {
	now := time.Date(2024, 9, 1, 6, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)
	sum := service.Aggregate([]model.ProgressKPI{
		{KPIName: "Piling", ProgressPercent: 40, TargetDate: &past},
		{KPIName: "Cabling", ProgressPercent: 10, TargetDate: &future},
	}, now)

	rec := &recorder{}
	s := NewScheduler("0 0 6 * * *", staticDashboard{sum: sum}, rec, zerolog.Nop())
	s.now = func() time.Time { return now }

	if err := s.Digest(context.Background()); err != nil {
		t.Fatalf("digest: %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Type != queue.TypeOverdueDigest {
		t.Fatalf("events %+v", rec.events)
	}
	if rec.events[0].OccurredAt != "2024-09-01T06:00:00Z" {
		t.Fatalf("occurred_at %q", rec.events[0].OccurredAt)
	}
	var d queue.DigestEvent
	if err := json.Unmarshal(rec.events[0].Data, &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.OverdueMilestones != 1 || len(d.Overdue) != 1 || d.Overdue[0] != "Piling" || d.OverallProgressPercent != 25 {
		t.Fatalf("unexpected digest %+v", d)
	}
}

func TestDigestSkipsWhenOnSchedule(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler("0 0 6 * * *", staticDashboard{sum: service.Aggregate(nil, time.Now())}, rec, zerolog.Nop())
	if err := s.Digest(context.Background()); err != nil {
		t.Fatalf("digest: %v", err)
	}
	if len(rec.events) != 0 {
		t.Fatalf("unexpected events %+v", rec.events)
	}
}

func TestDigestPropagatesDashboardError(t *testing.T) {
	boom := errors.New("db down")
	s := NewScheduler("0 0 6 * * *", staticDashboard{err: boom}, &recorder{}, zerolog.Nop())
	if err := s.Digest(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler("every morning", staticDashboard{}, &recorder{}, zerolog.Nop())
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected parse error")
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler("0 0 6 * * *", staticDashboard{}, &recorder{}, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}
