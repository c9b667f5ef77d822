package service

import (
	"testing"
	"time"

	"github.com/iliyamo/pv-site-manager/internal/model"
)

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, time.Now())
	if s.OverallProgressPercent != 0 || s.OverdueMilestones != 0 || len(s.Milestones) != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Milestones == nil {
		t.Fatal("milestones should serialise as an empty list")
	}
}

func TestAggregateOverdueAroundTarget(t *testing.T) {
	target := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	kpis := []model.ProgressKPI{{KPIName: "Inverters", ProgressPercent: 50, TargetDate: &target}}

	if got := Aggregate(kpis, target.Add(-time.Hour)).OverdueMilestones; got != 0 {
		t.Fatalf("before target: overdue = %d", got)
	}
	if got := Aggregate(kpis, target).OverdueMilestones; got != 0 {
		t.Fatalf("at target: overdue = %d", got)
	}
	if got := Aggregate(kpis, target.Add(time.Second)).OverdueMilestones; got != 1 {
		t.Fatalf("after target: overdue = %d", got)
	}
}

func TestAggregateUsesActualDate(t *testing.T) {
	target := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	late := target.Add(72 * time.Hour)
	early := target.Add(-72 * time.Hour)
	now := target.Add(30 * 24 * time.Hour)

	kpis := []model.ProgressKPI{
		{KPIName: "late", ProgressPercent: 100, TargetDate: &target, ActualDate: &late},
		{KPIName: "early", ProgressPercent: 100, TargetDate: &target, ActualDate: &early},
		{KPIName: "unscheduled", ProgressPercent: 0.01},
	}
	s := Aggregate(kpis, now)
	if s.OverdueMilestones != 1 {
		t.Fatalf("overdue = %d, want 1", s.OverdueMilestones)
	}
	if s.OverallProgressPercent != 66.67 {
		t.Fatalf("overall = %v, want 66.67", s.OverallProgressPercent)
	}
	m := s.Milestones[0]
	if m.Name != "late" || !m.Overdue || s.Milestones[1].Overdue || m.Target == nil || *m.Target != "2024-08-01T00:00:00Z" || m.Actual == nil {
		t.Fatalf("unexpected milestone %+v", m)
	}
	if s.Milestones[2].Target != nil || s.Milestones[2].Actual != nil {
		t.Fatalf("unscheduled milestone should have null dates: %+v", s.Milestones[2])
	}
}
