package service

import (
	"math"
	"time"

	"github.com/iliyamo/pv-site-manager/internal/model"
)

// Milestone is one KPI as shown on the dashboard.
type Milestone struct {
	Name     string  `json:"name"`
	Progress float64 `json:"progress"`
	Target   *string `json:"target"`
	Actual   *string `json:"actual"`
	Overdue  bool    `json:"-"`
}

// Summary is the dashboard computed over a set of KPIs.
type Summary struct {
	OverallProgressPercent float64     `json:"overall_progress_percent"`
	OverdueMilestones      int         `json:"overdue_milestones"`
	Milestones             []Milestone `json:"milestones"`
}

// Aggregate computes the dashboard for kpis as of now. Overall progress is
// the mean percent rounded to two decimals (0 for no KPIs). A KPI is
// overdue when it has a target and its actual date, or now if unfinished,
// is after the target.
func Aggregate(kpis []model.ProgressKPI, now time.Time) Summary {
	s := Summary{Milestones: make([]Milestone, 0, len(kpis))}
	if len(kpis) == 0 {
		return s
	}

	var total float64
	for _, k := range kpis {
		total += k.ProgressPercent
		overdue := isOverdue(k, now)
		if overdue {
			s.OverdueMilestones++
		}
		s.Milestones = append(s.Milestones, Milestone{
			Name:     k.KPIName,
			Progress: k.ProgressPercent,
			Target:   isoDate(k.TargetDate),
			Actual:   isoDate(k.ActualDate),
			Overdue:  overdue,
		})
	}
	s.OverallProgressPercent = math.Round(total/float64(len(kpis))*100) / 100
	return s
}

func isOverdue(k model.ProgressKPI, now time.Time) bool {
	if k.TargetDate == nil {
		return false
	}
	ref := now
	if k.ActualDate != nil {
		ref = *k.ActualDate
	}
	return ref.After(*k.TargetDate)
}

func isoDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
