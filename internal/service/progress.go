package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/repository"
)

// ProgressService manages milestone KPIs and the dashboard built on them.
type ProgressService struct {
	kpis   ProgressStore
	paging Paging
	clock  clock
}

func NewProgressService(kpis ProgressStore, paging Paging) *ProgressService {
	return &ProgressService{kpis: kpis, paging: paging}
}

type KPIInput struct {
	KPIName         string
	ProgressPercent float64
	TargetDate      *time.Time
	ActualDate      *time.Time
	Notes           *string
}

// KPIUpdate is a partial update. A nil ProgressPercent is left unchanged;
// the optional columns can also be cleared.
type KPIUpdate struct {
	ProgressPercent *float64
	TargetDate      Field[time.Time]
	ActualDate      Field[time.Time]
	Notes           Field[string]
}

// ProgressView is a page of KPIs with the dashboard for the whole project.
type ProgressView struct {
	KPIs      []model.ProgressKPI
	Dashboard Summary
}

func validPercent(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return validationf("progress_percent must be between 0 and 100")
	}
	return nil
}

func (s *ProgressService) Create(ctx context.Context, caller model.Identity, in KPIInput) (uint64, error) {
	in.KPIName = strings.TrimSpace(in.KPIName)
	if in.KPIName == "" {
		return 0, validationf("kpi_name is required")
	}
	if err := validPercent(in.ProgressPercent); err != nil {
		return 0, err
	}
	if err := authorize(caller, roleProgressCreate); err != nil {
		return 0, err
	}
	id, err := s.kpis.Create(ctx, model.ProgressKPI{
		KPIName:         in.KPIName,
		ProgressPercent: in.ProgressPercent,
		TargetDate:      in.TargetDate,
		ActualDate:      in.ActualDate,
		Notes:           in.Notes,
	})
	if err != nil {
		return 0, fmt.Errorf("insert kpi: %w", err)
	}
	return id, nil
}

// Update merges in into KPI id. The percent bound is checked before the
// caller's role, so an out-of-range value is rejected for everyone.
func (s *ProgressService) Update(ctx context.Context, caller model.Identity, id uint64, in KPIUpdate) error {
	if in.ProgressPercent != nil {
		if err := validPercent(*in.ProgressPercent); err != nil {
			return err
		}
	}
	if err := authorize(caller, roleProgressUpdate); err != nil {
		return err
	}
	k, err := s.kpis.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProgressNotFound) {
			return notFound("KPI")
		}
		return fmt.Errorf("get kpi: %w", err)
	}

	if in.ProgressPercent != nil {
		k.ProgressPercent = *in.ProgressPercent
	}
	in.TargetDate.applyTo(&k.TargetDate)
	in.ActualDate.applyTo(&k.ActualDate)
	in.Notes.applyTo(&k.Notes)
	if err := s.kpis.Update(ctx, k); err != nil {
		if errors.Is(err, repository.ErrProgressNotFound) {
			return notFound("KPI")
		}
		return fmt.Errorf("update kpi: %w", err)
	}
	return nil
}

// List returns one page of KPIs. The dashboard always covers every KPI,
// not just the page.
func (s *ProgressService) List(ctx context.Context, caller model.Identity, pg Page) (ProgressView, error) {
	pg, err := s.paging.normalize(pg)
	if err != nil {
		return ProgressView{}, err
	}
	if err := authorize(caller, roleRead); err != nil {
		return ProgressView{}, err
	}
	page, err := s.kpis.List(ctx, pg.Skip, pg.Limit)
	if err != nil {
		return ProgressView{}, fmt.Errorf("list kpis: %w", err)
	}
	dash, err := s.Dashboard(ctx)
	if err != nil {
		return ProgressView{}, err
	}
	return ProgressView{KPIs: page, Dashboard: dash}, nil
}

// Dashboard aggregates all KPIs as of now. It performs no authorization
// and is meant for internal callers such as scheduled jobs.
func (s *ProgressService) Dashboard(ctx context.Context) (Summary, error) {
	all, err := s.kpis.ListAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list all kpis: %w", err)
	}
	return Aggregate(all, s.clock.now()), nil
}
