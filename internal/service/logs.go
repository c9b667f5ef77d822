package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/repository"
)

// LogService manages daily logs. Logs are private to their author.
type LogService struct {
	logs   LogStore
	paging Paging
	clock  clock
}

func NewLogService(logs LogStore, paging Paging) *LogService {
	return &LogService{logs: logs, paging: paging}
}

type LogInput struct {
	WorkersCount  int
	Tasks         string
	HoursWorked   float64
	EquipmentUsed string
	FuelConsumed  float64
}

func (in LogInput) validate() error {
	if in.WorkersCount < 0 {
		return validationf("workers_count must not be negative")
	}
	if in.HoursWorked < 0 || math.IsNaN(in.HoursWorked) || math.IsInf(in.HoursWorked, 0) {
		return validationf("hours_worked must be a non-negative number")
	}
	if in.FuelConsumed < 0 || math.IsNaN(in.FuelConsumed) || math.IsInf(in.FuelConsumed, 0) {
		return validationf("fuel_consumed must be a non-negative number")
	}
	return nil
}

// Create files a log for caller, dated now.
func (s *LogService) Create(ctx context.Context, caller model.Identity, in LogInput) (uint64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	if err := authorize(caller, roleLogCreate); err != nil {
		return 0, err
	}
	id, err := s.logs.Create(ctx, model.DailyLog{
		Date:          s.clock.now(),
		WorkersCount:  in.WorkersCount,
		Tasks:         in.Tasks,
		HoursWorked:   in.HoursWorked,
		EquipmentUsed: in.EquipmentUsed,
		FuelConsumed:  in.FuelConsumed,
		UserID:        caller.ID,
	})
	if err != nil {
		return 0, fmt.Errorf("insert log: %w", err)
	}
	return id, nil
}

// List returns one page of caller's own logs.
func (s *LogService) List(ctx context.Context, caller model.Identity, pg Page) ([]model.DailyLogSummary, error) {
	pg, err := s.paging.normalize(pg)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, roleRead); err != nil {
		return nil, err
	}
	out, err := s.logs.ListByUser(ctx, caller.ID, pg.Skip, pg.Limit)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return out, nil
}

// Get returns one of caller's logs. Other identities' logs are not found.
func (s *LogService) Get(ctx context.Context, caller model.Identity, id uint64) (model.DailyLog, error) {
	if err := authorize(caller, roleRead); err != nil {
		return model.DailyLog{}, err
	}
	l, err := s.logs.GetForUser(ctx, id, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrLogNotFound) {
			return model.DailyLog{}, notFound("log")
		}
		return model.DailyLog{}, fmt.Errorf("get log: %w", err)
	}
	return l, nil
}
