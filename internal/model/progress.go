package model

import "time"

// ProgressKPI tracks completion of one project milestone.
//
// Fields:
//  ID              – primary key identifier.
//  KPIName         – milestone label.
//  ProgressPercent – completion in [0,100].
//  TargetDate      – planned completion date, if scheduled.
//  ActualDate      – recorded completion date, if finished.
//  Notes           – free text.
type ProgressKPI struct {
	ID              uint64     `json:"id"`               // project_progress.id
	KPIName         string     `json:"kpi_name"`         // project_progress.kpi_name
	ProgressPercent float64    `json:"progress_percent"` // project_progress.progress_percent
	TargetDate      *time.Time `json:"target_date"`      // project_progress.target_date (nullable)
	ActualDate      *time.Time `json:"actual_date"`      // project_progress.actual_date (nullable)
	Notes           *string    `json:"notes"`            // project_progress.notes (nullable)
}
