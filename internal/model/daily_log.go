package model

import "time"

// DailyLog is one day's field report filed by an identity. Logs are
// immutable once written and visible only to their author.
//
// Fields:
//  ID            – primary key identifier.
//  Date          – creation timestamp (UTC).
//  WorkersCount  – crew size on site.
//  Tasks         – free-text description of the work done.
//  HoursWorked   – total crew hours.
//  EquipmentUsed – free-text equipment list.
//  FuelConsumed  – litres of fuel.
//  UserID        – author of the log.
type DailyLog struct {
	ID            uint64    `json:"id"`             // daily_logs.id
	Date          time.Time `json:"date"`           // daily_logs.date
	WorkersCount  int       `json:"workers_count"`  // daily_logs.workers_count
	Tasks         string    `json:"tasks"`          // daily_logs.tasks
	HoursWorked   float64   `json:"hours_worked"`   // daily_logs.hours_worked
	EquipmentUsed string    `json:"equipment_used"` // daily_logs.equipment_used
	FuelConsumed  float64   `json:"fuel_consumed"`  // daily_logs.fuel_consumed
	UserID        uint64    `json:"user_id"`        // daily_logs.user_id
}

// DailyLogSummary is the list projection of a DailyLog.
type DailyLogSummary struct {
	ID           uint64    `json:"id"`
	Date         time.Time `json:"date"`
	WorkersCount int       `json:"workers_count"`
}
