package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/pv-site-manager/internal/database"
	"github.com/iliyamo/pv-site-manager/internal/model"
)

// LogRepo persists daily logs. Logs are append-only.
type LogRepo struct {
	db *sql.DB
}

func NewLogRepo(db *sql.DB) *LogRepo { return &LogRepo{db: db} }

// Create inserts l and returns the generated ID.
func (r *LogRepo) Create(ctx context.Context, l model.DailyLog) (uint64, error) {
	const q = `INSERT INTO daily_logs
		(date, workers_count, tasks, hours_worked, equipment_used, fuel_consumed, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		database.ToMillis(l.Date), l.WorkersCount, l.Tasks, l.HoursWorked, l.EquipmentUsed, l.FuelConsumed, l.UserID)
	if err != nil {
		return 0, err
	}
	return lastID(res)
}

// ListByUser returns one page of userID's logs in insertion order.
func (r *LogRepo) ListByUser(ctx context.Context, userID uint64, skip, limit int) ([]model.DailyLogSummary, error) {
	const q = "SELECT id, date, workers_count FROM daily_logs WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DailyLogSummary{}
	for rows.Next() {
		var (
			s    model.DailyLogSummary
			date int64
		)
		if err := rows.Scan(&s.ID, &date, &s.WorkersCount); err != nil {
			return nil, err
		}
		s.Date = database.FromMillis(date)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetForUser fetches a log only if userID wrote it. Logs owned by someone
// else are indistinguishable from missing ones.
func (r *LogRepo) GetForUser(ctx context.Context, id, userID uint64) (model.DailyLog, error) {
	const q = `SELECT id, date, workers_count, tasks, hours_worked, equipment_used, fuel_consumed, user_id
		FROM daily_logs WHERE id = ? AND user_id = ?`
	var (
		l    model.DailyLog
		date int64
	)
	err := r.db.QueryRowContext(ctx, q, id, userID).Scan(
		&l.ID, &date, &l.WorkersCount, &l.Tasks, &l.HoursWorked, &l.EquipmentUsed, &l.FuelConsumed, &l.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DailyLog{}, ErrLogNotFound
		}
		return model.DailyLog{}, err
	}
	l.Date = database.FromMillis(date)
	return l, nil
}

// Exists reports whether a log with id exists, regardless of owner.
func (r *LogRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM daily_logs WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
