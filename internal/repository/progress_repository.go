package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/pv-site-manager/internal/model"
)

// ProgressRepo persists milestone KPIs in the project_progress table.
type ProgressRepo struct {
	db *sql.DB
}

func NewProgressRepo(db *sql.DB) *ProgressRepo { return &ProgressRepo{db: db} }

const progressColumns = "id, kpi_name, progress_percent, target_date, actual_date, notes"

func (r *ProgressRepo) Create(ctx context.Context, k model.ProgressKPI) (uint64, error) {
	const q = `INSERT INTO project_progress
		(kpi_name, progress_percent, target_date, actual_date, notes)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		k.KPIName, k.ProgressPercent, nullMillis(k.TargetDate), nullMillis(k.ActualDate), nullString(k.Notes))
	if err != nil {
		return 0, err
	}
	return lastID(res)
}

func (r *ProgressRepo) Get(ctx context.Context, id uint64) (model.ProgressKPI, error) {
	k, err := scanProgress(r.db.QueryRowContext(ctx, "SELECT "+progressColumns+" FROM project_progress WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProgressKPI{}, ErrProgressNotFound
	}
	return k, err
}

// Update writes every column of k. Callers merge partial changes first.
func (r *ProgressRepo) Update(ctx context.Context, k model.ProgressKPI) error {
	const q = `UPDATE project_progress
		SET kpi_name = ?, progress_percent = ?, target_date = ?, actual_date = ?, notes = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		k.KPIName, k.ProgressPercent, nullMillis(k.TargetDate), nullMillis(k.ActualDate), nullString(k.Notes), k.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProgressNotFound
	}
	return nil
}

// List returns one page of KPIs ordered by ID.
func (r *ProgressRepo) List(ctx context.Context, skip, limit int) ([]model.ProgressKPI, error) {
	return r.query(ctx, "SELECT "+progressColumns+" FROM project_progress ORDER BY id LIMIT ? OFFSET ?", limit, skip)
}

// ListAll returns every KPI; the dashboard aggregates over the full set.
func (r *ProgressRepo) ListAll(ctx context.Context) ([]model.ProgressKPI, error) {
	return r.query(ctx, "SELECT "+progressColumns+" FROM project_progress ORDER BY id")
}

func (r *ProgressRepo) query(ctx context.Context, q string, args ...any) ([]model.ProgressKPI, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ProgressKPI{}
	for rows.Next() {
		k, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func scanProgress(s rowScanner) (model.ProgressKPI, error) {
	var (
		k              model.ProgressKPI
		target, actual sql.NullInt64
		notes          sql.NullString
	)
	if err := s.Scan(&k.ID, &k.KPIName, &k.ProgressPercent, &target, &actual, &notes); err != nil {
		return model.ProgressKPI{}, err
	}
	k.TargetDate = timePtr(target)
	k.ActualDate = timePtr(actual)
	k.Notes = stringPtr(notes)
	return k, nil
}
