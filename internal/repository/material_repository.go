package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/pv-site-manager/internal/database"
	"github.com/iliyamo/pv-site-manager/internal/model"
)

// MaterialRepo persists material shipments. The unique index on
// ddt_number is the authority on duplicates.
type MaterialRepo struct {
	db *sql.DB
}

func NewMaterialRepo(db *sql.DB) *MaterialRepo { return &MaterialRepo{db: db} }

const materialColumns = "id, ddt_number, packing_list, container_id, batch_number, non_conformity, notes, created_at"

// Create inserts m and returns its ID, or ErrDuplicateDDT when the DDT
// number is already recorded.
func (r *MaterialRepo) Create(ctx context.Context, m model.Material) (uint64, error) {
	const q = `INSERT INTO materials
		(ddt_number, packing_list, container_id, batch_number, non_conformity, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		m.DDTNumber, nullString(m.PackingList), nullString(m.ContainerID), m.BatchNumber,
		m.NonConformity, nullString(m.Notes), database.ToMillis(m.CreatedAt))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateDDT
		}
		return 0, err
	}
	return lastID(res)
}

// ExistsByDDT is the advisory pre-check for Create.
func (r *MaterialRepo) ExistsByDDT(ctx context.Context, ddt string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM materials WHERE ddt_number = ? LIMIT 1", ddt).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *MaterialRepo) Get(ctx context.Context, id uint64) (model.Material, error) {
	m, err := scanMaterial(r.db.QueryRowContext(ctx, "SELECT "+materialColumns+" FROM materials WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Material{}, ErrMaterialNotFound
	}
	return m, err
}

func (r *MaterialRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM materials WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *MaterialRepo) List(ctx context.Context, skip, limit int) ([]model.Material, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+materialColumns+" FROM materials ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update writes the mutable columns of m (non_conformity and notes).
// Callers merge partial changes first.
func (r *MaterialRepo) Update(ctx context.Context, m model.Material) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE materials SET non_conformity = ?, notes = ? WHERE id = ?",
		m.NonConformity, nullString(m.Notes), m.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMaterialNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMaterial(s rowScanner) (model.Material, error) {
	var (
		m                         model.Material
		packing, container, notes sql.NullString
		created                   int64
	)
	if err := s.Scan(&m.ID, &m.DDTNumber, &packing, &container, &m.BatchNumber, &m.NonConformity, &notes, &created); err != nil {
		return model.Material{}, err
	}
	m.PackingList = stringPtr(packing)
	m.ContainerID = stringPtr(container)
	m.Notes = stringPtr(notes)
	m.CreatedAt = database.FromMillis(created)
	return m, nil
}
