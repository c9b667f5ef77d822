package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/pv-site-manager/internal/database"
	"github.com/iliyamo/pv-site-manager/internal/model"
)

// DocumentRepo stores document metadata. The file bytes live in blob
// storage under FilePath and are not managed here.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

const documentColumns = "id, file_path, file_type, notes, material_id, log_id, created_at"

func (r *DocumentRepo) Create(ctx context.Context, d model.Document) (uint64, error) {
	const q = `INSERT INTO documents
		(file_path, file_type, notes, material_id, log_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		d.FilePath, d.FileType, nullString(d.Notes), nullID(d.MaterialID), nullID(d.LogID), database.ToMillis(d.CreatedAt))
	if err != nil {
		return 0, err
	}
	return lastID(res)
}

func (r *DocumentRepo) Get(ctx context.Context, id uint64) (model.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, ErrDocumentNotFound
	}
	return d, err
}

func (r *DocumentRepo) List(ctx context.Context, skip, limit int) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Delete removes the metadata row only.
func (r *DocumentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func scanDocument(s rowScanner) (model.Document, error) {
	var (
		d             model.Document
		notes         sql.NullString
		material, log sql.NullInt64
		created       int64
	)
	if err := s.Scan(&d.ID, &d.FilePath, &d.FileType, &notes, &material, &log, &created); err != nil {
		return model.Document{}, err
	}
	d.Notes = stringPtr(notes)
	d.MaterialID = idPtr(material)
	d.LogID = idPtr(log)
	d.CreatedAt = database.FromMillis(created)
	return d, nil
}
