package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/pv-site-manager/internal/database"
	"github.com/iliyamo/pv-site-manager/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts an identity with an already-hashed password and returns
// its ID. A taken username yields ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string, role model.Role) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role, created_at) VALUES (?,?,?,?)",
		username, passwordHash, role.String(), database.ToMillis(time.Now()))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	return lastID(res)
}

// GetByUsername fetches an identity by exact username. Stored role names
// that no longer parse come back as model.RoleUnknown.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.Identity, error) {
	var (
		u       model.Identity
		role    string
		created int64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, password_hash, role, created_at FROM users WHERE username = ? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Identity{}, ErrUserNotFound
		}
		return model.Identity{}, err
	}
	u.Role = model.ParseRole(role)
	u.CreatedAt = database.FromMillis(created)
	return u, nil
}
