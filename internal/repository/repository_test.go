package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iliyamo/pv-site-manager/internal/database"
	"github.com/iliyamo/pv-site-manager/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func TestUserRepoCreateAndGet(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(newTestDB(t))

	id, err := users.Create(ctx, "mario", "$argon2id$hash", model.RoleSiteManager)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := users.GetByUsername(ctx, "mario")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != id || got.Role != model.RoleSiteManager || got.PasswordHash != "$argon2id$hash" {
		t.Fatalf("unexpected identity %+v", got)
	}

	if _, err := users.Create(ctx, "mario", "x", model.RoleOperator); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
	if _, err := users.GetByUsername(ctx, "luigi"); !errors.Is(err, model.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestUserRepoUnknownStoredRole(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	if _, err := db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role, created_at) VALUES ('old', 'h', 'Foreman', 0)"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := NewUserRepo(db).GetByUsername(ctx, "old")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Role != model.RoleUnknown {
		t.Fatalf("expected unknown role, got %s", got.Role)
	}
}

func TestLogRepoOwnerScoping(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	logs := NewLogRepo(db)

	alice, _ := users.Create(ctx, "alice", "h", model.RoleOperator)
	bob, _ := users.Create(ctx, "bob", "h", model.RoleOperator)

	day := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := logs.Create(ctx, model.DailyLog{Date: day, WorkersCount: 10 + i, Tasks: "panels", UserID: alice}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	bobLog, _ := logs.Create(ctx, model.DailyLog{Date: day, WorkersCount: 4, UserID: bob})

	page, err := logs.ListByUser(ctx, alice, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].WorkersCount != 11 || !page[0].Date.Equal(day) {
		t.Fatalf("unexpected page %+v", page)
	}

	if _, err := logs.GetForUser(ctx, bobLog, alice); !errors.Is(err, ErrLogNotFound) {
		t.Fatalf("expected ErrLogNotFound for foreign log, got %v", err)
	}
	got, err := logs.GetForUser(ctx, bobLog, bob)
	if err != nil || got.WorkersCount != 4 {
		t.Fatalf("own log: %+v %v", got, err)
	}
	if ok, err := logs.Exists(ctx, bobLog); err != nil || !ok {
		t.Fatalf("exists = %v %v", ok, err)
	}
	if ok, err := logs.Exists(ctx, 999); err != nil || ok {
		t.Fatalf("exists(999) = %v %v", ok, err)
	}
}

func TestMaterialRepoDuplicateDDT(t *testing.T) {
	ctx := context.Background()
	materials := NewMaterialRepo(newTestDB(t))

	m := model.Material{DDTNumber: "A123", BatchNumber: "B9", CreatedAt: time.Now()}
	if _, err := materials.Create(ctx, m); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := materials.Create(ctx, m); !errors.Is(err, ErrDuplicateDDT) {
		t.Fatalf("expected ErrDuplicateDDT, got %v", err)
	}
	if ok, err := materials.ExistsByDDT(ctx, "A123"); err != nil || !ok {
		t.Fatalf("ExistsByDDT = %v %v", ok, err)
	}
	if ok, err := materials.ExistsByDDT(ctx, "Z000"); err != nil || ok {
		t.Fatalf("ExistsByDDT(Z000) = %v %v", ok, err)
	}
}

func TestMaterialRepoPartialUpdate(t *testing.T) {
	ctx := context.Background()
	materials := NewMaterialRepo(newTestDB(t))

	id, err := materials.Create(ctx, model.Material{
		DDTNumber: "D1", BatchNumber: "B1", ContainerID: strPtr("MSCU1"), Notes: strPtr("ok"), CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := materials.Get(ctx, id)
	got.NonConformity = true
	got.Notes = strPtr("cracked frame")
	if err := materials.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = materials.Get(ctx, id)
	if !got.NonConformity || *got.Notes != "cracked frame" || got.PackingList != nil || *got.ContainerID != "MSCU1" {
		t.Fatalf("after update: %+v", got)
	}

	got.Notes = nil
	if err := materials.Update(ctx, got); err != nil {
		t.Fatalf("clear notes: %v", err)
	}
	if got, _ = materials.Get(ctx, id); got.Notes != nil || !got.NonConformity {
		t.Fatalf("after clearing notes: %+v", got)
	}

	if err := materials.Update(ctx, model.Material{ID: 999, NonConformity: true}); !errors.Is(err, ErrMaterialNotFound) {
		t.Fatalf("expected ErrMaterialNotFound, got %v", err)
	}
	if _, err := materials.Get(ctx, 999); !errors.Is(err, ErrMaterialNotFound) {
		t.Fatalf("expected ErrMaterialNotFound, got %v", err)
	}
}

func TestProgressRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	progress := NewProgressRepo(newTestDB(t))

	target := time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)
	id, err := progress.Create(ctx, model.ProgressKPI{KPIName: "Piling", ProgressPercent: 40, TargetDate: &target})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := progress.Create(ctx, model.ProgressKPI{KPIName: "Cabling", ProgressPercent: 10}); err != nil {
		t.Fatalf("create: %v", err)
	}

	k, err := progress.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if k.TargetDate == nil || !k.TargetDate.Equal(target) || k.ActualDate != nil || k.Notes != nil {
		t.Fatalf("unexpected kpi %+v", k)
	}

	done := target.Add(48 * time.Hour)
	k.ProgressPercent = 100
	k.ActualDate = &done
	if err := progress.Update(ctx, k); err != nil {
		t.Fatalf("update: %v", err)
	}
	k, _ = progress.Get(ctx, id)
	if k.ProgressPercent != 100 || k.ActualDate == nil || !k.ActualDate.Equal(done) {
		t.Fatalf("after update %+v", k)
	}

	page, _ := progress.List(ctx, 0, 1)
	all, _ := progress.ListAll(ctx)
	if len(page) != 1 || len(all) != 2 {
		t.Fatalf("page=%d all=%d", len(page), len(all))
	}

	if err := progress.Update(ctx, model.ProgressKPI{ID: 404, KPIName: "x"}); !errors.Is(err, ErrProgressNotFound) {
		t.Fatalf("expected ErrProgressNotFound, got %v", err)
	}
}

func TestDocumentRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	materials := NewMaterialRepo(db)
	docs := NewDocumentRepo(db)

	mid, _ := materials.Create(ctx, model.Material{DDTNumber: "D7", BatchNumber: "B", CreatedAt: time.Now()})
	id, err := docs.Create(ctx, model.Document{
		FilePath: "uploads/x.pdf", FileType: model.FileTypePDF, MaterialID: &mid, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := docs.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MaterialID == nil || *got.MaterialID != mid || got.LogID != nil {
		t.Fatalf("unexpected links %+v", got)
	}

	list, _ := docs.List(ctx, 0, 10)
	if len(list) != 1 {
		t.Fatalf("list len %d", len(list))
	}

	if err := docs.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := docs.Delete(ctx, id); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound on second delete, got %v", err)
	}
}
