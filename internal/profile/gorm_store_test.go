package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pac-voluntarios/portal/internal/models"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*GormStore, *gorm.DB) {
	t.Helper()

	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		t.Fatalf("sql db: %v", errDB)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if errMigrate := conn.AutoMigrate(&models.Profile{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return NewGormStore(conn), conn
}

func strPtr(s string) *string { return &s }

func seedProfile(t *testing.T, store *GormStore, p models.Profile) {
	t.Helper()
	if errCreate := store.Create(context.Background(), &p); errCreate != nil {
		t.Fatalf("seed profile %s: %v", p.ID, errCreate)
	}
}

func TestGetRoleStatus(t *testing.T) {
	store, _ := newTestStore(t)
	seedProfile(t, store, models.Profile{ID: "u-admin", Email: "chefe@pac.org", Role: "admin", Status: true})
	seedProfile(t, store, models.Profile{ID: "u-agent", Email: "agente@pac.org", Role: "agent", Status: false})

	got, errGet := store.GetRoleStatus(context.Background(), "u-admin")
	if errGet != nil {
		t.Fatalf("get admin: %v", errGet)
	}
	if got.Role != RoleAdmin || !got.Status.Active() {
		t.Fatalf("unexpected admin role/status: %+v", got)
	}

	got, errGet = store.GetRoleStatus(context.Background(), "u-agent")
	if errGet != nil {
		t.Fatalf("get agent: %v", errGet)
	}
	if got.Role != RoleAgent || got.Status.Active() {
		t.Fatalf("unexpected agent role/status: %+v", got)
	}

	if _, errMissing := store.GetRoleStatus(context.Background(), "nobody"); !errors.Is(errMissing, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errMissing)
	}
}

func TestGetRoleStatusNormalizesLegacyTextStatus(t *testing.T) {
	store, conn := newTestStore(t)
	if errExec := conn.Exec(
		`INSERT INTO profiles (id, email, role, status, admin_2fa_enabled, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"u-legacy", "legado@pac.org", "agent", "ativo", 0, time.Now(), time.Now(),
	).Error; errExec != nil {
		t.Fatalf("insert legacy row: %v", errExec)
	}

	got, errGet := store.GetRoleStatus(context.Background(), "u-legacy")
	if errGet != nil {
		t.Fatalf("get legacy: %v", errGet)
	}
	if !got.Status.Active() {
		t.Fatalf("expected legacy text status to be active, got %v", got.Status)
	}
}

func TestAdminSecretNormalizesLegacyTextStatus(t *testing.T) {
	store, conn := newTestStore(t)
	if errExec := conn.Exec(
		`INSERT INTO profiles (id, email, role, status, admin_secret_hash, admin_secret_salt, admin_2fa_enabled, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"u-off", "off@pac.org", "admin", "inativo", "aa", "bb", 1, time.Now(), time.Now(),
	).Error; errExec != nil {
		t.Fatalf("insert legacy row: %v", errExec)
	}

	rs, errGet := store.GetRoleStatus(context.Background(), "u-off")
	if errGet != nil {
		t.Fatalf("get legacy role status: %v", errGet)
	}
	if rs.Role != RoleAdmin || rs.Status.Active() {
		t.Fatalf("expected inactive admin, got %+v", rs)
	}

	secret, errSecret := store.GetAdminSecret(context.Background(), "u-off", "off@pac.org")
	if errSecret != nil {
		t.Fatalf("get legacy secret: %v", errSecret)
	}
	if secret.ID != "u-off" || secret.Status.Active() || !secret.Enabled || secret.Hash != "aa" {
		t.Fatalf("unexpected legacy secret: %+v", secret)
	}
}

func TestAdminSecretLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, store, models.Profile{ID: "u-1", Email: "Chefe@PAC.org", Matricula: strPtr("PAC-001"), Role: "admin", Status: true})

	ref, errFind := store.FindAdminByMatricula(ctx, " PAC-001 ")
	if errFind != nil {
		t.Fatalf("find by matricula: %v", errFind)
	}
	if ref.ID != "u-1" || ref.Email != "chefe@pac.org" {
		t.Fatalf("unexpected ref: %+v", ref)
	}

	enabled := true
	now := time.Now().UTC()
	if errUpdate := store.Update(ctx, "u-1", Fields{
		AdminSecretHash: strPtr("aa"),
		AdminSecretSalt: strPtr("bb"),
		Admin2FAEnabled: &enabled,
		AdminLastAuth:   &now,
	}); errUpdate != nil {
		t.Fatalf("update: %v", errUpdate)
	}

	secret, errSecret := store.GetAdminSecret(ctx, "u-1", "chefe@pac.org")
	if errSecret != nil {
		t.Fatalf("get secret: %v", errSecret)
	}
	if secret.Hash != "aa" || secret.Salt != "bb" || !secret.Enabled {
		t.Fatalf("unexpected secret: %+v", secret)
	}

	if _, errMismatch := store.GetAdminSecret(ctx, "u-1", "outro@pac.org"); !errors.Is(errMismatch, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on email mismatch, got %v", errMismatch)
	}

	disabled := false
	if errClear := store.Update(ctx, "u-1", Fields{ClearAdminSecret: true, ClearLastAuth: true, Admin2FAEnabled: &disabled}); errClear != nil {
		t.Fatalf("clear: %v", errClear)
	}
	secret, errSecret = store.GetAdminSecret(ctx, "u-1", "chefe@pac.org")
	if errSecret != nil {
		t.Fatalf("get secret after clear: %v", errSecret)
	}
	if secret.Hash != "" || secret.Salt != "" || secret.Enabled {
		t.Fatalf("expected cleared secret, got %+v", secret)
	}
}

func TestFindAdminByMatriculaIgnoresAgents(t *testing.T) {
	store, _ := newTestStore(t)
	seedProfile(t, store, models.Profile{ID: "u-2", Email: "agente@pac.org", Matricula: strPtr("PAC-002"), Role: "agent", Status: true})

	if _, errFind := store.FindAdminByMatricula(context.Background(), "PAC-002"); !errors.Is(errFind, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for agent matricula, got %v", errFind)
	}
}

func TestUpdateUnknownProfile(t *testing.T) {
	store, _ := newTestStore(t)
	enabled := true
	if errUpdate := store.Update(context.Background(), "ghost", Fields{Admin2FAEnabled: &enabled}); !errors.Is(errUpdate, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errUpdate)
	}
}
