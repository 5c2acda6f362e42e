package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/arjun8815/spinwise-erp/internal/config"
	"github.com/arjun8815/spinwise-erp/internal/database"
	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
)

// setupTestDB запускает PostgreSQL контейнер и применяет миграции
// (включая демонстрационные данные).
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("spinwise_test"),
		postgres.WithUsername("spinwise"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("SW_STORAGE", "postgres")
	t.Setenv("SW_DB_HOST", host)
	t.Setenv("SW_DB_PORT", port.Port())
	t.Setenv("SW_DB_NAME", "spinwise_test")
	t.Setenv("SW_DB_USER", "spinwise")
	t.Setenv("SW_DB_PASSWORD", "test-password")
	t.Setenv("SW_DB_SSL_MODE", "disable")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if _, err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// --- Тесты ProfileRepository (PostgreSQL) ---

func TestProfileCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(pool)

	id := uuid.New().String()
	p := &model.Profile{
		ID:                id,
		Email:             "weaver@spinwise.local",
		FirstName:         "Meena",
		LastName:          "Rajan",
		PreferredLanguage: model.LanguageTelugu,
		Role:              rbac.RoleEmployee,
	}

	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt не установлен")
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Email != p.Email || got.PreferredLanguage != model.LanguageTelugu {
		t.Errorf("GetByID() = %+v, ожидался %+v", got, p)
	}
	if got.Phone != nil {
		t.Errorf("Phone = %v, ожидался nil", *got.Phone)
	}

	role := rbac.RoleManager
	phone := "+91 98400 12345"
	updated, err := repo.Update(ctx, id, model.ProfileUpdate{Role: &role, Phone: &phone})
	if err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	if updated.Role != rbac.RoleManager {
		t.Errorf("Role = %q, ожидался manager", updated.Role)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Errorf("Phone = %v, ожидался %q", updated.Phone, phone)
	}
	if updated.FirstName != "Meena" {
		t.Errorf("FirstName = %q: незаданные поля не должны меняться", updated.FirstName)
	}

	if err := repo.Create(ctx, p); !errors.Is(err, ErrConflict) {
		t.Errorf("повторный Create() = %v, ожидался ErrConflict", err)
	}

	if _, err := repo.GetByID(ctx, uuid.New().String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() несуществующего = %v, ожидался ErrNotFound", err)
	}
	if _, err := repo.Update(ctx, uuid.New().String(), model.ProfileUpdate{Role: &role}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() несуществующего = %v, ожидался ErrNotFound", err)
	}
}

func TestProfileListByRole(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(pool)

	all, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List() вернул %d профилей, ожидалось 3 (seed)", len(all))
	}

	admin := rbac.RoleAdmin
	admins, err := repo.List(ctx, &admin)
	if err != nil {
		t.Fatalf("List(admin) ошибка: %v", err)
	}
	if len(admins) != 1 || admins[0].Email != "admin@spinwise.local" {
		t.Errorf("List(admin) = %v, ожидался единственный admin@spinwise.local", admins)
	}
}

func TestProfileWithinTxRollback(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewTxRunner(pool)
	repo := NewProfileRepository(pool)

	id := "7f3c1a2e-5b8d-4c1e-9a0f-1d2e3f4a5b03"
	errAbort := errors.New("отмена")

	err := runner.WithinTx(ctx, func(tx ProfileRepository) error {
		role := rbac.RoleAdmin
		if _, err := tx.Update(ctx, id, model.ProfileUpdate{Role: &role}); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("WithinTx() = %v, ожидалась ошибка fn", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Role != rbac.RoleEmployee {
		t.Errorf("Role = %q после отката, ожидался employee", got.Role)
	}
}

// --- Тесты репозиториев цеха (PostgreSQL) ---

func TestMachineRepositoryPostgres(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewMachineRepository(pool)

	spinning, err := repo.List(ctx, model.MachineFilter{Area: "Spinning"})
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(spinning) != 3 {
		t.Errorf("List(Spinning) вернул %d, ожидалось 3", len(spinning))
	}

	m := &model.Machine{ID: "MCH-011", Name: "Autoconer", Type: "Winding", Area: "Post-Spinning", Status: model.MachineIdle}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if err := repo.Create(ctx, m); !errors.Is(err, ErrConflict) {
		t.Errorf("повторный Create() = %v, ожидался ErrConflict", err)
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() ошибка: %v", err)
	}
	if counts["running"] != 7 || counts["idle"] != 2 {
		t.Errorf("CountByStatus() = %v", counts)
	}
}

func TestInventoryAndQualityPostgres(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	inv := NewInventoryRepository(pool)
	raw, err := inv.List(ctx, model.CategoryRawMaterial)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(raw) != 5 {
		t.Errorf("List(raw_material) вернул %d, ожидалось 5", len(raw))
	}
	totals, err := inv.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals() ошибка: %v", err)
	}
	if len(totals) != 3 {
		t.Errorf("Totals() вернул %d разделов, ожидалось 3", len(totals))
	}

	q := NewQualityRepository(pool)
	found, err := q.List(ctx, "open-end")
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(found) != 1 || found[0].ID != "TST005" {
		t.Errorf("List(open-end) = %v, ожидался TST005", found)
	}
	if _, err := q.List(ctx, "100%"); err != nil {
		t.Errorf("List() со спецсимволами LIKE: %v", err)
	}

	orders, err := NewOrderRepository(pool).ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent() ошибка: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "ORD-1234" {
		t.Errorf("ListRecent(2) = %v, ожидался первым ORD-1234", orders)
	}
}

func TestPgError(t *testing.T) {
	if err := pgError(nil, "операция"); err != nil {
		t.Errorf("nil должен остаться nil, получено %v", err)
	}
	if err := pgError(pgx.ErrNoRows, "операция"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ErrNoRows: %v", err)
	}
	if err := pgError(&pgconn.PgError{Code: "23505"}, "операция"); !errors.Is(err, ErrConflict) {
		t.Errorf("unique_violation: %v", err)
	}
	if err := pgError(&pgconn.PgError{Code: "23503"}, "операция"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign_key_violation: %v", err)
	}

	other := errors.New("connection reset")
	err := pgError(other, "ошибка создания профиля")
	if !errors.Is(err, other) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		t.Errorf("прочие ошибки оборачиваются без перевода: %v", err)
	}
}
