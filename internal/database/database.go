// Пакет database — PostgreSQL для режима SW_STORAGE=postgres:
// пул pgxpool с ожиданием готовности БД при старте, миграции
// golang-migrate из встроенных SQL-файлов и проверка готовности.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arjun8815/spinwise-erp/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	applicationName = "spinwise"
	// pingInterval — пауза между попытками подключения при старте
	pingInterval = time.Second
)

// Connect создаёт пул подключений и ждёт, пока PostgreSQL начнёт
// принимать соединения (не дольше cfg.DBStartupWait).
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.DBMaxConns)
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула подключений: %w", err)
	}

	if err := waitReady(ctx, pool, cfg.DBStartupWait, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}

	logger.Info("Подключение к PostgreSQL установлено",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
		slog.Int("max_conns", int(poolCfg.MaxConns)),
	)
	return pool, nil
}

// waitReady повторяет ping до успеха или истечения wait.
func waitReady(ctx context.Context, pool *pgxpool.Pool, wait time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, max(wait, pingInterval))
	defer cancel()

	for attempt := 1; ; attempt++ {
		err := pool.Ping(ctx)
		if err == nil {
			return nil
		}
		logger.Debug("PostgreSQL ещё недоступен",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return err
		case <-time.After(pingInterval):
		}
	}
}

// Migrate применяет встроенные миграции и возвращает версию схемы.
// 000001 — схема, 000002 — демонстрационные данные фабрики и профили
// предустановленных пользователей.
func Migrate(cfg *config.Config, logger *slog.Logger) (uint, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("ошибка создания источника миграций: %w", err)
	}

	// драйвер golang-migrate регистрируется под схемой pgx5
	dbURL := "pgx5" + strings.TrimPrefix(cfg.DatabaseURL(), "postgres")

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return 0, fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("ошибка применения миграций: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения версии схемы: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("схема в состоянии dirty (версия %d), требуется ручное исправление", version)
	}

	logger.Info("Схема БД актуальна", slog.Uint64("version", uint64(version)))
	return version, nil
}

// ReadinessChecker — проверка PostgreSQL для /health/ready.
type ReadinessChecker struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewReadinessChecker создаёт проверку готовности PostgreSQL.
func NewReadinessChecker(pool *pgxpool.Pool) *ReadinessChecker {
	return &ReadinessChecker{pool: pool, timeout: 3 * time.Second}
}

// CheckReady выполняет ping и сообщает занятость пула.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.pool.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	}
	st := c.pool.Stat()
	return "ok", fmt.Sprintf("подключений %d из %d", st.TotalConns(), st.MaxConns())
}
