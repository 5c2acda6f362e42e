// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// SpinWise мониторит зависимости текущей конфигурации:
//   - PostgreSQL (SW_STORAGE=postgres) — SQL checker через существующий pgxpool
//     (connection pool mode, critical)
//   - Keycloak (SW_IDENTITY_PROVIDER=keycloak) — HTTP checker к JWKS endpoint (critical)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
//   - app_dependency_status — категория статуса
//   - app_dependency_status_detail — детальный статус
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для Keycloak
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"     // PostgreSQL checker (pool mode)
	"github.com/prometheus/client_golang/prometheus"
)

// maxDepNameLen — максимальная длина имени зависимости (метка Prometheus).
const maxDepNameLen = 63

// ErrNoDependencies — в конфигурации нет внешних зависимостей.
var ErrNoDependencies = errors.New("нет зависимостей для мониторинга")

// DephealthConfig — параметры мониторинга зависимостей.
type DephealthConfig struct {
	// ServiceID — имя вершины графа текущего приложения
	ServiceID string
	// Group — имя группы в метриках (SW_DEPHEALTH_GROUP)
	Group string
	// CheckInterval — интервал проверки (SW_DEPHEALTH_CHECK_INTERVAL)
	CheckInterval time.Duration

	// DB — *sql.DB из pgxpool через stdlib.OpenDBFromPool (nil — без PostgreSQL)
	DB *sql.DB
	// PGURL — URL PostgreSQL для меток (не для подключения)
	PGURL string

	// KeycloakJWKSURL — URL JWKS endpoint realm (пустой — без Keycloak)
	KeycloakJWKSURL string
	// KeycloakRealm — имя realm (входит в имя зависимости)
	KeycloakRealm string
}

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	deps   []string
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(cfg, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(cfg DephealthConfig, logger *slog.Logger, registerer prometheus.Registerer) (*DephealthService, error) {
	return newDephealthService(cfg, logger, dephealth.WithRegisterer(registerer))
}

func newDephealthService(cfg DephealthConfig, logger *slog.Logger, extraOpts ...dephealth.Option) (*DephealthService, error) {
	opts := []dephealth.Option{dephealth.WithLogger(logger)}
	var deps []string

	if cfg.DB != nil {
		// Connection pool mode: проверка через *sql.DB поверх pgxpool
		// обнаруживает и исчерпание пула соединений.
		opts = append(opts, dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.DB)),
			dephealth.FromURL(cfg.PGURL),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		))
		deps = append(deps, "postgresql")
	}

	if cfg.KeycloakJWKSURL != "" {
		path, err := healthPath(cfg.KeycloakJWKSURL)
		if err != nil {
			return nil, fmt.Errorf("JWKS URL: %w", err)
		}
		// /health у Keycloak доступен только на management-порту:
		// проверяется сам JWKS endpoint realm.
		name := DependencyName("keycloak", cfg.KeycloakRealm)
		opts = append(opts, dephealth.HTTP(name,
			dephealth.FromURL(cfg.KeycloakJWKSURL),
			dephealth.WithHTTPHealthPath(path),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		))
		deps = append(deps, name)
	}

	if len(deps) == 0 {
		return nil, ErrNoDependencies
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		deps:   deps,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен",
		slog.String("dependencies", strings.Join(ds.deps, ", ")),
	)
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

var nonDepNameChars = regexp.MustCompile(`[^a-z0-9]+`)

// DependencyName строит имя зависимости для меток: нижний регистр,
// [a-z0-9-], не длиннее 63 символов, начинается с prefix.
func DependencyName(prefix, raw string) string {
	name := strings.Trim(nonDepNameChars.ReplaceAllString(strings.ToLower(raw), "-"), "-")
	if name == "" {
		return prefix
	}
	name = prefix + "-" + name
	if len(name) > maxDepNameLen {
		name = strings.TrimRight(name[:maxDepNameLen], "-")
	}
	return name
}

// healthPath возвращает path URL для HTTP checker.
func healthPath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("ожидается абсолютный URL: %q", raw)
	}
	if u.Path == "" {
		return "/", nil
	}
	return u.Path, nil
}
