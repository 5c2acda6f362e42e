// Точка входа SpinWise — панель управления прядильной фабрикой.
// Загружает конфигурацию, выбирает хранилище (memory или PostgreSQL)
// и поставщика учётных записей (memory или Keycloak), создаёт сервисный
// слой, JSON API и серверный UI, запускает фоновые задачи (очистка
// сессий, topologymetrics) и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/arjun8815/spinwise-erp/internal/api/generated"
	"github.com/arjun8815/spinwise-erp/internal/api/handlers"
	"github.com/arjun8815/spinwise-erp/internal/api/middleware"
	"github.com/arjun8815/spinwise-erp/internal/config"
	"github.com/arjun8815/spinwise-erp/internal/database"
	"github.com/arjun8815/spinwise-erp/internal/domain/guard"
	"github.com/arjun8815/spinwise-erp/internal/identity"
	"github.com/arjun8815/spinwise-erp/internal/keycloak"
	"github.com/arjun8815/spinwise-erp/internal/profile"
	"github.com/arjun8815/spinwise-erp/internal/repository"
	"github.com/arjun8815/spinwise-erp/internal/server"
	"github.com/arjun8815/spinwise-erp/internal/service"
	"github.com/arjun8815/spinwise-erp/internal/session"
	uihandlers "github.com/arjun8815/spinwise-erp/internal/ui/handlers"
	"github.com/arjun8815/spinwise-erp/internal/ui/i18n"
	uimiddleware "github.com/arjun8815/spinwise-erp/internal/ui/middleware"
	"github.com/arjun8815/spinwise-erp/internal/ui/pages"
)

// repositories — репозитории выбранного хранилища.
type repositories struct {
	profiles  repository.ProfileRepository
	profileTx repository.ProfileTransactor
	machines  repository.MachineRepository
	inventory repository.InventoryRepository
	quality   repository.QualityRepository
	orders    repository.OrderRepository
}

func main() {
	if err := run(); err != nil {
		slog.Error("SpinWise завершился с ошибкой", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("SpinWise запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("storage", cfg.Storage),
		slog.String("identity_provider", cfg.IdentityProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Хранилище
	var (
		repos repositories
		pool  *pgxpool.Pool
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		if _, err := database.Migrate(cfg, logger); err != nil {
			return err
		}
		if pool, err = database.Connect(ctx, cfg, logger); err != nil {
			return err
		}
		defer pool.Close()

		repos = repositories{
			profiles:  repository.NewProfileRepository(pool),
			profileTx: repository.NewTxRunner(pool),
			machines:  repository.NewMachineRepository(pool),
			inventory: repository.NewInventoryRepository(pool),
			quality:   repository.NewQualityRepository(pool),
			orders:    repository.NewOrderRepository(pool),
		}
	default:
		store := repository.NewMemoryStore(cfg.SeedData)
		repos = repositories{
			profiles:  store.Profiles,
			profileTx: store.Profiles,
			machines:  store.Machines,
			inventory: store.Inventory,
			quality:   store.Quality,
			orders:    store.Orders,
		}
		logger.Warn("Данные хранятся в памяти и теряются при перезапуске",
			slog.Bool("seed_data", cfg.SeedData),
		)
	}

	// 4. Поставщик учётных записей
	var (
		provider identity.Provider
		memory   *identity.Memory
	)
	switch cfg.IdentityProvider {
	case config.IdentityKeycloak:
		httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
		kcClient := keycloak.New(
			cfg.KeycloakURL,
			cfg.KeycloakRealm,
			cfg.KeycloakClientID,
			cfg.KeycloakClientSecret,
			httpClient,
			logger,
		)
		provider, err = identity.NewKeycloak(kcClient, identity.KeycloakConfig{
			Issuer:              cfg.JWTIssuer,
			JWKSURL:             cfg.JWTJWKSURL,
			JWKSRefreshInterval: cfg.JWKSRefreshInterval,
			HTTPClient:          httpClient,
		}, logger)
		if err != nil {
			return err
		}
		logger.Info("Keycloak клиент создан",
			slog.String("url", cfg.KeycloakURL),
			slog.String("realm", cfg.KeycloakRealm),
		)
	default:
		if memory, err = identity.NewMemory(logger); err != nil {
			return err
		}
		provider = memory
		// PostgreSQL засевает профили миграцией 000002
		if cfg.Storage == config.StorageMemory && cfg.SeedData {
			if err := service.SeedProfiles(ctx, repos.profiles, identity.SeedUsers(), logger); err != nil {
				return err
			}
		}
		logger.Warn("Используется встроенный поставщик учётных записей",
			slog.Int("seed_users", len(identity.SeedUsers())),
		)
	}

	// 5. Сервисы
	resolver := profile.NewResolver(repos.profiles, logger)
	svc := handlers.Services{
		Auth:       service.NewAuthService(provider, repos.profiles, logger),
		Dashboard:  service.NewDashboardService(repos.orders, repos.inventory, repos.quality, repos.profiles, logger),
		Production: service.NewProductionService(repos.machines, logger),
		Inventory:  service.NewInventoryService(repos.inventory, logger),
		Quality:    service.NewQualityService(repos.quality, logger),
		Users:      service.NewUserService(provider, repos.profiles, repos.profileTx, logger),
	}

	policy := guard.NullRoleAllow
	if cfg.GuardNullRole == config.NullRoleClosed {
		policy = guard.NullRoleDeny
	}

	// 6. topologymetrics — мониторинг зависимостей (PostgreSQL + Keycloak)
	dhCfg := service.DephealthConfig{
		ServiceID:     "spinwise",
		Group:         cfg.DephealthGroup,
		CheckInterval: cfg.DephealthCheckInterval,
	}
	if pool != nil {
		// Адаптер pgxpool → *sql.DB: проверка идёт через пул соединений
		pgDB := stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()
		dhCfg.DB = pgDB
		dhCfg.PGURL = cfg.DatabaseURL()
	}
	if cfg.IdentityProvider == config.IdentityKeycloak {
		dhCfg.KeycloakJWKSURL = cfg.JWTJWKSURL
		dhCfg.KeycloakRealm = cfg.KeycloakRealm
	}
	var health uihandlers.HealthSource
	dephealthSvc, err := service.NewDephealthService(dhCfg, logger)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
		dephealthSvc = nil
	} else {
		health = dephealthSvc
	}

	// 7. Readiness checkers
	var pgChecker, kcChecker handlers.ReadinessChecker
	if pool != nil {
		pgChecker = database.NewReadinessChecker(pool)
	}
	if cfg.IdentityProvider == config.IdentityKeycloak {
		kcChecker = middleware.NewKeycloakReadinessChecker(cfg.JWTJWKSURL, cfg.HTTPClientTimeout)
	}

	// 8. JSON API
	doc, err := generated.GetSwagger()
	if err != nil {
		return err
	}
	validator, err := middleware.NewRequestValidator(doc, "/api/", logger)
	if err != nil {
		return err
	}
	api := server.APIComponents{
		Handler:   handlers.NewAPIHandler(handlers.NewHealthHandler(pgChecker, kcChecker), svc, policy, logger),
		JWTAuth:   middleware.NewJWTAuth(provider.Keyfunc(), provider.Issuer(), cfg.JWTLeeway, resolver, logger),
		Validator: validator,
	}
	if memory != nil {
		api.JWKS = jwksHandler(memory, logger)
	}

	// 9. UI
	registry := session.NewRegistry(provider, resolver, cfg.SessionIdleTTL, prometheus.DefaultRegisterer, logger)
	defer registry.Shutdown()

	if cfg.SessionSecret == "" {
		logger.Warn("SW_SESSION_SECRET не задан, UI-сессии не сохраняются между рестартами")
	}
	codec, err := session.NewCookieCodec(cfg.SessionSecret, cfg.SecureCookies)
	if err != nil {
		return err
	}

	bundle := i18n.NewBundle(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		return err
	}
	layout := uihandlers.NewLayout(pages.NewRenderer(bundle), logger)

	// codes — nil при Keycloak (код подтверждения не показывается в UI)
	var codes uihandlers.CodeLookup
	if memory != nil {
		codes = memory
	}

	ui := &server.UIComponents{
		Sessions:  uimiddleware.NewSessions(registry, codec, cfg.SessionSettle, logger),
		Guard:     uimiddleware.NewGuard(guard.New(policy), layout, prometheus.DefaultRegisterer, logger),
		Auth:      uihandlers.NewAuthHandler(layout, svc.Auth, registry, codec, codes, logger),
		Language:  uihandlers.NewLanguageHandler(svc.Users, logger),
		Dashboard: uihandlers.NewDashboardHandler(layout, svc.Dashboard, logger),
		Mill:      uihandlers.NewMillHandler(layout, svc.Production, svc.Inventory, svc.Quality, logger),
		Users:     uihandlers.NewUsersHandler(layout, svc.Users, logger),
		Events:    uihandlers.NewEventsHandler(svc.Dashboard, health, cfg.SSEInterval, logger),
	}

	// 10. Фоновые задачи и HTTP-сервер
	srv := server.New(cfg, logger, api, ui)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		registry.RunJanitor(gctx)
		return nil
	})
	if dephealthSvc != nil {
		if err := dephealthSvc.Start(gctx); err != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		} else {
			defer dephealthSvc.Stop()
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("SpinWise остановлен")
	return nil
}

// jwksHandler публикует ключи встроенного поставщика:
// внешние клиенты проверяют ими access token.
func jwksHandler(memory *identity.Memory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := memory.JWKS(r.Context())
		if err != nil {
			logger.Error("Ошибка публикации JWKS", slog.String("error", err.Error()))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	}
}
