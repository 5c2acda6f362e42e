// Пакет server — HTTP-сервер SpinWise с graceful shutdown.
// Один chi-роутер обслуживает JSON API (/api/v1, /health, /metrics)
// и серверный UI. Без TLS: TLS termination на ingress.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arjun8815/spinwise-erp/internal/api/errors"
	"github.com/arjun8815/spinwise-erp/internal/api/generated"
	"github.com/arjun8815/spinwise-erp/internal/api/middleware"
	"github.com/arjun8815/spinwise-erp/internal/config"
	uihandlers "github.com/arjun8815/spinwise-erp/internal/ui/handlers"
	"github.com/arjun8815/spinwise-erp/internal/ui/i18n"
	uimiddleware "github.com/arjun8815/spinwise-erp/internal/ui/middleware"
	"github.com/arjun8815/spinwise-erp/internal/ui/static"
)

// Публичные маршруты API (без Bearer-токена).
const (
	pathSignIn   = "/api/v1/auth/sign-in"
	pathRefresh  = "/api/v1/auth/refresh"
	pathSpecYAML = "/api/v1/openapi.yaml"
	pathJWKS     = "/.well-known/jwks.json"
)

// UIComponents — компоненты серверного UI.
type UIComponents struct {
	Sessions  *uimiddleware.Sessions
	Guard     *uimiddleware.Guard
	Auth      *uihandlers.AuthHandler
	Language  *uihandlers.LanguageHandler
	Dashboard *uihandlers.DashboardHandler
	Mill      *uihandlers.MillHandler
	Users     *uihandlers.UsersHandler
	Events    *uihandlers.EventsHandler
}

// APIComponents — компоненты JSON API.
type APIComponents struct {
	Handler generated.ServerInterface
	// JWTAuth — nil отключает проверку токенов (тесты)
	JWTAuth *middleware.JWTAuth
	// Validator — nil отключает проверку запросов по контракту
	Validator *middleware.RequestValidator
	// JWKS — nil, если поставщик не публикует свои ключи
	JWKS http.HandlerFunc
}

// Server — HTTP-сервер SpinWise.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
func New(cfg *config.Config, logger *slog.Logger, api APIComponents, ui *UIComponents) *Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewRouter(logger, api, ui),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// WriteTimeout не задан: SSE-соединения живут долго
		IdleTimeout: 120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает маршруты API и UI.
func NewRouter(logger *slog.Logger, api APIComponents, ui *UIComponents) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Проверка запроса по контракту до проверки токена:
	// некорректный запрос получает 400 независимо от авторизации.
	if api.Validator != nil {
		router.Use(api.Validator.Middleware())
	}
	// JWT только для /api/; health и metrics проверяются Kubernetes напрямую.
	if api.JWTAuth != nil {
		router.Use(api.JWTAuth.WithExclusions("/api/", pathSignIn, pathRefresh, pathSpecYAML))
	}

	router.Get(pathSpecYAML, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(generated.SpecYAML())
	})
	if api.JWKS != nil {
		router.Get(pathJWKS, api.JWKS)
	}

	generated.HandlerWithOptions(api.Handler, generated.ChiServerOptions{
		BaseRouter: router,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			apierrors.ValidationError(w, err.Error())
		},
	})

	if ui != nil {
		mountUI(router, ui)
	}

	return router
}

// mountUI регистрирует страницы UI. Каждое представление закрыто
// guard с набором ролей из uihandlers.Views.
func mountUI(router chi.Router, ui *UIComponents) {
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static.FS())))

	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())
		r.Use(ui.Sessions.Middleware())

		// Публичные страницы
		r.Get("/auth", ui.Auth.HandleAuthPage)
		r.Post("/auth/sign-in", ui.Auth.HandleSignIn)
		r.Post("/auth/sign-up", ui.Auth.HandleSignUp)
		r.Post("/auth/verify", ui.Auth.HandleVerify)
		r.Post("/logout", ui.Auth.HandleLogout)
		r.Post("/language", ui.Language.HandleSetLanguage)

		dashboard := ui.Guard.Require(uihandlers.ViewDashboard.Allowed)
		r.With(dashboard).Get(uihandlers.ViewDashboard.Path, ui.Dashboard.HandleDashboard)
		r.With(dashboard).Get("/events/dashboard", ui.Events.HandleDashboard)

		production := ui.Guard.Require(uihandlers.ViewProduction.Allowed)
		r.With(production).Get(uihandlers.ViewProduction.Path, ui.Mill.HandleProduction)
		r.With(production).Post("/production/machines", ui.Mill.HandleCreateMachine)

		inventory := ui.Guard.Require(uihandlers.ViewInventory.Allowed)
		r.With(inventory).Get(uihandlers.ViewInventory.Path, ui.Mill.HandleInventory)
		r.With(inventory).Post("/inventory/items", ui.Mill.HandleCreateItem)

		quality := ui.Guard.Require(uihandlers.ViewQuality.Allowed)
		r.With(quality).Get(uihandlers.ViewQuality.Path, ui.Mill.HandleQuality)
		r.With(quality).Post("/quality/tests", ui.Mill.HandleCreateTest)

		users := ui.Guard.Require(uihandlers.ViewUsers.Allowed)
		r.With(users).Get(uihandlers.ViewUsers.Path, ui.Users.HandleUsers)
		r.With(users).Post("/users", ui.Users.HandleCreateUser)
		r.With(users).Post("/users/{id}", ui.Users.HandleUpdateUser)
	})
}

// Run запускает сервер и блокируется до отмены ctx.
// При отмене выполняется graceful shutdown с таймаутом SW_SHUTDOWN_TIMEOUT.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Получен сигнал завершения")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
		return nil
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
