// Пакет handlers — обработчики JSON API SpinWise.
// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Проверяет допуск по ролям и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/arjun8815/spinwise-erp/internal/api/errors"
	"github.com/arjun8815/spinwise-erp/internal/api/generated"
	"github.com/arjun8815/spinwise-erp/internal/api/middleware"
	"github.com/arjun8815/spinwise-erp/internal/domain/guard"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/service"
)

// Допустимые роли представлений.
var (
	rolesAll       = rbac.AnyRole()
	rolesInventory = rbac.NewRoleSet(rbac.RoleAdmin, rbac.RoleManager)
	rolesUsers     = rbac.NewRoleSet(rbac.RoleAdmin)
)

// Services — сервисы, которыми пользуется API.
type Services struct {
	Auth       *service.AuthService
	Dashboard  *service.DashboardService
	Production *service.ProductionService
	Inventory  *service.InventoryService
	Quality    *service.QualityService
	Users      *service.UserService
}

// APIHandler — основной обработчик JSON API.
type APIHandler struct {
	health *HealthHandler
	svc    Services
	policy guard.NullRolePolicy
	logger *slog.Logger
}

var _ generated.ServerInterface = (*APIHandler)(nil)

// NewAPIHandler создаёт основной обработчик API.
// policy — поведение при отсутствии профиля (как у guard UI).
func NewAPIHandler(health *HealthHandler, svc Services, policy guard.NullRolePolicy, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		health: health,
		svc:    svc,
		policy: policy,
		logger: logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — проверка liveness (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — проверка readiness (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// authorize применяет guard к запросу. При отказе пишет 401/403
// и возвращает false.
func (h *APIHandler) authorize(w http.ResponseWriter, r *http.Request, allowed rbac.RoleSet) bool {
	claims := middleware.ClaimsFromContext(r.Context())
	switch claims.Decide(allowed, h.policy) {
	case guard.OutcomeRender:
		return true
	case guard.OutcomeSignIn:
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
	case guard.OutcomeProfileUnavailable:
		apierrors.Forbidden(w, "Профиль пользователя недоступен")
	default:
		apierrors.Forbidden(w, fmt.Sprintf("Недостаточно прав: требуется роль %s", allowed))
	}
	return false
}

// decodeJSON разбирает тело запроса. При ошибке пишет 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "Невалидный JSON: "+err.Error())
		return false
	}
	return true
}

// writeServiceError переводит ошибку сервисного слоя в ответ API.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	p := apierrors.FromService(err)
	if p.Server() {
		h.logger.Error(op, slog.String("error", err.Error()))
	}
	apierrors.Write(w, p)
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// deref возвращает значение указателя или пустую строку.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional возвращает nil для пустой строки.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
