// guard.go — допуск к страницам UI по состоянию сессии и роли.
package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arjun8815/spinwise-erp/internal/domain/guard"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
)

// Ключи i18n причин отказа.
const (
	ReasonAccessDenied       = "accessDenied"
	ReasonProfileUnavailable = "profileUnavailable"
)

// StatusPages — служебные страницы, которые guard показывает вместо
// запрошенной.
type StatusPages interface {
	// Waiting — страница ожидания загрузки сессии (повторный запрос по meta refresh).
	Waiting(w http.ResponseWriter, r *http.Request)
	// Forbidden — страница 403 с причиной (ключ i18n).
	Forbidden(w http.ResponseWriter, r *http.Request, reasonKey string)
}

// Guard — middleware допуска к страницам.
type Guard struct {
	guard    *guard.Guard
	pages    StatusPages
	outcomes *prometheus.CounterVec
	logger   *slog.Logger
}

// NewGuard создаёт middleware допуска.
// reg — Prometheus registerer для счётчика решений (nil — без регистрации).
func NewGuard(g *guard.Guard, pages StatusPages, reg prometheus.Registerer, logger *slog.Logger) *Guard {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sw_guard_decisions_total",
		Help: "Решения guard по страницам UI",
	}, []string{"outcome"})
	if reg != nil {
		reg.MustRegister(outcomes)
	}
	return &Guard{
		guard:    g,
		pages:    pages,
		outcomes: outcomes,
		logger:   logger.With(slog.String("component", "ui_guard")),
	}
}

// Require возвращает middleware, пропускающий запрос при OutcomeRender.
func (g *Guard) Require(allowed rbac.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := StateFromContext(r.Context())
			outcome := g.guard.Decide(guard.Input{
				Loading:        state.Loading,
				SessionPresent: state.SessionPresent(),
				ProfileRole:    state.Role(),
				Allowed:        allowed,
			})
			g.outcomes.WithLabelValues(outcome.String()).Inc()

			switch outcome {
			case guard.OutcomeRender:
				next.ServeHTTP(w, r)

			case guard.OutcomeWait:
				w.Header().Set("Cache-Control", "no-store")
				g.pages.Waiting(w, r)

			case guard.OutcomeSignIn:
				target := "/auth"
				if from, ok := SafeLocalPath(r.URL.RequestURI()); ok && from != "/" {
					target += "?from=" + url.QueryEscape(from)
				}
				http.Redirect(w, r, target, http.StatusFound)

			case guard.OutcomeHome:
				if r.URL.Path == "/" {
					// Главная недоступна роли: redirect зациклился бы
					g.logger.Warn("Роль не допущена к главной странице",
						slog.String("user_id", state.Profile.ID),
						slog.String("role", string(state.Profile.Role)),
					)
					g.pages.Forbidden(w, r, ReasonAccessDenied)
					return
				}
				g.logger.Debug("Недостаточно прав, redirect на главную",
					slog.String("path", r.URL.Path),
					slog.String("required", allowed.String()),
				)
				http.Redirect(w, r, "/", http.StatusFound)

			case guard.OutcomeProfileUnavailable:
				g.pages.Forbidden(w, r, ReasonProfileUnavailable)

			default:
				g.logger.Error("Неизвестное решение guard", slog.String("outcome", outcome.String()))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		})
	}
}
