// events.go — SSE (Server-Sent Events) для обновления dashboard:
// карточки показателей и статусы зависимостей (PostgreSQL, Keycloak).
// Каждый SSE-клиент обслуживается отдельной горутиной.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/service"
	uimiddleware "github.com/arjun8815/spinwise-erp/internal/ui/middleware"
)

// HealthSource — состояние зависимостей (topologymetrics).
type HealthSource interface {
	Health() map[string]bool
}

// EventsHandler — обработчик SSE endpoint dashboard.
type EventsHandler struct {
	dashboard *service.DashboardService
	// health — nil, если внешних зависимостей нет (режим memory)
	health   HealthSource
	interval time.Duration
	logger   *slog.Logger
}

// NewEventsHandler создаёт EventsHandler.
// interval — интервал отправки обновлений (SW_SSE_INTERVAL).
func NewEventsHandler(dashboard *service.DashboardService, health HealthSource, interval time.Duration, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		dashboard: dashboard,
		health:    health,
		interval:  interval,
		logger:    logger.With(slog.String("component", "ui.events")),
	}
}

// statsEvent — SSE-событие карточек dashboard.
type statsEvent struct {
	Stats []statItem `json:"stats"`
}

type statItem struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Trend    string `json:"trend,omitempty"`
	Positive bool   `json:"positive"`
}

// depStatusEvent — SSE-событие статусов зависимостей.
type depStatusEvent struct {
	Dependencies []depStatusItem `json:"dependencies"`
}

type depStatusItem struct {
	Name   string `json:"name"`
	Status string `json:"status"` // online, offline, unavailable
}

// HandleDashboard обрабатывает GET /events/dashboard.
// Формат: event: stats\ndata: {json}\n\n, event: dep-status\ndata: {json}\n\n.
// Соединение закрывается при отмене контекста запроса и при завершении
// сессии (выход в другом окне, событие поставщика): клиент получает
// event: session-ended.
func (h *EventsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	store := uimiddleware.StoreFromContext(r.Context())
	if store == nil || !store.Snapshot().SessionPresent() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	state := store.Snapshot()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// ResponseController находит http.Flusher через Unwrap()
	// обёрток middleware.
	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		http.Error(w, "SSE не поддерживается", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	userID := state.Identity.UserID
	h.logger.Debug("SSE клиент подключён",
		slog.String("user_id", userID),
		slog.String("remote_addr", r.RemoteAddr),
	)

	h.send(ctx, w, rc)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE клиент отключён", slog.String("user_id", userID))
			return
		case <-ticker.C:
			if !store.Snapshot().SessionPresent() {
				h.logger.Debug("SSE поток закрыт: сессия завершена", slog.String("user_id", userID))
				h.writeEvent(w, rc, "session-ended", struct{}{})
				return
			}
			store.Touch()
			h.send(ctx, w, rc)
		}
	}
}

func (h *EventsHandler) send(ctx context.Context, w http.ResponseWriter, rc *http.ResponseController) {
	if d, err := h.dashboard.Load(ctx); err != nil {
		h.logger.Warn("Ошибка загрузки сводки для SSE", slog.String("error", err.Error()))
	} else {
		h.writeEvent(w, rc, "stats", statsEvent{Stats: mapStats(d.Stats)})
	}
	h.writeEvent(w, rc, "dep-status", h.depStatus())
}

func (h *EventsHandler) writeEvent(w http.ResponseWriter, rc *http.ResponseController, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Ошибка сериализации SSE-события",
			slog.String("event", name),
			slog.String("error", err.Error()),
		)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	_ = rc.Flush()
}

func (h *EventsHandler) depStatus() depStatusEvent {
	if h.health == nil {
		return depStatusEvent{Dependencies: []depStatusItem{
			{Name: "PostgreSQL", Status: "unavailable"},
			{Name: "Keycloak", Status: "unavailable"},
		}}
	}
	health := h.health.Health()
	return depStatusEvent{Dependencies: []depStatusItem{
		{Name: "PostgreSQL", Status: depHealthStatus(findHealthByPrefix(health, "postgresql"))},
		{Name: "Keycloak", Status: depHealthStatus(findHealthByPrefix(health, "keycloak"))},
	}}
}

func mapStats(stats []model.DashboardStat) []statItem {
	items := make([]statItem, 0, len(stats))
	for _, s := range stats {
		items = append(items, statItem{Key: s.Key, Value: s.Value, Trend: s.Trend, Positive: s.Positive})
	}
	return items
}

// findHealthByPrefix ищет статус зависимости по префиксу имени.
// Ключи Health() имеют вид "dependency:host:port", имя Keycloak
// дополнено realm ("keycloak-spinwise"). Нет ключей — nil
// (зависимость не отслеживается); несколько — true, только если все healthy.
func findHealthByPrefix(health map[string]bool, prefix string) *bool {
	var found *bool
	for key, ok := range health {
		name, _, _ := strings.Cut(key, ":")
		if name != prefix && !strings.HasPrefix(name, prefix+"-") {
			continue
		}
		v := ok
		if found != nil && !*found {
			v = false
		}
		found = &v
	}
	return found
}

func depHealthStatus(v *bool) string {
	switch {
	case v == nil:
		return "unavailable"
	case *v:
		return "online"
	default:
		return "offline"
	}
}
