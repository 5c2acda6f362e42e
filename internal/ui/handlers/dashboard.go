package handlers

import (
	"log/slog"
	"net/http"

	"github.com/arjun8815/spinwise-erp/internal/service"
	"github.com/arjun8815/spinwise-erp/internal/ui/pages"
)

// DashboardHandler — обработчик главной страницы.
type DashboardHandler struct {
	*Layout
	dashboard *service.DashboardService
	logger    *slog.Logger
}

// NewDashboardHandler создаёт новый DashboardHandler.
func NewDashboardHandler(layout *Layout, dashboard *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		Layout:    layout,
		dashboard: dashboard,
		logger:    logger.With(slog.String("component", "ui.dashboard")),
	}
}

// HandleDashboard обрабатывает GET / — карточки, заказы и состояние склада.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	data := pages.DashboardData{Base: h.base(w, r, "dashboard", &ViewDashboard)}
	data.SSE = true

	d, err := h.dashboard.Load(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки сводки", slog.String("error", err.Error()))
		data.Flash = "noData"
	} else {
		data.Stats, data.Orders, data.Stock = d.Stats, d.Orders, d.Stock
	}

	h.render(w, r, http.StatusOK, pages.Dashboard(data))
}
