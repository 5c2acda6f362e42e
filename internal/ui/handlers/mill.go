// mill.go — страницы производства, склада и качества.
// Формы отправляются POST-запросом; после сохранения выполняется
// redirect на страницу раздела с flash-уведомлением.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/service"
	"github.com/arjun8815/spinwise-erp/internal/ui/pages"
)

// MillHandler — обработчики разделов производства, склада и качества.
type MillHandler struct {
	*Layout
	production *service.ProductionService
	inventory  *service.InventoryService
	quality    *service.QualityService
	logger     *slog.Logger
}

// NewMillHandler создаёт MillHandler.
func NewMillHandler(
	layout *Layout,
	production *service.ProductionService,
	inventory *service.InventoryService,
	quality *service.QualityService,
	logger *slog.Logger,
) *MillHandler {
	return &MillHandler{
		Layout:     layout,
		production: production,
		inventory:  inventory,
		quality:    quality,
		logger:     logger.With(slog.String("component", "ui.mill")),
	}
}

var machineStatuses = []model.MachineStatus{
	model.MachineRunning, model.MachineIdle, model.MachineWarning, model.MachineError,
}

var inventoryCategories = []model.InventoryCategory{
	model.CategoryRawMaterial, model.CategoryWorkInProgress, model.CategoryFinishedGood,
}

// --- Производство ---

// HandleProduction — GET /production?area=&status=
func (h *MillHandler) HandleProduction(w http.ResponseWriter, r *http.Request) {
	filter := model.MachineFilter{
		Area:   r.URL.Query().Get("area"),
		Status: model.MachineStatus(r.URL.Query().Get("status")),
	}
	data := pages.ProductionData{
		Base:     h.base(w, r, "production", &ViewProduction),
		Area:     filter.Area,
		Status:   string(filter.Status),
		Statuses: machineStatuses,
	}

	all, err := h.production.ListMachines(r.Context(), model.MachineFilter{})
	if err != nil {
		h.loadFailed(w, r, "production", err)
		return
	}
	data.Areas = distinctAreas(all)

	overview, err := h.production.Overview(r.Context(), filter)
	if err != nil {
		if !errors.Is(err, service.ErrValidation) {
			h.loadFailed(w, r, "production", err)
			return
		}
		// неизвестное состояние в query: фильтр сбрасывается
		data.Status = ""
		overview, err = h.production.Overview(r.Context(), model.MachineFilter{Area: filter.Area})
		if err != nil {
			h.loadFailed(w, r, "production", err)
			return
		}
	}
	data.Machines = overview.Machines
	data.StatusCounts = overview.StatusCounts
	data.Series = overview.Series
	data.Flow = overview.Flow

	h.render(w, r, http.StatusOK, pages.Production(data))
}

// HandleCreateMachine — POST /production/machines
func (h *MillHandler) HandleCreateMachine(w http.ResponseWriter, r *http.Request) {
	_, err := h.production.CreateMachine(r.Context(), service.CreateMachineInput{
		Name:             r.FormValue("name"),
		Type:             strings.TrimSpace(r.FormValue("type")),
		Area:             strings.TrimSpace(r.FormValue("area")),
		Model:            strings.TrimSpace(r.FormValue("model")),
		Manufacturer:     strings.TrimSpace(r.FormValue("manufacturer")),
		Description:      strings.TrimSpace(r.FormValue("description")),
		InstallationDate: strings.TrimSpace(r.FormValue("installationDate")),
		OutputMetric:     strings.TrimSpace(r.FormValue("outputMetric")),
		OutputUnit:       strings.TrimSpace(r.FormValue("outputUnit")),
	})
	h.afterSubmit(w, r, "/production", err)
}

// --- Склад ---

// HandleInventory — GET /inventory?category=
func (h *MillHandler) HandleInventory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if !model.IsValidCategory(category) {
		category = string(model.CategoryRawMaterial)
	}
	data := pages.InventoryData{
		Base:       h.base(w, r, "inventory", &ViewInventory),
		Category:   category,
		Categories: inventoryCategories,
	}

	var err error
	if data.Items, err = h.inventory.List(r.Context(), category); err != nil {
		h.loadFailed(w, r, "inventory", err)
		return
	}
	if data.Totals, err = h.inventory.Analytics(r.Context()); err != nil {
		h.loadFailed(w, r, "inventory", err)
		return
	}

	h.render(w, r, http.StatusOK, pages.Inventory(data))
}

// HandleCreateItem — POST /inventory/items
func (h *MillHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	category := r.FormValue("category")
	back := "/inventory?category=" + url.QueryEscape(category)

	qty, err := parseNumber(r.FormValue("quantity"))
	if err != nil {
		h.afterSubmit(w, r, back, err)
		return
	}
	_, err = h.inventory.Create(r.Context(), service.CreateItemInput{
		Category:    category,
		Name:        r.FormValue("name"),
		BatchNumber: strings.TrimSpace(r.FormValue("batchNumber")),
		Quantity:    qty,
		Unit:        strings.TrimSpace(r.FormValue("unit")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Stage:       strings.TrimSpace(r.FormValue("stage")),
		Machine:     strings.TrimSpace(r.FormValue("machine")),
		Count:       strings.TrimSpace(r.FormValue("count")),
		PackageType: strings.TrimSpace(r.FormValue("packageType")),
	})
	h.afterSubmit(w, r, back, err)
}

// --- Качество ---

// HandleQuality — GET /quality?search=
func (h *MillHandler) HandleQuality(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	data := pages.QualityData{
		Base:   h.base(w, r, "quality", &ViewQuality),
		Search: search,
	}

	overview, err := h.quality.Overview(r.Context(), search)
	if err != nil {
		h.loadFailed(w, r, "quality", err)
		return
	}
	data.Tests = overview.Tests
	data.Parameters = overview.Parameters
	data.Overall = overview.Overall
	data.Alerts = overview.Alerts
	data.Series = overview.Series
	data.Recommendations = overview.Recommendations

	h.render(w, r, http.StatusOK, pages.Quality(data))
}

// HandleCreateTest — POST /quality/tests
func (h *MillHandler) HandleCreateTest(w http.ResponseWriter, r *http.Request) {
	var params [5]float64
	for i, name := range []string{"twist", "evenness", "tensileStrength", "elongation", "hairiness"} {
		v, err := parseNumber(r.FormValue(name))
		if err != nil {
			h.afterSubmit(w, r, "/quality", err)
			return
		}
		params[i] = v
	}

	_, err := h.quality.Create(r.Context(), service.CreateTestInput{
		Batch:           r.FormValue("batch"),
		Machine:         strings.TrimSpace(r.FormValue("machine")),
		Twist:           params[0],
		Evenness:        params[1],
		TensileStrength: params[2],
		Elongation:      params[3],
		Hairiness:       params[4],
	})
	h.afterSubmit(w, r, "/quality", err)
}

// --- общее ---

// afterSubmit перенаправляет на back с уведомлением о результате.
func (h *MillHandler) afterSubmit(w http.ResponseWriter, r *http.Request, back string, err error) {
	if err != nil {
		h.logger.Info("Форма не сохранена",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		setFlash(w, "formFailed")
	} else {
		setFlash(w, "saved")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// loadFailed показывает страницу раздела без данных.
func (h *MillHandler) loadFailed(w http.ResponseWriter, r *http.Request, title string, err error) {
	h.logger.Error("Ошибка загрузки данных раздела",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	data := pages.MessageData{Base: h.base(w, r, title, nil), Message: "noData"}
	h.render(w, r, http.StatusInternalServerError, pages.Message(data))
}

func distinctAreas(machines []*model.Machine) []string {
	seen := make(map[string]struct{})
	var areas []string
	for _, m := range machines {
		if _, ok := seen[m.Area]; ok {
			continue
		}
		seen[m.Area] = struct{}{}
		areas = append(areas, m.Area)
	}
	sort.Strings(areas)
	return areas
}

// parseNumber разбирает число из формы (допускается запятая).
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Join(service.ErrValidation, err)
	}
	return v, nil
}
