// mill.go — обработчики представлений цеха: сводка, производство,
// склад, контроль качества.
package handlers

import (
	"net/http"

	"github.com/arjun8815/spinwise-erp/internal/api/generated"
	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/service"
)

// GetDashboard — GET /api/v1/dashboard.
// Доступ: все роли.
func (h *APIHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, rolesAll) {
		return
	}

	d, err := h.svc.Dashboard.Load(r.Context())
	if err != nil {
		h.writeServiceError(w, "Ошибка загрузки сводки", err)
		return
	}

	resp := generated.DashboardResponse{
		Stats:  make([]generated.DashboardStat, len(d.Stats)),
		Orders: make([]generated.Order, len(d.Orders)),
		Stock:  mapTotals(d.Stock),
	}
	for i, s := range d.Stats {
		resp.Stats[i] = generated.DashboardStat{
			Key:      s.Key,
			Value:    s.Value,
			Trend:    optional(s.Trend),
			Positive: s.Positive,
		}
	}
	for i, o := range d.Orders {
		resp.Orders[i] = generated.Order{
			Id:        o.ID,
			Customer:  o.Customer,
			Product:   o.Product,
			Quantity:  o.Quantity,
			Status:    o.Status,
			OrderedAt: date(o.OrderedAt),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Производство ---

// ListMachines — GET /api/v1/machines.
// Доступ: все роли.
func (h *APIHandler) ListMachines(w http.ResponseWriter, r *http.Request, params generated.ListMachinesParams) {
	if !h.authorize(w, r, rolesAll) {
		return
	}

	filter := model.MachineFilter{Area: deref(params.Area)}
	if params.Status != nil {
		filter.Status = model.MachineStatus(*params.Status)
	}

	machines, err := h.svc.Production.ListMachines(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, "Ошибка получения оборудования", err)
		return
	}

	items := make([]generated.Machine, len(machines))
	for i, m := range machines {
		items[i] = mapMachine(m)
	}
	writeJSON(w, http.StatusOK, generated.MachineListResponse{Items: items, Total: len(items)})
}

// CreateMachine — POST /api/v1/machines.
// Доступ: все роли.
func (h *APIHandler) CreateMachine(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, rolesAll) {
		return
	}

	var req generated.CreateMachineRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.svc.Production.CreateMachine(r.Context(), service.CreateMachineInput{
		Name:             req.Name,
		Type:             req.Type,
		Area:             req.Area,
		Model:            deref(req.Model),
		Manufacturer:     deref(req.Manufacturer),
		Description:      deref(req.Description),
		InstallationDate: deref(req.InstallationDate),
		OutputMetric:     req.OutputMetric,
		OutputUnit:       req.OutputUnit,
	})
	if err != nil {
		h.writeServiceError(w, "Ошибка добавления оборудования", err)
		return
	}

	writeJSON(w, http.StatusCreated, mapMachine(m))
}

// GetProductionMetrics — GET /api/v1/production/metrics.
// Доступ: все роли.
func (h *APIHandler) GetProductionMetrics(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, rolesAll) {
		return
	}

	overview, err := h.svc.Production.Overview(r.Context(), model.MachineFilter{})
	if err != nil {
		h.writeServiceError(w, "Ошибка получения показателей производства", err)
		return
	}

	flow := make([]generated.ProcessStage, len(overview.Flow))
	for i, st := range overview.Flow {
		flow[i] = generated.ProcessStage{
			Number:   st.Number,
			Key:      st.Key,
			Machines: st.Machines,
			Status:   generated.ProcessStageStatus(st.Status),
			Current:  st.Current,
			Target:   st.Target,
		}
	}

	writeJSON(w, http.StatusOK, generated.ProductionMetricsResponse{
		Series:       mapSeries(overview.Series),
		StatusCounts: overview.StatusCounts,
		Flow:         flow,
	})
}

// --- Склад ---

// ListInventory — GET /api/v1/inventory.
// Доступ: admin, manager.
func (h *APIHandler) ListInventory(w http.ResponseWriter, r *http.Request, params generated.ListInventoryParams) {
	if !h.authorize(w, r, rolesInventory) {
		return
	}

	category := ""
	if params.Category != nil {
		category = string(*params.Category)
	}

	items, err := h.svc.Inventory.List(r.Context(), category)
	if err != nil {
		h.writeServiceError(w, "Ошибка получения позиций склада", err)
		return
	}

	resp := generated.InventoryListResponse{Items: make([]generated.InventoryItem, len(items)), Total: len(items)}
	for i, it := range items {
		resp.Items[i] = mapInventoryItem(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateInventoryItem — POST /api/v1/inventory.
// Доступ: admin, manager.
func (h *APIHandler) CreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, rolesInventory) {
		return
	}

	var req generated.CreateInventoryItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, err := h.svc.Inventory.Create(r.Context(), service.CreateItemInput{
		Category:    string(req.Category),
		Name:        req.Name,
		BatchNumber: deref(req.BatchNumber),
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Location:    deref(req.Location),
		Stage:       deref(req.Stage),
		Machine:     deref(req.Machine),
		Count:       deref(req.Count),
		PackageType: deref(req.PackageType),
	})
	if err != nil {
		h.writeServiceError(w, "Ошибка добавления позиции склада", err)
		return
	}

	writeJSON(w, http.StatusCreated, mapInventoryItem(it))
}

// GetInventoryAnalytics — GET /api/v1/inventory/analytics.
// Доступ: admin, manager.
func (h *APIHandler) GetInventoryAnalytics(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, rolesInventory) {
		return
	}

	totals, err := h.svc.Inventory.Analytics(r.Context())
	if err != nil {
		h.writeServiceError(w, "Ошибка получения итогов склада", err)
		return
	}

	writeJSON(w, http.StatusOK, generated.InventoryAnalyticsResponse{Totals: mapTotals(totals)})
}

// --- Качество ---

// ListQualityTests — GET /api/v1/quality/tests.
// Доступ: все роли.
func (h *APIHandler) ListQualityTests(w http.ResponseWriter, r *http.Request, params generated.ListQualityTestsParams) {
	if !h.authorize(w, r, rolesAll) {
		return
	}

	tests, err := h.svc.Quality.List(r.Context(), deref(params.Search))
	if err != nil {
		h.writeServiceError(w, "Ошибка получения тестов качества", err)
		return
	}

	writeJSON(w, http.StatusOK, generated.QualityTestListResponse{Items: mapQualityTests(tests), Total: len(tests)})
}

// CreateQualityTest — POST /api/v1/quality/tests.
// Доступ: все роли.
func (h *APIHandler) CreateQualityTest(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, rolesAll) {
		return
	}

	var req generated.CreateQualityTestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.svc.Quality.Create(r.Context(), service.CreateTestInput{
		Batch:           req.Batch,
		Machine:         req.Machine,
		Twist:           req.Twist,
		Evenness:        req.Evenness,
		TensileStrength: req.TensileStrength,
		Elongation:      req.Elongation,
		Hairiness:       req.Hairiness,
	})
	if err != nil {
		h.writeServiceError(w, "Ошибка добавления теста качества", err)
		return
	}

	writeJSON(w, http.StatusCreated, mapQualityTest(t))
}

// GetQualityMetrics — GET /api/v1/quality/metrics.
// Доступ: все роли.
func (h *APIHandler) GetQualityMetrics(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, rolesAll) {
		return
	}

	overview, err := h.svc.Quality.Overview(r.Context(), "")
	if err != nil {
		h.writeServiceError(w, "Ошибка получения показателей качества", err)
		return
	}

	params := make([]generated.QualityParameter, len(overview.Parameters))
	for i, p := range overview.Parameters {
		params[i] = generated.QualityParameter{
			Name:   p.Name,
			Value:  p.Value,
			Status: generated.QualityParameterStatus(p.Status),
		}
	}

	recs := make([]generated.Recommendation, len(overview.Recommendations))
	for i, rec := range overview.Recommendations {
		recs[i] = generated.Recommendation{
			Id:      rec.ID,
			Key:     rec.Key,
			Impact:  generated.RecommendationImpact(rec.Impact),
			Machine: rec.Machine,
		}
	}

	writeJSON(w, http.StatusOK, generated.QualityMetricsResponse{
		Parameters:      params,
		Overall:         overview.Overall,
		Alerts:          mapQualityTests(overview.Alerts),
		Series:          mapSeries(overview.Series),
		Recommendations: recs,
	})
}
