// health.go — служебные endpoints: /health/live, /health/ready и /metrics.
// Зависимости проверяются параллельно; отключённая зависимость
// (режим memory) на итог не влияет.
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/arjun8815/spinwise-erp/internal/config"
)

const serviceName = "spinwise"

// Статусы проверки зависимости.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusFail     = "fail"
	statusDisabled = "disabled"
)

// ReadinessChecker — проверка готовности одной зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус (ok, degraded, fail) и пояснение.
	CheckReady() (status string, message string)
}

type dependency struct {
	name    string
	checker ReadinessChecker
}

// HealthHandler — обработчик служебных endpoints.
type HealthHandler struct {
	deps        []dependency
	promHandler http.Handler
}

// NewHealthHandler создаёт HealthHandler. nil вместо проверки
// означает, что зависимость в текущей конфигурации не используется.
func NewHealthHandler(pgChecker, kcChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		deps: []dependency{
			{name: "postgresql", checker: pgChecker},
			{name: "keycloak", checker: kcChecker},
		},
		promHandler: promhttp.Handler(),
	}
}

type healthCheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type healthReadyResponse struct {
	healthLiveResponse
	Checks map[string]healthCheckResult `json:"checks"`
}

// HealthLive — процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, liveResponse(statusOK))
}

// HealthReady — 200 при ok/degraded, 503 если хотя бы одна зависимость fail.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	results := make([]healthCheckResult, len(h.deps))

	var g errgroup.Group
	for i, d := range h.deps {
		g.Go(func() error {
			results[i] = check(d.checker)
			return nil
		})
	}
	_ = g.Wait()

	resp := healthReadyResponse{Checks: make(map[string]healthCheckResult, len(h.deps))}
	statuses := make([]string, len(results))
	for i, d := range h.deps {
		resp.Checks[d.name] = results[i]
		statuses[i] = results[i].Status
	}
	resp.healthLiveResponse = liveResponse(overallStatus(statuses...))

	code := http.StatusOK
	if resp.Status == statusFail {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// GetMetrics — метрики Prometheus.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

func liveResponse(status string) healthLiveResponse {
	return healthLiveResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}
}

func check(c ReadinessChecker) healthCheckResult {
	if c == nil {
		return healthCheckResult{Status: statusDisabled, Message: "не используется"}
	}
	start := time.Now()
	status, msg := c.CheckReady()
	return healthCheckResult{Status: status, Message: msg, LatencyMS: time.Since(start).Milliseconds()}
}

// overallStatus: fail важнее degraded, degraded важнее ok.
func overallStatus(statuses ...string) string {
	result := statusOK
	for _, s := range statuses {
		switch s {
		case statusFail:
			return statusFail
		case statusDegraded:
			result = statusDegraded
		}
	}
	return result
}
