package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubChecker — ReadinessChecker с фиксированным ответом.
type stubChecker struct {
	status, message string
}

func (s stubChecker) CheckReady() (string, string) { return s.status, s.message }

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	var resp healthLiveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Service != serviceName {
		t.Errorf("ответ = %+v", resp)
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		pg, kc     ReadinessChecker
		wantCode   int
		wantStatus string
	}{
		{"режим memory", nil, nil, http.StatusOK, "ok"},
		{"все ok", stubChecker{"ok", ""}, stubChecker{"ok", ""}, http.StatusOK, "ok"},
		{"keycloak degraded", stubChecker{"ok", ""}, stubChecker{"degraded", "нет ключей"}, http.StatusOK, "degraded"},
		{"postgres fail", stubChecker{"fail", "connection refused"}, nil, http.StatusServiceUnavailable, "fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.pg, tt.kc)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("статус = %d, ожидался %d", rec.Code, tt.wantCode)
			}
			var resp healthReadyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, ожидался %q", resp.Status, tt.wantStatus)
			}
			if tt.pg == nil && resp.Checks["postgresql"].Status != "disabled" {
				t.Errorf("postgresql = %q, ожидался disabled", resp.Checks["postgresql"].Status)
			}
			if _, ok := resp.Checks["keycloak"]; !ok {
				t.Error("в ответе нет проверки keycloak")
			}
		})
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"ok", "disabled"}, "ok"},
		{[]string{"degraded", "ok"}, "degraded"},
		{[]string{"degraded", "fail"}, "fail"},
	}
	for _, tt := range tests {
		if got := overallStatus(tt.in...); got != tt.want {
			t.Errorf("overallStatus(%v) = %q, ожидался %q", tt.in, got, tt.want)
		}
	}
}
