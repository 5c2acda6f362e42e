package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arjun8815/spinwise-erp/internal/api/generated"
)

func newTestValidator(t *testing.T) http.Handler {
	t.Helper()
	doc, err := generated.GetSwagger()
	if err != nil {
		t.Fatalf("GetSwagger: %v", err)
	}
	v, err := NewRequestValidator(doc, "/api/", testLogger())
	if err != nil {
		t.Fatalf("NewRequestValidator: %v", err)
	}
	return v.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// тело должно остаться доступным обработчику
		var body map[string]any
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusTeapot)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestRequestValidator(t *testing.T) {
	handler := newTestValidator(t)

	validMachine := `{"name":"Ring Frame 9","type":"ring","area":"Spinning","outputMetric":"Spindle speed","outputUnit":"rpm"}`

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"валидное оборудование", http.MethodPost, "/api/v1/machines", validMachine, http.StatusNoContent},
		{"короткое имя", http.MethodPost, "/api/v1/machines", `{"name":"R","type":"ring","area":"Spinning","outputMetric":"x","outputUnit":"y"}`, http.StatusBadRequest},
		{"нет outputUnit", http.MethodPost, "/api/v1/machines", `{"name":"Ring","type":"ring","area":"Spinning","outputMetric":"x"}`, http.StatusBadRequest},
		{"неизвестный статус", http.MethodGet, "/api/v1/machines?status=broken", "", http.StatusBadRequest},
		{"известный статус", http.MethodGet, "/api/v1/machines?status=idle", "", http.StatusNoContent},
		{"нулевое количество", http.MethodPost, "/api/v1/inventory", `{"category":"raw_material","name":"Cotton","quantity":0,"unit":"kg"}`, http.StatusBadRequest},
		{"параметр больше 100", http.MethodPost, "/api/v1/quality/tests", `{"batch":"B1","machine":"M1","twist":101,"evenness":90,"tensileStrength":90,"elongation":90,"hairiness":90}`, http.StatusBadRequest},
		{"неизвестная роль", http.MethodGet, "/api/v1/users?role=owner", "", http.StatusBadRequest},
		{"вне контракта", http.MethodGet, "/api/v1/unknown", "", http.StatusNoContent},
		{"вне префикса", http.MethodPost, "/auth/sign-in", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("статус = %d, ожидался %d, тело: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusBadRequest && !strings.Contains(rec.Body.String(), "VALIDATION_ERROR") {
				t.Errorf("тело = %s, ожидался VALIDATION_ERROR", rec.Body.String())
			}
		})
	}
}
