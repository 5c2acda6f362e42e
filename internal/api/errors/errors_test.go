package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arjun8815/spinwise-erp/internal/service"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Problem {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body struct {
		Error Problem `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("ошибка декодирования: %v", err)
	}
	return body.Error
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
		code   Code
	}{
		{"валидация", ValidationError, http.StatusBadRequest, CodeValidationError},
		{"не аутентифицирован", Unauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"нет прав", Forbidden, http.StatusForbidden, CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec, "сообщение")

			if rec.Code != tt.status {
				t.Errorf("статус = %d, ожидался %d", rec.Code, tt.status)
			}
			if p := decode(t, rec); p.Code != tt.code || p.Message != "сообщение" {
				t.Errorf("тело = %+v", p)
			}
		})
	}
}

func TestFromService(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		code       Code
		hideDetail bool
	}{
		{"валидация", fmt.Errorf("%w: name", service.ErrValidation), http.StatusBadRequest, CodeValidationError, false},
		{"роль", service.ErrInvalidRole, http.StatusBadRequest, CodeValidationError, false},
		{"не поддерживается", service.ErrUnsupported, http.StatusBadRequest, CodeValidationError, false},
		{"не найдено", service.ErrNotFound, http.StatusNotFound, CodeNotFound, false},
		{"конфликт", service.ErrConflict, http.StatusConflict, CodeConflict, false},
		{"учётные данные", service.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized, false},
		{"не подтверждён", service.ErrNotConfirmed, http.StatusUnauthorized, CodeUnauthorized, false},
		{"IdP недоступен", fmt.Errorf("%w: dial tcp", service.ErrIDPUnavailable), http.StatusBadGateway, CodeIDPUnavailable, true},
		{"неизвестная", fmt.Errorf("pool closed"), http.StatusInternalServerError, CodeInternalError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromService(tt.err)
			if p.Code != tt.code {
				t.Fatalf("код = %s, ожидался %s", p.Code, tt.code)
			}
			if p.Server() != (tt.status >= 500) {
				t.Errorf("Server() = %v", p.Server())
			}
			if tt.hideDetail && p.Message == tt.err.Error() {
				t.Errorf("текст серверной ошибки не должен передаваться клиенту: %q", p.Message)
			}

			rec := httptest.NewRecorder()
			Write(rec, p)
			if rec.Code != tt.status {
				t.Errorf("статус = %d, ожидался %d", rec.Code, tt.status)
			}
			if got := decode(t, rec); got != p {
				t.Errorf("тело = %+v, ожидалось %+v", got, p)
			}
		})
	}
}

func TestCode_UnknownIsInternal(t *testing.T) {
	if got := Code("SOMETHING").Status(); got != http.StatusInternalServerError {
		t.Errorf("статус = %d", got)
	}
}
