// Пакет errors — ответы API SpinWise с ошибкой.
// Тело всегда {"error": {"code": "...", "message": "..."}}; статус
// определяется кодом, ошибки сервисного слоя переводятся через FromService.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/arjun8815/spinwise-erp/internal/service"
)

// Code — машиночитаемый код ошибки из OpenAPI контракта.
type Code string

const (
	CodeValidationError Code = "VALIDATION_ERROR"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeConflict        Code = "CONFLICT"
	CodeIDPUnavailable  Code = "IDP_UNAVAILABLE"
	CodeInternalError   Code = "INTERNAL_ERROR"
)

// Status возвращает HTTP статус кода. Неизвестный код — 500.
func (c Code) Status() int {
	switch c {
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeIDPUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Problem — ошибка, готовая к отправке клиенту.
type Problem struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Server сообщает, что ошибка на стороне сервера или его зависимостей
// и должна попасть в журнал.
func (p Problem) Server() bool {
	return p.Code.Status() >= http.StatusInternalServerError
}

// serviceCodes — соответствие ошибок сервисного слоя кодам API.
// Порядок важен: первая совпавшая ошибка определяет код.
var serviceCodes = []struct {
	err  error
	code Code
}{
	{service.ErrValidation, CodeValidationError},
	{service.ErrInvalidRole, CodeValidationError},
	{service.ErrUnsupported, CodeValidationError},
	{service.ErrNotFound, CodeNotFound},
	{service.ErrConflict, CodeConflict},
	{service.ErrUnauthorized, CodeUnauthorized},
	{service.ErrNotConfirmed, CodeUnauthorized},
	{service.ErrIDPUnavailable, CodeIDPUnavailable},
}

// FromService переводит ошибку сервисного слоя в Problem.
// Текст ошибок 5xx не раскрывается клиенту.
func FromService(err error) Problem {
	for _, m := range serviceCodes {
		if !stderrors.Is(err, m.err) {
			continue
		}
		if m.code == CodeIDPUnavailable {
			return Problem{Code: m.code, Message: "Поставщик учётных записей недоступен"}
		}
		return Problem{Code: m.code, Message: err.Error()}
	}
	return Problem{Code: CodeInternalError, Message: "Внутренняя ошибка сервера"}
}

// Write отправляет Problem со статусом его кода.
func Write(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(p.Code.Status())
	_ = json.NewEncoder(w).Encode(struct {
		Error Problem `json:"error"`
	}{p})
}

// ValidationError — 400.
func ValidationError(w http.ResponseWriter, message string) {
	Write(w, Problem{Code: CodeValidationError, Message: message})
}

// Unauthorized — 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Write(w, Problem{Code: CodeUnauthorized, Message: message})
}

// Forbidden — 403.
func Forbidden(w http.ResponseWriter, message string) {
	Write(w, Problem{Code: CodeForbidden, Message: message})
}
