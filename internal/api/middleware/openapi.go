// openapi.go — валидация запросов JSON API по встроенному OpenAPI-контракту.
// Тело, query- и path-параметры проверяются до вызова обработчика;
// нарушения возвращаются как 400 VALIDATION_ERROR.
package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	apierrors "github.com/arjun8815/spinwise-erp/internal/api/errors"
)

// RequestValidator — middleware проверки запросов по контракту.
type RequestValidator struct {
	router routers.Router
	prefix string
	logger *slog.Logger
}

// NewRequestValidator создаёт middleware для документа doc.
// Проверяются только запросы с путём, начинающимся с prefix.
func NewRequestValidator(doc *openapi3.T, prefix string, logger *slog.Logger) (*RequestValidator, error) {
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("создание роутера OpenAPI: %w", err)
	}
	return &RequestValidator{
		router: router,
		prefix: prefix,
		logger: logger.With(slog.String("component", "openapi_validator")),
	}, nil
}

// Middleware возвращает HTTP middleware валидации.
// Запросы к путям вне контракта передаются дальше без проверки:
// 404/405 формирует основной роутер.
func (v *RequestValidator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, v.prefix) {
				next.ServeHTTP(w, r)
				return
			}

			route, pathParams, err := v.router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					// токен проверяет JWTAuth
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					MultiError:         false,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				v.logger.Debug("Запрос не соответствует контракту",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				apierrors.ValidationError(w, validationMessage(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validationMessage формирует краткое сообщение об ошибке валидации.
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			field := strings.Join(schemaErr.JSONPointer(), ".")
			if field != "" {
				return fmt.Sprintf("поле %s: %s", field, schemaErr.Reason)
			}
			return schemaErr.Reason
		}
		if reqErr.Parameter != nil {
			return fmt.Sprintf("параметр %s: %s", reqErr.Parameter.Name, reqErr.Reason)
		}
		if reqErr.Reason != "" {
			return reqErr.Reason
		}
	}
	return err.Error()
}
