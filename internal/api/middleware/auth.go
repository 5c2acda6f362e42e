// auth.go — JWT middleware JSON API.
// Проверяет Bearer access token поставщика учётных записей (RS256, JWKS),
// получает профиль пользователя и помещает claims в контекст запроса.
// Допуск по ролям решает guard с той же политикой, что и для UI.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/arjun8815/spinwise-erp/internal/api/errors"
	"github.com/arjun8815/spinwise-erp/internal/domain/guard"
	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/profile"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyClaims — claims запроса в контексте.
	ContextKeyClaims contextKey = "jwt_claims"
)

// AuthClaims — проверенные claims access token и профиль пользователя.
type AuthClaims struct {
	// Subject — sub из JWT (ID учётной записи у поставщика).
	Subject string
	// Email — email из JWT.
	Email string
	// Profile — профиль пользователя; nil, если не получен.
	Profile *model.Profile
	// ProfileState — результат получения профиля.
	ProfileState profile.State
}

// Role возвращает роль профиля или nil.
func (c *AuthClaims) Role() *rbac.Role {
	if c.Profile == nil {
		return nil
	}
	role := c.Profile.Role
	return &role
}

// Decide применяет guard к запросу с проверенным токеном.
// Загрузки у API нет: профиль получен до вызова.
func (c *AuthClaims) Decide(allowed rbac.RoleSet, policy guard.NullRolePolicy) guard.Outcome {
	if c == nil {
		return guard.Decide(guard.Input{Allowed: allowed}, policy)
	}
	return guard.Decide(guard.Input{
		SessionPresent: true,
		ProfileRole:    c.Role(),
		Allowed:        allowed,
	}, policy)
}

// ProfileResolver получает профиль по ID учётной записи.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID string) profile.Result
}

// tokenClaims — claims access token (Keycloak и встроенный поставщик).
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// JWTAuth — middleware JWT-аутентификации.
type JWTAuth struct {
	jwks     keyfunc.Keyfunc
	issuer   string
	leeway   time.Duration
	profiles ProfileResolver
	logger   *slog.Logger
}

// NewJWTAuth создаёт JWT middleware.
// kf — источник ключей поставщика, issuer — ожидаемый iss (пустой — не проверяется).
func NewJWTAuth(kf keyfunc.Keyfunc, issuer string, leeway time.Duration, profiles ProfileResolver, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		jwks:     kf,
		issuer:   issuer,
		leeway:   leeway,
		profiles: profiles,
		logger:   logger.With(slog.String("component", "jwt_auth")),
	}
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Извлекает Bearer token, валидирует подпись (RS256), issuer и срок,
// получает профиль и помещает AuthClaims в контекст.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Отсутствует заголовок Authorization")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
				return
			}

			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				apierrors.Unauthorized(w, "Пустой Bearer token")
				return
			}

			raw := &tokenClaims{}
			parserOpts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"RS256"}),
				jwt.WithExpirationRequired(),
				jwt.WithLeeway(j.leeway),
			}
			if j.issuer != "" {
				parserOpts = append(parserOpts, jwt.WithIssuer(j.issuer))
			}

			token, err := jwt.ParseWithClaims(tokenString, raw, j.jwks.KeyfuncCtx(r.Context()), parserOpts...)
			if err != nil || !token.Valid {
				j.logger.Debug("JWT валидация не пройдена",
					slog.Any("error", err),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Невалидный или просроченный токен")
				return
			}

			subject, err := raw.GetSubject()
			if err != nil || subject == "" {
				apierrors.Unauthorized(w, "Отсутствует sub в токене")
				return
			}

			res := j.profiles.Resolve(r.Context(), subject)
			claims := &AuthClaims{
				Subject:      subject,
				Email:        raw.Email,
				Profile:      res.Profile,
				ProfileState: res.State,
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithExclusions оборачивает Middleware: запросы вне prefix и к путям
// из public проходят без проверки токена.
func (j *JWTAuth) WithExclusions(prefix string, public ...string) func(http.Handler) http.Handler {
	jwtMiddleware := j.Middleware()

	return func(next http.Handler) http.Handler {
		protected := jwtMiddleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			for _, p := range public {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// --- Context helpers ---

// ClaimsFromContext извлекает AuthClaims из контекста запроса.
// Возвращает nil, если claims не найдены.
func ClaimsFromContext(ctx context.Context) *AuthClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*AuthClaims)
	return claims
}

// WithClaims помещает claims в контекст (для тестов обработчиков).
func WithClaims(ctx context.Context, claims *AuthClaims) context.Context {
	return context.WithValue(ctx, ContextKeyClaims, claims)
}

// SubjectFromContext извлекает sub из контекста запроса.
// Возвращает пустую строку, если claims не найдены.
func SubjectFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// --- ReadinessChecker для Keycloak ---

// KeycloakReadinessChecker — проверка доступности Keycloak через JWKS.
type KeycloakReadinessChecker struct {
	jwksURL string
	client  *http.Client
}

// NewKeycloakReadinessChecker создаёт checker доступности Keycloak.
// timeout — таймаут одной проверки.
func NewKeycloakReadinessChecker(jwksURL string, timeout time.Duration) *KeycloakReadinessChecker {
	return &KeycloakReadinessChecker{
		jwksURL: jwksURL,
		client:  &http.Client{Timeout: timeout},
	}
}

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusFail     = "fail"
)

// CheckReady проверяет доступность JWKS endpoint Keycloak.
func (k *KeycloakReadinessChecker) CheckReady() (status, message string) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, k.jwksURL, http.NoBody)
	if err != nil {
		return statusFail, "ошибка создания запроса: " + err.Error()
	}
	resp, err := k.client.Do(req) //nolint:gosec // G704: URL из конфигурации Keycloak
	if err != nil {
		return statusFail, fmt.Sprintf("Keycloak JWKS недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusFail, fmt.Sprintf("Keycloak JWKS вернул статус %d", resp.StatusCode)
	}

	var jwksResp struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwksResp); err != nil {
		return statusDegraded, fmt.Sprintf("Keycloak JWKS: невалидный JSON: %v", err)
	}

	if len(jwksResp.Keys) == 0 {
		return statusDegraded, "Keycloak JWKS: нет ключей"
	}

	return statusOK, fmt.Sprintf("JWKS доступен, ключей: %d", len(jwksResp.Keys))
}
