// auth.go — обработчики /api/v1/auth endpoints.
package handlers

import (
	"net/http"

	apierrors "github.com/arjun8815/spinwise-erp/internal/api/errors"
	"github.com/arjun8815/spinwise-erp/internal/api/generated"
	"github.com/arjun8815/spinwise-erp/internal/api/middleware"
	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/service"
)

// SignIn — POST /api/v1/auth/sign-in.
// Вход по email и паролю, возвращает пару токенов.
// Вызов не помечен сессией UI: сессии браузера он не затрагивает.
func (h *APIHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req generated.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ident, err := h.svc.Auth.SignIn(r.Context(), service.SignInInput{
		Email:    string(req.Email),
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, "Ошибка входа", err)
		return
	}

	writeJSON(w, http.StatusOK, mapToken(ident))
}

// RefreshToken — POST /api/v1/auth/refresh.
func (h *APIHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req generated.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ident, err := h.svc.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeServiceError(w, "Ошибка обновления токенов", err)
		return
	}

	writeJSON(w, http.StatusOK, mapToken(ident))
}

// GetMe — GET /api/v1/auth/me.
// Возвращает пользователя из JWT и состояние его профиля.
// Доступ: любой аутентифицированный пользователь, в том числе без профиля.
func (h *APIHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return
	}

	resp := generated.MeResponse{
		UserId:       claims.Subject,
		Email:        optional(claims.Email),
		ProfileState: generated.ProfileState(claims.ProfileState.String()),
	}
	if claims.Profile != nil {
		user := mapUser(claims.Profile)
		resp.Profile = &user
	}

	writeJSON(w, http.StatusOK, resp)
}

func mapToken(ident *model.Identity) generated.TokenResponse {
	return generated.TokenResponse{
		UserId:       ident.UserID,
		AccessToken:  ident.AccessToken,
		RefreshToken: ident.RefreshToken,
		ExpiresAt:    ident.ExpiresAt.UTC(),
	}
}
