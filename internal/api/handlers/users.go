// users.go — обработчики /api/v1/users endpoints.
// Управление пользователями: список, получение, создание, обновление.
package handlers

import (
	"net/http"

	"github.com/arjun8815/spinwise-erp/internal/api/generated"
	"github.com/arjun8815/spinwise-erp/internal/service"
)

// ListUsers — GET /api/v1/users.
// Доступ: admin.
func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request, params generated.ListUsersParams) {
	if !h.authorize(w, r, rolesUsers) {
		return
	}

	role := ""
	if params.Role != nil {
		role = string(*params.Role)
	}

	profiles, err := h.svc.Users.List(r.Context(), role)
	if err != nil {
		h.writeServiceError(w, "Ошибка получения пользователей", err)
		return
	}

	items := make([]generated.User, len(profiles))
	for i, p := range profiles {
		items[i] = mapUser(p)
	}
	writeJSON(w, http.StatusOK, generated.UserListResponse{Items: items, Total: len(items)})
}

// GetUser — GET /api/v1/users/{id}.
// Доступ: admin.
func (h *APIHandler) GetUser(w http.ResponseWriter, r *http.Request, id generated.UserId) {
	if !h.authorize(w, r, rolesUsers) {
		return
	}

	p, err := h.svc.Users.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Ошибка получения пользователя", err)
		return
	}

	writeJSON(w, http.StatusOK, mapUser(p))
}

// CreateUser — POST /api/v1/users.
// Создаёт учётную запись у поставщика, затем профиль.
// Доступ: admin.
func (h *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, rolesUsers) {
		return
	}

	var req generated.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Users.Create(r.Context(), service.CreateUserInput{
		Email:     string(req.Email),
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     deref(req.Phone),
		Role:      string(req.Role),
		Language:  string(req.Language),
	})
	if err != nil {
		h.writeServiceError(w, "Ошибка создания пользователя", err)
		return
	}

	writeJSON(w, http.StatusCreated, mapUser(p))
}

// UpdateUser — PUT /api/v1/users/{id}.
// Отсутствующие поля не меняются; password сбрасывает пароль у поставщика.
// Доступ: admin.
func (h *APIHandler) UpdateUser(w http.ResponseWriter, r *http.Request, id generated.UserId) {
	if !h.authorize(w, r, rolesUsers) {
		return
	}

	var req generated.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := service.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Password:  req.Password,
	}
	if req.Role != nil {
		role := string(*req.Role)
		in.Role = &role
	}
	if req.Language != nil {
		lang := string(*req.Language)
		in.Language = &lang
	}

	p, err := h.svc.Users.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, "Ошибка обновления пользователя", err)
		return
	}

	writeJSON(w, http.StatusOK, mapUser(p))
}
