// users.go — управление пользователями (только admin).
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/service"
	uimiddleware "github.com/arjun8815/spinwise-erp/internal/ui/middleware"
	"github.com/arjun8815/spinwise-erp/internal/ui/pages"
)

// UsersHandler — страница пользователей.
type UsersHandler struct {
	*Layout
	users  *service.UserService
	logger *slog.Logger
}

// NewUsersHandler создаёт UsersHandler.
func NewUsersHandler(layout *Layout, users *service.UserService, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{
		Layout: layout,
		users:  users,
		logger: logger.With(slog.String("component", "ui.users")),
	}
}

// HandleUsers — GET /users?role=
func (h *UsersHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if !rbac.IsValidRole(role) {
		role = ""
	}
	data := pages.UsersData{
		Base:       h.base(w, r, "userManagement", &ViewUsers),
		RoleFilter: role,
		Roles:      rbac.AllRoles(),
	}

	users, err := h.users.List(r.Context(), role)
	if err != nil {
		h.logger.Error("Ошибка получения пользователей", slog.String("error", err.Error()))
		data.Flash = "noData"
	}
	data.Users = users

	h.render(w, r, http.StatusOK, pages.Users(data))
}

// HandleCreateUser — POST /users
func (h *UsersHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	_, err := h.users.Create(r.Context(), service.CreateUserInput{
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		FirstName: strings.TrimSpace(r.FormValue("firstName")),
		LastName:  strings.TrimSpace(r.FormValue("lastName")),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
		Role:      r.FormValue("role"),
		Language:  r.FormValue("language"),
	})
	h.afterSubmit(w, r, err)
}

// HandleUpdateUser — POST /users/{id}
// Пустые поля формы не меняются; пароль сбрасывается, только если задан.
func (h *UsersHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in := service.UpdateUserInput{
		FirstName: formValue(r, "firstName"),
		LastName:  formValue(r, "lastName"),
		Role:      formValue(r, "role"),
		Language:  formValue(r, "language"),
		Phone:     formValue(r, "phone"),
		Password:  formValue(r, "password"),
	}

	_, err := h.users.Update(r.Context(), id, in)
	if err == nil {
		// изменения собственного профиля сразу видны в сессии
		if store := uimiddleware.StoreFromContext(r.Context()); store != nil && store.UserID() == id {
			store.RefreshProfile(r.Context())
		}
	}
	h.afterSubmit(w, r, err)
}

func (h *UsersHandler) afterSubmit(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.logger.Info("Форма пользователя не сохранена",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		setFlash(w, "formFailed")
	} else {
		setFlash(w, "saved")
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// formValue возвращает значение поля формы или nil, если оно пустое.
func formValue(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return nil
	}
	return &v
}
