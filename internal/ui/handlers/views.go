// Пакет handlers — HTTP-обработчики UI.
// views.go — таблица разделов, общий layout, flash-уведомления
// и служебные страницы guard.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/ui/i18n"
	uimiddleware "github.com/arjun8815/spinwise-erp/internal/ui/middleware"
	"github.com/arjun8815/spinwise-erp/internal/ui/pages"
)

// View — раздел UI и допущенные к нему роли.
type View struct {
	// Key — ключ i18n названия
	Key     string
	Path    string
	Allowed rbac.RoleSet
}

// Разделы UI.
var (
	ViewDashboard  = View{Key: "dashboard", Path: "/", Allowed: rbac.AnyRole()}
	ViewProduction = View{Key: "production", Path: "/production", Allowed: rbac.AnyRole()}
	ViewInventory  = View{Key: "inventory", Path: "/inventory", Allowed: rbac.NewRoleSet(rbac.RoleAdmin, rbac.RoleManager)}
	ViewQuality    = View{Key: "quality", Path: "/quality", Allowed: rbac.AnyRole()}
	ViewUsers      = View{Key: "userManagement", Path: "/users", Allowed: rbac.NewRoleSet(rbac.RoleAdmin)}
)

// Views — разделы в порядке навигации.
var Views = []View{ViewDashboard, ViewProduction, ViewInventory, ViewQuality, ViewUsers}

const (
	flashCookieName = "spinwise_flash"
	flashMaxAge     = 60
)

// Layout — общая часть обработчиков страниц.
// Реализует uimiddleware.StatusPages.
type Layout struct {
	renderer *pages.Renderer
	logger   *slog.Logger
}

// NewLayout создаёт Layout.
func NewLayout(renderer *pages.Renderer, logger *slog.Logger) *Layout {
	return &Layout{
		renderer: renderer,
		logger:   logger.With(slog.String("component", "ui.layout")),
	}
}

// base собирает данные layout и забирает flash-уведомление.
func (l *Layout) base(w http.ResponseWriter, r *http.Request, title string, active *View) pages.Base {
	state := uimiddleware.StateFromContext(r.Context())

	b := pages.Base{
		Title:     title,
		Profile:   state.Profile,
		Lang:      i18n.LangFromContext(r.Context()),
		Languages: model.AllLanguages(),
		Flash:     takeFlash(w, r),
	}
	if state.Identity != nil {
		b.Email = state.Identity.Email
		b.Nav = navigation(state.Role(), active)
	}
	return b
}

// navigation возвращает разделы, доступные роли. Без роли
// показываются все: допуск всё равно решает guard.
func navigation(role *rbac.Role, active *View) []pages.NavItem {
	items := make([]pages.NavItem, 0, len(Views))
	for _, v := range Views {
		if role != nil && !v.Allowed.Contains(*role) {
			continue
		}
		items = append(items, pages.NavItem{
			Key:    v.Key,
			Path:   v.Path,
			Active: active != nil && active.Path == v.Path,
		})
	}
	return items
}

// render отрисовывает страницу, ошибки рендеринга логируются.
func (l *Layout) render(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	if err := l.renderer.Render(w, r, status, page); err != nil {
		l.logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// Waiting — страница ожидания загрузки сессии.
func (l *Layout) Waiting(w http.ResponseWriter, r *http.Request) {
	data := pages.MessageData{Base: l.base(w, r, "loading", nil), Message: "loading"}
	data.Refresh = 1
	l.render(w, r, http.StatusOK, pages.Message(data))
}

// Forbidden — страница 403.
func (l *Layout) Forbidden(w http.ResponseWriter, r *http.Request, reasonKey string) {
	data := pages.MessageData{Base: l.base(w, r, "accessDenied", nil), Message: reasonKey}
	l.render(w, r, http.StatusForbidden, pages.Message(data))
}

// --- flash ---

// setFlash сохраняет одноразовое уведомление (ключ i18n).
func setFlash(w http.ResponseWriter, key string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash возвращает уведомление и удаляет cookie.
func takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Value
}
