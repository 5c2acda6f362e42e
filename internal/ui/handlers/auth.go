// auth.go — вход, регистрация, подтверждение кодом и выход в UI.
// Каждая операция поставщика выполняется с меткой SID новой сессии:
// событие входа применяет только её Store.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/identity"
	"github.com/arjun8815/spinwise-erp/internal/service"
	"github.com/arjun8815/spinwise-erp/internal/session"
	"github.com/arjun8815/spinwise-erp/internal/ui/i18n"
	uimiddleware "github.com/arjun8815/spinwise-erp/internal/ui/middleware"
	"github.com/arjun8815/spinwise-erp/internal/ui/pages"
)

// CodeLookup выдаёт ожидающий код подтверждения (встроенный поставщик).
type CodeLookup interface {
	PendingCode(email string) (string, bool)
}

// AuthHandler — обработчики аутентификации UI.
type AuthHandler struct {
	*Layout
	auth     *service.AuthService
	registry *session.Registry
	codec    *session.CookieCodec
	// codes — nil, если поставщик отправляет код сам
	codes  CodeLookup
	logger *slog.Logger
}

// NewAuthHandler создаёт AuthHandler.
func NewAuthHandler(
	layout *Layout,
	auth *service.AuthService,
	registry *session.Registry,
	codec *session.CookieCodec,
	codes CodeLookup,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		Layout:   layout,
		auth:     auth,
		registry: registry,
		codec:    codec,
		codes:    codes,
		logger:   logger.With(slog.String("component", "ui_auth")),
	}
}

// HandleAuthPage — GET /auth
// Формы входа, регистрации и подтверждения кодом.
func (h *AuthHandler) HandleAuthPage(w http.ResponseWriter, r *http.Request) {
	from, _ := uimiddleware.SafeLocalPath(r.URL.Query().Get("from"))

	state := uimiddleware.StateFromContext(r.Context())
	if state.SessionPresent() {
		http.Redirect(w, r, redirectTarget(from), http.StatusFound)
		return
	}

	mode := r.URL.Query().Get("mode")
	switch mode {
	case pages.AuthSignUp, pages.AuthVerify:
	default:
		mode = pages.AuthSignIn
	}

	data := pages.AuthData{
		Base:  h.base(w, r, "signIn", nil),
		Mode:  mode,
		From:  from,
		Email: r.URL.Query().Get("email"),
	}
	if mode == pages.AuthVerify && h.codes != nil && data.Email != "" {
		data.Code, _ = h.codes.PendingCode(data.Email)
	}
	h.render(w, r, http.StatusOK, pages.Auth(data))
}

// HandleSignIn — POST /auth/sign-in
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	from, _ := uimiddleware.SafeLocalPath(r.FormValue("from"))

	sid, ctx := h.openSession(r)
	ident, err := h.auth.SignIn(ctx, service.SignInInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	})
	if err != nil {
		h.registry.Close(sid)
		h.fail(w, r, err, authPage(pages.AuthSignIn, from, r.FormValue("email")))
		return
	}

	h.establish(w, r, sid, ident, from)
}

// HandleSignUp — POST /auth/sign-up
// Если поставщик требует подтверждения, перенаправляет на форму кода.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	from, _ := uimiddleware.SafeLocalPath(r.FormValue("from"))
	email := strings.TrimSpace(r.FormValue("email"))

	sid, ctx := h.openSession(r)
	res, err := h.auth.SignUp(ctx, service.SignUpInput{
		Email:     email,
		Password:  r.FormValue("password"),
		FirstName: strings.TrimSpace(r.FormValue("firstName")),
		LastName:  strings.TrimSpace(r.FormValue("lastName")),
	})
	if err != nil {
		h.registry.Close(sid)
		h.fail(w, r, err, authPage(pages.AuthSignUp, from, email))
		return
	}

	if res.PendingVerification() {
		h.registry.Close(sid)
		setFlash(w, "codeSent")
		http.Redirect(w, r, authPage(pages.AuthVerify, from, email), http.StatusSeeOther)
		return
	}

	h.establish(w, r, sid, res.Identity, from)
}

// HandleVerify — POST /auth/verify
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	from, _ := uimiddleware.SafeLocalPath(r.FormValue("from"))
	email := strings.TrimSpace(r.FormValue("email"))

	sid, ctx := h.openSession(r)
	ident, err := h.auth.Verify(ctx, service.VerifyInput{
		Email: email,
		Code:  r.FormValue("code"),
	})
	if err != nil {
		h.registry.Close(sid)
		h.fail(w, r, err, authPage(pages.AuthVerify, from, email))
		return
	}

	h.establish(w, r, sid, ident, from)
}

// HandleLogout — POST /logout
// Завершает сессию у поставщика (событие выхода получат все сессии
// пользователя), удаляет Store и cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if store := uimiddleware.StoreFromContext(r.Context()); store != nil {
		if ident := store.Snapshot().Identity; ident != nil {
			h.auth.SignOut(r.Context(), ident)
		}
		store.SignOut()
		h.registry.Close(store.SID())
	}
	h.codec.Clear(w)
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

// openSession создаёт Store новой сессии и контекст с её меткой.
// Прежняя сессия этого браузера удаляется из реестра.
func (h *AuthHandler) openSession(r *http.Request) (string, context.Context) {
	if old := uimiddleware.StoreFromContext(r.Context()); old != nil {
		h.registry.Close(old.SID())
	}
	sid := h.registry.Open(nil).SID()
	return sid, identity.WithOrigin(r.Context(), sid)
}

// establish записывает cookie новой сессии и перенаправляет на from.
// Язык профиля переносится в cookie языка.
func (h *AuthHandler) establish(w http.ResponseWriter, r *http.Request, sid string, ident *model.Identity, from string) {
	if err := h.codec.Write(w, session.NewCookieData(sid, ident)); err != nil {
		h.logger.Error("Ошибка установки cookie сессии", slog.String("error", err.Error()))
		h.registry.Close(sid)
		setFlash(w, "authFailed")
		http.Redirect(w, r, authPage(pages.AuthSignIn, from, ""), http.StatusSeeOther)
		return
	}

	if store, ok := h.registry.Get(sid); ok {
		if lang := store.Snapshot().Language(); lang != "" {
			setLanguageCookie(w, lang)
		}
	}

	h.logger.Info("Сессия UI открыта",
		slog.String("user_id", ident.UserID),
		slog.String("sid", sid),
	)
	http.Redirect(w, r, redirectTarget(from), http.StatusSeeOther)
}

// fail сохраняет уведомление об ошибке и возвращает на форму.
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	key := "authFailed"
	switch {
	case errors.Is(err, service.ErrIDPUnavailable):
		key = "providerUnavailable"
	case errors.Is(err, service.ErrConflict):
		key = "signUpFailed"
	case strings.Contains(r.URL.Path, pages.AuthVerify):
		key = "verifyFailed"
	}
	h.logger.Debug("Операция аутентификации не выполнена",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	setFlash(w, key)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// authPage строит адрес страницы /auth.
func authPage(mode, from, email string) string {
	q := url.Values{}
	q.Set("mode", mode)
	if from != "" {
		q.Set("from", from)
	}
	if email != "" {
		q.Set("email", email)
	}
	return "/auth?" + q.Encode()
}

func redirectTarget(from string) string {
	if from == "" || strings.HasPrefix(from, "/auth") {
		return "/"
	}
	return from
}

// setLanguageCookie устанавливает cookie языка на 1 год.
func setLanguageCookie(w http.ResponseWriter, lang model.Language) {
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})
}
