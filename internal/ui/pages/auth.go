// auth.go — страница входа: вход, регистрация и подтверждение кода.
package pages

import (
	"net/url"

	"github.com/a-h/templ"
)

// Режимы страницы входа.
const (
	AuthSignIn = "sign-in"
	AuthSignUp = "sign-up"
	AuthVerify = "verify"
)

// Auth — формы входа. Неизвестный режим показывает подтверждение кода.
func Auth(d AuthData) templ.Component {
	return page(d.Base, component(func(h *html) {
		h.raw(`<section class="auth"><h1>`)
		h.t("welcome")
		h.raw(`</h1><div class="tabs">`)
		for _, tab := range []struct{ mode, key string }{{AuthSignIn, "signIn"}, {AuthSignUp, "signUp"}} {
			q := url.Values{"mode": {tab.mode}}
			if d.From != "" {
				q.Set("from", d.From)
			}
			h.raw("<a")
			h.attr("href", "/auth?"+q.Encode())
			if d.Mode == tab.mode {
				h.attr("class", "active")
			}
			h.raw(">")
			h.t(tab.key)
			h.raw("</a>")
		}
		h.raw("</div>")

		switch d.Mode {
		case AuthSignIn:
			authForm(h, "/auth/sign-in", d.From)
			emailInput(h, d.Email, true)
			h.raw("<label>")
			h.t("password")
			h.raw(`<input type="password" name="password" required></label><button type="submit">`)
			h.t("signIn")
		case AuthSignUp:
			authForm(h, "/auth/sign-up", d.From)
			textInput(h, "firstName", "", true)
			textInput(h, "lastName", "", true)
			emailInput(h, d.Email, false)
			h.raw("<label>")
			h.t("password")
			h.raw(`<input type="password" name="password" minlength="6" required></label><button type="submit">`)
			h.t("signUp")
		default:
			authForm(h, "/auth/verify", d.From)
			emailInput(h, d.Email, false)
			h.raw("<label>")
			h.t("otpCode")
			h.raw(`<input name="code" inputmode="numeric" pattern="[0-9]{6}"`)
			h.attr("value", d.Code)
			h.raw(` required autofocus></label><button type="submit">`)
			h.t("verifyOtp")
		}
		h.raw("</button></form></section>")
	}))
}

// authForm открывает форму со скрытым полем from.
func authForm(h *html, action, from string) {
	h.raw(`<form method="post"`)
	h.attr("action", action)
	h.raw(` class="card"><input type="hidden" name="from"`)
	h.attr("value", from)
	h.raw(">")
}

func emailInput(h *html, value string, autofocus bool) {
	h.raw("<label>")
	h.t("email")
	h.raw(`<input type="email" name="email"`)
	h.attr("value", value)
	h.raw(" required")
	h.flag("autofocus", autofocus)
	h.raw("></label>")
}

// textInput — текстовое поле с подписью по ключу name.
func textInput(h *html, name, value string, required bool) {
	h.raw("<label>")
	h.t(name)
	h.raw("<input")
	h.attr("name", name)
	if value != "" {
		h.attr("value", value)
	}
	h.flag("required", required)
	h.raw("></label>")
}
