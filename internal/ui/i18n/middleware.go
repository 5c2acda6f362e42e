// middleware.go — выбор языка запроса.
package i18n

import (
	"net/http"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

// LangCookieName — cookie с явно выбранным языком.
const LangCookieName = "spinwise-language"

// Middleware помещает язык запроса в контекст. Язык профиля
// применяется позже, в middleware сессий UI.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), DetectLanguage(r))))
		})
	}
}

// DetectLanguage: cookie, затем Accept-Language, затем english.
// Cookie с неизвестным языком игнорируется.
func DetectLanguage(r *http.Request) model.Language {
	if c, err := r.Cookie(LangCookieName); err == nil && model.IsValidLanguage(c.Value) {
		return model.Language(c.Value)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return MatchLanguage(accept)
	}
	return model.DefaultLanguage
}
