// language.go — обработчик переключения языка UI.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	uimiddleware "github.com/arjun8815/spinwise-erp/internal/ui/middleware"
)

// LanguageSetter сохраняет язык в профиле пользователя.
type LanguageSetter interface {
	SetLanguage(ctx context.Context, id string, lang model.Language) error
}

// LanguageHandler — переключатель языка.
type LanguageHandler struct {
	profiles LanguageSetter
	logger   *slog.Logger
}

// NewLanguageHandler создаёт LanguageHandler.
func NewLanguageHandler(profiles LanguageSetter, logger *slog.Logger) *LanguageHandler {
	return &LanguageHandler{
		profiles: profiles,
		logger:   logger.With(slog.String("component", "ui.language")),
	}
}

// HandleSetLanguage обрабатывает POST /language.
// Устанавливает cookie языка, сохраняет выбор в профиле (если он есть)
// и перенаправляет обратно на локальный Referer.
func (h *LanguageHandler) HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := model.Language(r.FormValue("lang"))
	if !model.IsValidLanguage(string(lang)) {
		lang = model.DefaultLanguage
	}

	setLanguageCookie(w, lang)

	if store := uimiddleware.StoreFromContext(r.Context()); store != nil {
		if p := store.Snapshot().Profile; p != nil && p.PreferredLanguage != lang {
			if err := h.profiles.SetLanguage(r.Context(), p.ID, lang); err != nil {
				h.logger.Warn("Не удалось сохранить язык в профиле",
					slog.String("user_id", p.ID),
					slog.String("error", err.Error()),
				)
			} else {
				store.RefreshProfile(r.Context())
			}
		}
	}

	target, ok := uimiddleware.SafeReferer(r.Header.Get("Referer"), r.Host)
	if !ok {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
