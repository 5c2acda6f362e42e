// Пакет middleware — HTTP middleware для UI.
// session.go — восстановление сессии из cookie и ожидание её загрузки.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/arjun8815/spinwise-erp/internal/profile"
	"github.com/arjun8815/spinwise-erp/internal/session"
	"github.com/arjun8815/spinwise-erp/internal/ui/i18n"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий с API middleware).
type contextKey string

const (
	// ContextKeyUISession — Store сессии в контексте запроса.
	ContextKeyUISession contextKey = "ui_session"
)

// Sessions — middleware UI-сессий.
// Читает зашифрованный cookie, находит (или воссоздаёт) Store в реестре
// и ждёт завершения первичной загрузки не дольше settle.
type Sessions struct {
	registry *session.Registry
	codec    *session.CookieCodec
	settle   time.Duration
	logger   *slog.Logger
}

// NewSessions создаёт middleware UI-сессий.
func NewSessions(registry *session.Registry, codec *session.CookieCodec, settle time.Duration, logger *slog.Logger) *Sessions {
	return &Sessions{
		registry: registry,
		codec:    codec,
		settle:   settle,
		logger:   logger.With(slog.String("component", "ui_session_middleware")),
	}
}

// Middleware возвращает HTTP middleware UI-сессий.
// Запрос без cookie проходит без Store: guard видит отсутствие сессии.
func (s *Sessions) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookie сессии
			data, err := s.codec.Read(r)
			if err != nil {
				s.logger.Debug("Ошибка чтения cookie сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				s.codec.Clear(w)
				data = nil
			}
			if data == nil {
				next.ServeHTTP(w, r)
				return
			}

			// 2. Store из реестра (после рестарта — из Identity cookie)
			store := s.registry.Restore(data.SID, data.Identity())

			// 3. Ожидание первичной загрузки
			s.waitSettled(r.Context(), store)

			// 4. Синхронизация cookie с состоянием Store
			state := store.Snapshot()
			if !state.Loading {
				switch {
				case state.Identity == nil:
					s.codec.Clear(w)
				case state.Identity.AccessToken != data.AccessToken:
					if err := s.codec.Write(w, session.NewCookieData(store.SID(), state.Identity)); err != nil {
						s.logger.Error("Ошибка обновления cookie сессии",
							slog.String("error", err.Error()),
						)
					}
				}
			}

			// 5. Язык профиля имеет приоритет над cookie и Accept-Language
			ctx := WithStore(r.Context(), store)
			if state.Profile != nil {
				ctx = i18n.WithLang(ctx, state.Language())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Sessions) waitSettled(ctx context.Context, store *session.Store) {
	timer := time.NewTimer(s.settle)
	defer timer.Stop()

	select {
	case <-store.Settled():
	case <-timer.C:
		s.logger.Debug("Загрузка сессии не завершилась за отведённое время",
			slog.String("sid", store.SID()),
			slog.Duration("settle", s.settle),
		)
	case <-ctx.Done():
	}
}

// --- Context helpers ---

// WithStore помещает Store сессии в контекст.
func WithStore(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, ContextKeyUISession, store)
}

// StoreFromContext извлекает Store из контекста запроса.
// Возвращает nil, если сессии нет.
func StoreFromContext(ctx context.Context) *session.Store {
	store, _ := ctx.Value(ContextKeyUISession).(*session.Store)
	return store
}

// StateFromContext возвращает снимок состояния сессии запроса.
// Без Store — состояние без сессии и без загрузки.
func StateFromContext(ctx context.Context) session.State {
	if store := StoreFromContext(ctx); store != nil {
		return store.Snapshot()
	}
	return session.State{ProfileState: profile.StateNotFound}
}
