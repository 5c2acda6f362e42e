// events.go — события аутентификации и их рассылка подписчикам.
package identity

import (
	"context"
	"sync"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

// EventType — тип события аутентификации.
type EventType int

// Типы событий.
const (
	// EventSignedIn — пользователь вошёл (пароль, регистрация, код).
	EventSignedIn EventType = iota
	// EventTokenRefreshed — токены обновлены.
	EventTokenRefreshed
	// EventSignedOut — сессия завершена.
	EventSignedOut
)

// String возвращает имя типа события.
func (t EventType) String() string {
	switch t {
	case EventSignedIn:
		return "signed_in"
	case EventTokenRefreshed:
		return "token_refreshed"
	case EventSignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// Event — изменение состояния аутентификации пользователя.
type Event struct {
	Type   EventType
	UserID string
	// Identity — новая Identity (nil для EventSignedOut)
	Identity *model.Identity
	// Origin — метка инициатора операции (см. WithOrigin), пустая,
	// если вызов пришёл без метки
	Origin string
}

type originKey struct{}

// WithOrigin помечает контекст вызова поставщика меткой инициатора.
// Метка попадает в Event.Origin событий, порождённых этим вызовом.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom возвращает метку инициатора из контекста.
func OriginFrom(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}

// hub — рассылка событий подписчикам.
// Подписчики вызываются синхронно, вне блокировки.
type hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func newHub() *hub {
	return &hub{subs: make(map[int]func(Event))}
}

// Subscribe регистрирует подписчика.
func (h *hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// publish отправляет событие всем подписчикам.
func (h *hub) publish(ctx context.Context, ev Event) {
	ev.Origin = OriginFrom(ctx)

	h.mu.RLock()
	subs := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
