// registry.go — реестр сессий процесса.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/identity"
)

// bootstrapTimeout ограничивает первичную загрузку одной сессии.
const bootstrapTimeout = 30 * time.Second

// Provider — часть поставщика учётных записей, нужная реестру.
type Provider interface {
	Refresher
	Subscribe(fn func(identity.Event)) func()
}

// Registry хранит Store по SID.
type Registry struct {
	resolver ProfileResolver
	provider Provider
	idleTTL  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	// baseCtx — контекст фоновых операций сессий (не отменяется
	// с завершением HTTP-запроса)
	baseCtx context.Context

	mu     sync.RWMutex
	stores map[string]*Store

	unsubscribe func()
	active      prometheus.Gauge
}

// NewRegistry создаёт реестр и подписывается на события поставщика.
// reg — Prometheus registerer для метрики активных сессий (nil — без метрики).
func NewRegistry(provider Provider, resolver ProfileResolver, idleTTL time.Duration, reg prometheus.Registerer, logger *slog.Logger) *Registry {
	r := &Registry{
		resolver: resolver,
		provider: provider,
		idleTTL:  idleTTL,
		logger:   logger.With(slog.String("component", "session_registry")),
		now:      time.Now,
		baseCtx:  context.Background(),
		stores:   make(map[string]*Store),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sw_sessions_active",
			Help: "Количество сессий UI в реестре",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.active)
	}
	r.unsubscribe = provider.Subscribe(r.route)
	return r
}

// NewSID генерирует идентификатор сессии.
func NewSID() string {
	return uuid.NewString()
}

// Open создаёт сессию с новым SID и запускает её загрузку в фоне.
// seed — Identity (nil — анонимная сессия).
func (r *Registry) Open(seed *model.Identity) *Store {
	return r.start(NewSID(), seed, false)
}

// Restore возвращает Store по SID. Если процесс его не знает
// (рестарт, вытеснение, выход), Store воссоздаётся из Identity cookie,
// но Identity устанавливается только после refresh у поставщика.
func (r *Registry) Restore(sid string, seed *model.Identity) *Store {
	if s, ok := r.Get(sid); ok {
		return s
	}
	return r.start(sid, seed, true)
}

// Get возвращает Store по SID и отмечает обращение.
func (r *Registry) Get(sid string) (*Store, bool) {
	r.mu.RLock()
	s, ok := r.stores[sid]
	r.mu.RUnlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// Close удаляет сессию из реестра.
func (r *Registry) Close(sid string) {
	r.mu.Lock()
	if _, ok := r.stores[sid]; ok {
		delete(r.stores, sid)
		r.active.Dec()
	}
	r.mu.Unlock()
}

// Len возвращает число сессий.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

func (r *Registry) start(sid string, seed *model.Identity, revalidate bool) *Store {
	r.mu.Lock()
	if existing, ok := r.stores[sid]; ok {
		r.mu.Unlock()
		return existing
	}
	s := NewStore(sid, seed, r.resolver, r.provider, r.logger)
	s.now = r.now
	s.revalidate = revalidate
	s.Touch()
	r.stores[sid] = s
	r.active.Inc()
	r.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(r.baseCtx, bootstrapTimeout)
		defer cancel()
		s.Bootstrap(ctx)
	}()
	return s
}

// route доставляет событие поставщика сессиям пользователя.
// Выход завершает все сессии пользователя. Вход и обновление токенов
// применяются только к сессии-инициатору (Event.Origin): вызовы без
// метки (JSON API) сессии UI не затрагивают.
func (r *Registry) route(ev identity.Event) {
	targets := r.targets(ev)
	if len(targets) == 0 {
		return
	}

	r.logger.Debug("Событие поставщика учётных записей",
		slog.String("type", ev.Type.String()),
		slog.String("user_id", ev.UserID),
		slog.Int("sessions", len(targets)),
	)

	ctx, cancel := context.WithTimeout(r.baseCtx, bootstrapTimeout)
	defer cancel()
	for _, s := range targets {
		s.Apply(ctx, ev)
	}
}

func (r *Registry) targets(ev identity.Event) []*Store {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ev.Type != identity.EventSignedOut {
		if s, ok := r.stores[ev.Origin]; ok && ev.Origin != "" {
			return []*Store{s}
		}
		return nil
	}

	var result []*Store
	for _, s := range r.stores {
		if s.UserID() == ev.UserID {
			result = append(result, s)
		}
	}
	return result
}

// RunJanitor периодически удаляет сессии, неактивные дольше idleTTL.
// Блокируется до отмены ctx.
func (r *Registry) RunJanitor(ctx context.Context) {
	interval := r.idleTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.evictIdle(); n > 0 {
				r.logger.Info("Неактивные сессии удалены", slog.Int("count", n))
			}
		}
	}
}

// evictIdle удаляет неактивные сессии и возвращает их число.
func (r *Registry) evictIdle() int {
	deadline := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for sid, s := range r.stores {
		if s.IdleSince().Before(deadline) {
			delete(r.stores, sid)
			evicted++
		}
	}
	r.active.Sub(float64(evicted))
	return evicted
}

// Shutdown отписывается от событий поставщика.
func (r *Registry) Shutdown() {
	r.unsubscribe()
}
