// Пакет session — состояние сессии пользователя UI.
// Store хранит Identity и профиль одной сессии браузера и единолично
// их изменяет. Registry создаёт Store, доставляет им события
// поставщика учётных записей и удаляет неактивные.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/identity"
	"github.com/arjun8815/spinwise-erp/internal/profile"
)

// ProfileResolver получает профиль по ID учётной записи.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID string) profile.Result
}

// Refresher обновляет токены по refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*model.Identity, error)
}

// State — снимок состояния сессии.
type State struct {
	Identity     *model.Identity
	Profile      *model.Profile
	ProfileState profile.State
	// Loading — первичная загрузка ещё не завершена
	Loading bool
}

// SessionPresent — есть ли текущая Identity.
func (s State) SessionPresent() bool {
	return s.Identity != nil
}

// Role возвращает роль профиля или nil.
func (s State) Role() *rbac.Role {
	if s.Profile == nil {
		return nil
	}
	role := s.Profile.Role
	return &role
}

// Language возвращает язык профиля или пустую строку.
func (s State) Language() model.Language {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.PreferredLanguage
}

// Store — состояние одной сессии.
type Store struct {
	sid       string
	resolver  ProfileResolver
	refresher Refresher
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	state State
	// seed — Identity из cookie, используется только Bootstrap
	seed *model.Identity
	// revalidate — seed прочитан из cookie неизвестной сессии и должен
	// быть подтверждён поставщиком (refresh) до установки
	revalidate bool
	// userID — последний известный пользователь (и после SignOut)
	userID string
	// gen увеличивается при каждой смене Identity: результат Resolve
	// для устаревшей Identity отбрасывается
	gen uint64

	bootOnce   sync.Once
	settleOnce sync.Once
	settled    chan struct{}
	lastSeen   atomic.Int64
}

// NewStore создаёт Store в состоянии загрузки.
// seed — Identity из cookie (nil — сессии нет).
func NewStore(sid string, seed *model.Identity, resolver ProfileResolver, refresher Refresher, logger *slog.Logger) *Store {
	s := &Store{
		sid:       sid,
		resolver:  resolver,
		refresher: refresher,
		logger:    logger.With(slog.String("sid", sid)),
		now:       time.Now,
		state:     State{Loading: true, ProfileState: profile.StateNotFound},
		seed:      seed,
		settled:   make(chan struct{}),
	}
	if seed != nil {
		s.userID = seed.UserID
	}
	s.Touch()
	return s
}

// SID возвращает идентификатор сессии.
func (s *Store) SID() string {
	return s.sid
}

// UserID возвращает пользователя сессии (в том числе до завершения
// загрузки и после выхода).
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Snapshot возвращает копию текущего состояния.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Settled закрывается после завершения первичной загрузки.
func (s *Store) Settled() <-chan struct{} {
	return s.settled
}

// Touch отмечает обращение к сессии.
func (s *Store) Touch() {
	s.lastSeen.Store(s.now().UnixNano())
}

// IdleSince возвращает время последнего обращения.
func (s *Store) IdleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Bootstrap выполняет первичную загрузку: восстанавливает Identity
// из seed, затем получает профиль. Истёкший access token, как и любой
// seed, требующий подтверждения, обменивается на новый через refresh:
// после выхода refresh token отозван и сессия не восстанавливается.
// Выполняется один раз. После возврата Loading=false навсегда.
func (s *Store) Bootstrap(ctx context.Context) {
	s.bootOnce.Do(func() {
		defer s.finishLoading()

		s.mu.Lock()
		ident := s.seed
		revalidate := s.revalidate
		s.seed = nil
		s.mu.Unlock()

		if ident == nil {
			return
		}

		if revalidate || ident.Expired(s.now()) {
			if ident.RefreshToken == "" {
				s.logger.Info("Сессия не подтверждена, refresh token отсутствует",
					slog.String("user_id", ident.UserID),
				)
				return
			}
			// без метки SID: событие обновления не возвращается в этот Store
			refreshed, err := s.refresher.Refresh(ctx, ident.RefreshToken)
			if err != nil {
				s.logger.Warn("Не удалось обновить токены сессии",
					slog.String("user_id", ident.UserID),
					slog.String("error", err.Error()),
				)
				return
			}
			ident = refreshed
		}

		s.setIdentity(ctx, ident)
	})
}

// finishLoading снимает флаг загрузки и закрывает Settled.
func (s *Store) finishLoading() {
	s.settleOnce.Do(func() {
		s.mu.Lock()
		s.state.Loading = false
		s.mu.Unlock()
		close(s.settled)
	})
}

// Apply применяет событие поставщика учётных записей.
func (s *Store) Apply(ctx context.Context, ev identity.Event) {
	switch ev.Type {
	case identity.EventSignedIn, identity.EventTokenRefreshed:
		if ev.Identity != nil {
			s.setIdentity(ctx, ev.Identity)
		}
	case identity.EventSignedOut:
		s.SignOut()
	}
}

// setIdentity устанавливает Identity и затем получает профиль.
// Профиль запрашивается строго после появления Identity.
func (s *Store) setIdentity(ctx context.Context, ident *model.Identity) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.userID = ident.UserID
	s.state.Identity = ident
	// профиль прежней Identity остаётся до получения нового
	if s.state.Profile != nil && s.state.Profile.ID != ident.UserID {
		s.state.Profile = nil
		s.state.ProfileState = profile.StateNotFound
	}
	s.mu.Unlock()

	res := s.resolver.Resolve(ctx, ident.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.state.Profile = res.Profile
	s.state.ProfileState = res.State
}

// SignOut сбрасывает Identity и профиль. Флаг Loading не меняется.
func (s *Store) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.seed = nil
	s.state.Identity = nil
	s.state.Profile = nil
	s.state.ProfileState = profile.StateNotFound
}

// RefreshProfile повторно получает профиль текущей Identity
// (после изменения профиля пользователем или администратором).
func (s *Store) RefreshProfile(ctx context.Context) {
	s.mu.RLock()
	ident := s.state.Identity
	s.mu.RUnlock()

	if ident != nil {
		s.setIdentity(ctx, ident)
	}
}
