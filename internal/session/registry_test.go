package session

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/identity"
	"github.com/arjun8815/spinwise-erp/internal/profile"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

// setupRegistry создаёт реестр поверх встроенного поставщика
// и профилей seed-пользователей в памяти.
func setupRegistry(t *testing.T) (*Registry, *identity.Memory) {
	t.Helper()

	provider, err := identity.NewMemory(testLogger())
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}

	repo := repository.NewMemoryProfiles()
	for _, u := range identity.SeedUsers() {
		if err := repo.Create(context.Background(), &model.Profile{
			ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName,
			PreferredLanguage: model.DefaultLanguage, Role: u.Role,
		}); err != nil {
			t.Fatalf("Create profile: %v", err)
		}
	}

	reg := NewRegistry(provider, profile.NewResolver(repo, testLogger()), time.Hour, prometheus.NewRegistry(), testLogger())
	t.Cleanup(reg.Shutdown)
	return reg, provider
}

func waitSettled(t *testing.T, s *Store) {
	t.Helper()
	select {
	case <-s.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("сессия не завершила загрузку")
	}
}

func TestRegistry_OpenBootstrapsInBackground(t *testing.T) {
	reg, provider := setupRegistry(t)
	ctx := context.Background()

	ident, err := provider.Authenticate(ctx, "manager@spinwise.local", "manager123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	s := reg.Open(ident)
	waitSettled(t, s)

	st := s.Snapshot()
	if st.Role() == nil || *st.Role() != rbac.RoleManager {
		t.Errorf("Role() = %v, ожидался manager", st.Role())
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d", reg.Len())
	}
	if got := testutil.ToFloat64(reg.active); got != 1 {
		t.Errorf("sw_sessions_active = %v, ожидалось 1", got)
	}
}

func TestRegistry_RestoreUnknownSID(t *testing.T) {
	reg, provider := setupRegistry(t)
	ident, _ := provider.Authenticate(context.Background(), "admin@spinwise.local", "admin123")

	s := reg.Restore("sid-from-cookie", ident)
	if s.SID() != "sid-from-cookie" {
		t.Errorf("SID() = %q", s.SID())
	}
	waitSettled(t, s)

	st := s.Snapshot()
	if st.Identity == nil || st.Identity.AccessToken == ident.AccessToken {
		t.Errorf("Identity из cookie должна быть заменена токенами после refresh: %+v", st.Identity)
	}

	again := reg.Restore("sid-from-cookie", nil)
	if again != s {
		t.Error("Restore известного SID должен вернуть тот же Store")
	}
}

func TestRegistry_RestoreAfterSignOut(t *testing.T) {
	reg, provider := setupRegistry(t)
	ctx := context.Background()

	ident, err := provider.Authenticate(ctx, "admin@spinwise.local", "admin123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	s := reg.Open(ident)
	waitSettled(t, s)

	if err := provider.SignOut(ctx, ident); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	reg.Close(s.SID())

	// копия cookie, сохранённая до выхода
	restored := reg.Restore(s.SID(), ident)
	waitSettled(t, restored)

	if restored == s {
		t.Fatal("после Close должен создаваться новый Store")
	}
	if restored.Snapshot().SessionPresent() {
		t.Error("сессия не должна восстанавливаться по cookie после выхода")
	}
}

func TestRegistry_SignOutEventRoutedToUserSessions(t *testing.T) {
	reg, provider := setupRegistry(t)
	ctx := context.Background()

	adminA, _ := provider.Authenticate(ctx, "admin@spinwise.local", "admin123")
	adminB, _ := provider.Authenticate(ctx, "admin@spinwise.local", "admin123")
	employee, _ := provider.Authenticate(ctx, "employee@spinwise.local", "employee123")

	a := reg.Open(adminA)
	b := reg.Open(adminB)
	e := reg.Open(employee)
	for _, s := range []*Store{a, b, e} {
		waitSettled(t, s)
	}

	if err := provider.SignOut(ctx, adminA); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	if a.Snapshot().SessionPresent() || b.Snapshot().SessionPresent() {
		t.Error("сессии администратора должны быть завершены")
	}
	if !e.Snapshot().SessionPresent() {
		t.Error("сессия другого пользователя не должна затрагиваться")
	}
}

func TestRegistry_RefreshRoutedToOriginOnly(t *testing.T) {
	reg, provider := setupRegistry(t)
	ctx := context.Background()

	first, _ := provider.Authenticate(ctx, "admin@spinwise.local", "admin123")
	second, _ := provider.Authenticate(ctx, "admin@spinwise.local", "admin123")
	a := reg.Open(first)
	b := reg.Open(second)
	waitSettled(t, a)
	waitSettled(t, b)

	refreshed, err := provider.Refresh(identity.WithOrigin(ctx, a.SID()), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := a.Snapshot().Identity.AccessToken; got != refreshed.AccessToken {
		t.Error("сессия-инициатор должна получить новые токены")
	}
	if got := b.Snapshot().Identity.AccessToken; got != second.AccessToken {
		t.Error("другая сессия пользователя не должна получать чужие токены")
	}

	// Вызов без метки (JSON API) сессии UI не затрагивает.
	if _, err := provider.Refresh(ctx, second.RefreshToken); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := b.Snapshot().Identity.AccessToken; got != second.AccessToken {
		t.Error("обновление без метки не должно менять сессию UI")
	}
}

func TestRegistry_EvictIdle(t *testing.T) {
	reg, _ := setupRegistry(t)

	now := time.Now()
	reg.now = func() time.Time { return now }

	idle := reg.Open(nil)
	fresh := reg.Open(nil)
	waitSettled(t, idle)
	waitSettled(t, fresh)

	idle.lastSeen.Store(now.Add(-2 * time.Hour).UnixNano())
	fresh.lastSeen.Store(now.Add(-time.Minute).UnixNano())

	if n := reg.evictIdle(); n != 1 {
		t.Errorf("evictIdle() = %d, ожидалось 1", n)
	}
	if _, ok := reg.Get(idle.SID()); ok {
		t.Error("неактивная сессия осталась в реестре")
	}
	if _, ok := reg.Get(fresh.SID()); !ok {
		t.Error("активная сессия удалена")
	}
	if got := testutil.ToFloat64(reg.active); got != 1 {
		t.Errorf("sw_sessions_active = %v, ожидалось 1", got)
	}
}

func TestRegistry_Close(t *testing.T) {
	reg, _ := setupRegistry(t)
	s := reg.Open(nil)
	reg.Close(s.SID())
	reg.Close(s.SID())

	if reg.Len() != 0 {
		t.Errorf("Len() = %d после Close", reg.Len())
	}
	if got := testutil.ToFloat64(reg.active); got != 0 {
		t.Errorf("sw_sessions_active = %v после Close", got)
	}
}

func TestRegistry_JanitorStopsOnCancel(t *testing.T) {
	reg, _ := setupRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		reg.RunJanitor(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunJanitor не завершился после отмены контекста")
	}
}
