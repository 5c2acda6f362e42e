package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/arjun8815/spinwise-erp/internal/domain/guard"
	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/profile"
	"github.com/arjun8815/spinwise-erp/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubResolver возвращает фиксированный результат получения профиля.
type stubResolver struct {
	result profile.Result
}

func (s stubResolver) Resolve(context.Context, string) profile.Result {
	return s.result
}

// noRefresh — Refresher, который не должен вызываться.
type noRefresh struct{}

func (noRefresh) Refresh(context.Context, string) (*model.Identity, error) {
	return nil, errors.New("refresh не ожидался")
}

// stubPages фиксирует показанную служебную страницу.
type stubPages struct {
	waiting bool
	reason  string
}

func (p *stubPages) Waiting(w http.ResponseWriter, _ *http.Request) {
	p.waiting = true
	w.WriteHeader(http.StatusOK)
}

func (p *stubPages) Forbidden(w http.ResponseWriter, _ *http.Request, reasonKey string) {
	p.reason = reasonKey
	w.WriteHeader(http.StatusForbidden)
}

func validIdentity(userID string) *model.Identity {
	return &model.Identity{
		UserID:       userID,
		Email:        userID + "@spinwise.local",
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

// settledStore создаёт Store с завершённой загрузкой.
// seed == nil — сессии нет.
func settledStore(seed *model.Identity, res profile.Result) *session.Store {
	store := session.NewStore("sid-test", seed, stubResolver{result: res}, noRefresh{}, testLogger())
	store.Bootstrap(context.Background())
	return store
}

func withRole(role rbac.Role) profile.Result {
	return profile.Result{
		State:   profile.StateResolved,
		Profile: &model.Profile{ID: "u1", Role: role, PreferredLanguage: model.LanguageEnglish},
	}
}

func TestGuardRequire(t *testing.T) {
	adminOnly := rbac.NewRoleSet(rbac.RoleAdmin)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		policy     guard.NullRolePolicy
		store      func() *session.Store
		path       string
		allowed    rbac.RoleSet
		wantStatus int
		wantLoc    string
		wantReason string
		wantWait   bool
	}{
		{
			name:       "нет сессии — вход с адресом возврата",
			store:      func() *session.Store { return nil },
			path:       "/production?status=idle",
			allowed:    rbac.AnyRole(),
			wantStatus: http.StatusFound,
			wantLoc:    "/auth?from=%2Fproduction%3Fstatus%3Didle",
		},
		{
			name:       "нет сессии на главной — без from",
			store:      func() *session.Store { return nil },
			path:       "/",
			allowed:    rbac.AnyRole(),
			wantStatus: http.StatusFound,
			wantLoc:    "/auth",
		},
		{
			name: "загрузка — страница ожидания",
			store: func() *session.Store {
				return session.NewStore("sid", validIdentity("u1"), stubResolver{}, noRefresh{}, testLogger())
			},
			path:       "/quality",
			allowed:    rbac.AnyRole(),
			wantStatus: http.StatusOK,
			wantWait:   true,
		},
		{
			name:       "роль допущена",
			store:      func() *session.Store { return settledStore(validIdentity("u1"), withRole(rbac.RoleAdmin)) },
			path:       "/users",
			allowed:    adminOnly,
			wantStatus: http.StatusTeapot,
		},
		{
			name:       "роль не допущена — на главную",
			store:      func() *session.Store { return settledStore(validIdentity("u1"), withRole(rbac.RoleEmployee)) },
			path:       "/users",
			allowed:    adminOnly,
			wantStatus: http.StatusFound,
			wantLoc:    "/",
		},
		{
			name:       "роль не допущена к главной — 403 без цикла",
			store:      func() *session.Store { return settledStore(validIdentity("u1"), withRole(rbac.RoleEmployee)) },
			path:       "/",
			allowed:    adminOnly,
			wantStatus: http.StatusForbidden,
			wantReason: ReasonAccessDenied,
		},
		{
			name:       "нет профиля, fail-open",
			policy:     guard.NullRoleAllow,
			store:      func() *session.Store { return settledStore(validIdentity("u1"), profile.Result{State: profile.StateNotFound}) },
			path:       "/users",
			allowed:    adminOnly,
			wantStatus: http.StatusTeapot,
		},
		{
			name:       "нет профиля, fail-closed",
			policy:     guard.NullRoleDeny,
			store:      func() *session.Store { return settledStore(validIdentity("u1"), profile.Result{State: profile.StateFailed}) },
			path:       "/users",
			allowed:    adminOnly,
			wantStatus: http.StatusForbidden,
			wantReason: ReasonProfileUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := &stubPages{}
			g := NewGuard(guard.New(tt.policy), pages, nil, testLogger())

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if store := tt.store(); store != nil {
				req = req.WithContext(WithStore(req.Context(), store))
			}
			rec := httptest.NewRecorder()
			g.Require(tt.allowed)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("статус = %d, ожидалось %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLoc != "" && rec.Header().Get("Location") != tt.wantLoc {
				t.Errorf("Location = %q, ожидалось %q", rec.Header().Get("Location"), tt.wantLoc)
			}
			if pages.reason != tt.wantReason {
				t.Errorf("причина = %q, ожидалось %q", pages.reason, tt.wantReason)
			}
			if pages.waiting != tt.wantWait {
				t.Errorf("страница ожидания = %v, ожидалось %v", pages.waiting, tt.wantWait)
			}
			if tt.wantWait && rec.Header().Get("Cache-Control") != "no-store" {
				t.Errorf("Cache-Control = %q, ожидалось no-store", rec.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestGuardRequire_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := NewGuard(guard.New(guard.NullRoleAllow), &stubPages{}, reg, testLogger())
	handler := g.Require(rbac.AnyRole())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	for range 3 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/quality", nil))
	}

	if got := testutil.ToFloat64(g.outcomes.WithLabelValues(guard.OutcomeSignIn.String())); got != 3 {
		t.Errorf("счётчик решений = %v, ожидалось 3", got)
	}
}
