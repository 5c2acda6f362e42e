package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

// failingRepo — репозиторий, всегда возвращающий ошибку чтения.
type failingRepo struct {
	repository.ProfileRepository
	err error
}

func (f *failingRepo) GetByID(context.Context, string) (*model.Profile, error) {
	return nil, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolve_States(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryProfiles()
	_ = mem.Create(ctx, &model.Profile{
		ID: "u1", Email: "m@spinwise.local", FirstName: "Priya",
		PreferredLanguage: model.LanguageTamil, Role: rbac.RoleManager,
	})
	dbErr := errors.New("connection refused")

	tests := []struct {
		name      string
		repo      repository.ProfileRepository
		userID    string
		wantState State
		wantRole  *rbac.Role
	}{
		{"профиль найден", mem, "u1", StateResolved, ptr(rbac.RoleManager)},
		{"профиля нет", mem, "u2", StateNotFound, nil},
		{"ошибка чтения", &failingRepo{err: dbErr}, "u1", StateFailed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewResolver(tt.repo, testLogger()).Resolve(ctx, tt.userID)
			if res.State != tt.wantState {
				t.Fatalf("State = %v, ожидалось %v", res.State, tt.wantState)
			}
			got := res.Role()
			switch {
			case tt.wantRole == nil && got != nil:
				t.Errorf("Role() = %q, ожидался nil", *got)
			case tt.wantRole != nil && (got == nil || *got != *tt.wantRole):
				t.Errorf("Role() = %v, ожидался %q", got, *tt.wantRole)
			}
		})
	}
}

func TestResolve_FailedKeepsCause(t *testing.T) {
	dbErr := errors.New("timeout")
	res := NewResolver(&failingRepo{err: dbErr}, testLogger()).Resolve(context.Background(), "u1")
	if !errors.Is(res.Err, dbErr) {
		t.Errorf("Err = %v, ожидалась исходная ошибка", res.Err)
	}
	if res.Profile != nil {
		t.Error("Profile должен быть nil при ошибке")
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateResolved: "resolved",
		StateNotFound: "not_found",
		StateFailed:   "failed",
		State(42):     "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, ожидалось %q", s, got, want)
		}
	}
}

func ptr(r rbac.Role) *rbac.Role { return &r }
