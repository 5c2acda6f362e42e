// Пакет profile — получение профиля пользователя по ID учётной записи.
// Результат различает три состояния: профиль найден, профиля нет,
// ошибка чтения. Для guard оба последних означают «роль неизвестна».
package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

// State — состояние результата.
type State int

const (
	// StateResolved — профиль получен.
	StateResolved State = iota
	// StateNotFound — у учётной записи нет профиля.
	StateNotFound
	// StateFailed — профиль не удалось прочитать.
	StateFailed
)

// String возвращает имя состояния (для логов и API).
func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateNotFound:
		return "not_found"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result — результат Resolve.
type Result struct {
	State   State
	Profile *model.Profile
	// Err — причина для StateFailed
	Err error
}

// Role возвращает роль профиля или nil, если профиля нет.
func (r Result) Role() *rbac.Role {
	if r.State != StateResolved || r.Profile == nil {
		return nil
	}
	role := r.Profile.Role
	return &role
}

// Resolver читает профили из репозитория.
type Resolver struct {
	repo   repository.ProfileRepository
	logger *slog.Logger
}

// NewResolver создаёт Resolver.
func NewResolver(repo repository.ProfileRepository, logger *slog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger.With(slog.String("component", "profile_resolver")),
	}
}

// Resolve возвращает профиль пользователя. Ошибки не возвращаются:
// они логируются и отражаются в Result.State.
func (r *Resolver) Resolve(ctx context.Context, userID string) Result {
	p, err := r.repo.GetByID(ctx, userID)
	switch {
	case err == nil:
		return Result{State: StateResolved, Profile: p}
	case errors.Is(err, repository.ErrNotFound):
		r.logger.Warn("Профиль не найден",
			slog.String("user_id", userID),
		)
		return Result{State: StateNotFound}
	default:
		r.logger.Warn("Ошибка получения профиля",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return Result{State: StateFailed, Err: err}
	}
}
