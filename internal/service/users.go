// Пакет service — бизнес-логика SpinWise.
// users.go — управление пользователями: учётная запись у поставщика
// плюс профиль в собственной базе.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/identity"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

// rollbackTimeout ограничивает удаление учётной записи при откате Create.
const rollbackTimeout = 10 * time.Second

// AccountAdmin — административные операции поставщика учётных записей.
type AccountAdmin interface {
	CreateUser(ctx context.Context, email, password string) (string, error)
	SetPassword(ctx context.Context, userID, password string) error
	DeleteUser(ctx context.Context, userID string) error
}

// CreateUserInput — данные нового пользователя.
type CreateUserInput struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Phone     string `validate:"omitempty,phone"`
	Role      string `validate:"required,role"`
	Language  string `validate:"required,language"`
}

// UpdateUserInput — изменения пользователя (nil — без изменений).
type UpdateUserInput struct {
	FirstName *string `validate:"omitempty,min=1"`
	LastName  *string `validate:"omitempty,min=1"`
	Phone     *string `validate:"omitempty,phone"`
	Role      *string `validate:"omitempty,role"`
	Language  *string `validate:"omitempty,language"`
	// Password — новый пароль (сброс через поставщика)
	Password *string `validate:"omitempty,min=6"`
}

// UserService — сервис управления пользователями.
type UserService struct {
	accounts AccountAdmin
	profiles repository.ProfileRepository
	tx       repository.ProfileTransactor
	logger   *slog.Logger
}

// NewUserService создаёт сервис управления пользователями.
func NewUserService(
	accounts AccountAdmin,
	profiles repository.ProfileRepository,
	tx repository.ProfileTransactor,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		accounts: accounts,
		profiles: profiles,
		tx:       tx,
		logger:   logger.With(slog.String("component", "user_service")),
	}
}

// List возвращает профили, опционально с фильтром по роли.
func (s *UserService) List(ctx context.Context, role string) ([]*model.Profile, error) {
	var filter *rbac.Role
	if role != "" {
		r, err := rbac.ParseRole(role)
		if err != nil {
			return nil, ErrInvalidRole
		}
		filter = &r
	}

	profiles, err := s.profiles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return profiles, nil
}

// Get возвращает профиль пользователя.
func (s *UserService) Get(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "получение пользователя")
	}
	return p, nil
}

// Create создаёт учётную запись у поставщика, затем профиль.
// Если профиль не создан, учётная запись удаляется: повторная попытка
// с тем же email не упирается в конфликт у поставщика.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.Profile, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	userID, err := s.accounts.CreateUser(ctx, in.Email, in.Password)
	if err != nil {
		return nil, mapIdentityError(err)
	}

	p := &model.Profile{
		ID:                userID,
		Email:             in.Email,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		PreferredLanguage: model.Language(in.Language),
		Role:              rbac.Role(in.Role),
	}
	if in.Phone != "" {
		phone := in.Phone
		p.Phone = &phone
	}

	if err := s.profiles.Create(ctx, p); err != nil {
		s.rollbackAccount(ctx, userID, in.Email, err)
		return nil, mapRepoError(err, "создание профиля")
	}

	s.logger.Info("Пользователь создан",
		slog.String("user_id", userID),
		slog.String("role", in.Role),
	)
	return p, nil
}

// rollbackAccount удаляет учётную запись, для которой не создан профиль.
// Выполняется и после отмены запроса.
func (s *UserService) rollbackAccount(ctx context.Context, userID, email string, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := s.accounts.DeleteUser(ctx, userID); err != nil {
		s.logger.Error("Профиль не создан, учётная запись осталась у поставщика",
			slog.String("user_id", userID),
			slog.String("email", email),
			slog.String("cause", cause.Error()),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Warn("Профиль не создан, учётная запись удалена",
		slog.String("user_id", userID),
		slog.String("email", email),
		slog.String("cause", cause.Error()),
	)
}

// Update изменяет профиль и, если задан Password, пароль у поставщика.
// Профиль изменяется в транзакции: ошибка смены пароля откатывает
// изменения профиля.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*model.Profile, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	upd := model.ProfileUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	}
	if in.Role != nil {
		role := rbac.Role(*in.Role)
		upd.Role = &role
	}
	if in.Language != nil {
		lang := model.Language(*in.Language)
		upd.PreferredLanguage = &lang
	}

	var updated *model.Profile
	err := s.tx.WithinTx(ctx, func(repo repository.ProfileRepository) error {
		var err error
		updated, err = repo.Update(ctx, id, upd)
		if err != nil {
			return mapRepoError(err, "обновление профиля")
		}
		if in.Password != nil {
			if err := s.accounts.SetPassword(ctx, id, *in.Password); err != nil {
				return mapIdentityError(err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrValidation) {
			s.logger.Warn("Ошибка обновления пользователя",
				slog.String("user_id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("Пользователь обновлён",
		slog.String("user_id", id),
		slog.Bool("password_reset", in.Password != nil),
	)
	return updated, nil
}

// SetLanguage меняет язык профиля (переключатель языка в UI).
func (s *UserService) SetLanguage(ctx context.Context, id string, lang model.Language) error {
	if !model.IsValidLanguage(string(lang)) {
		return fmt.Errorf("%w: неизвестный язык %q", ErrValidation, lang)
	}
	if _, err := s.profiles.Update(ctx, id, model.ProfileUpdate{PreferredLanguage: &lang}); err != nil {
		return mapRepoError(err, "смена языка")
	}
	return nil
}

// SeedProfiles создаёт профили предустановленных учётных записей.
// Существующие профили не изменяются.
func SeedProfiles(ctx context.Context, profiles repository.ProfileRepository, users []identity.SeedUser, logger *slog.Logger) error {
	created := 0
	for _, u := range users {
		err := profiles.Create(ctx, &model.Profile{
			ID:                u.ID,
			Email:             u.Email,
			FirstName:         u.FirstName,
			LastName:          u.LastName,
			PreferredLanguage: model.DefaultLanguage,
			Role:              u.Role,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, repository.ErrConflict):
		default:
			return fmt.Errorf("создание профиля %s: %w", u.Email, err)
		}
	}

	logger.Info("Профили предустановленных пользователей проверены",
		slog.Int("created", created),
		slog.Int("total", len(users)),
	)
	return nil
}
