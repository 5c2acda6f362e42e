// auth.go — вход, регистрация и выход пользователей.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/identity"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

// SignInInput — данные формы входа.
type SignInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// SignUpInput — данные формы регистрации.
type SignUpInput struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
}

// VerifyInput — данные формы подтверждения кодом.
type VerifyInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,len=6,numeric"`
}

// SignUpResult — результат регистрации.
type SignUpResult struct {
	UserID string
	// Identity — открытая сессия; nil, если требуется подтверждение кодом
	Identity *model.Identity
}

// PendingVerification — регистрация ожидает подтверждения кодом.
func (r *SignUpResult) PendingVerification() bool {
	return r.Identity == nil
}

// AuthService — сервис аутентификации.
type AuthService struct {
	provider identity.Provider
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(provider identity.Provider, profiles repository.ProfileRepository, logger *slog.Logger) *AuthService {
	return &AuthService{
		provider: provider,
		profiles: profiles,
		logger:   logger.With(slog.String("component", "auth_service")),
	}
}

// SignIn входит по email и паролю.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*model.Identity, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	ident, err := s.provider.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		s.logger.Info("Неудачный вход",
			slog.String("email", in.Email),
			slog.String("error", err.Error()),
		)
		return nil, mapIdentityError(err)
	}

	s.logger.Info("Пользователь вошёл", slog.String("user_id", ident.UserID))
	return ident, nil
}

// SignUp регистрирует пользователя и создаёт профиль с языком
// по умолчанию и ролью employee.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	userID, ident, err := s.provider.SignUp(ctx, identity.SignUpRequest{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		return nil, mapIdentityError(err)
	}

	err = s.profiles.Create(ctx, &model.Profile{
		ID:                userID,
		Email:             in.Email,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		PreferredLanguage: model.DefaultLanguage,
		Role:              rbac.RoleEmployee,
	})
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		// Без профиля пользователь остаётся с неизвестной ролью
		// до вмешательства администратора.
		s.logger.Error("Ошибка создания профиля при регистрации",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("Пользователь зарегистрирован",
		slog.String("user_id", userID),
		slog.Bool("pending_verification", ident == nil),
	)
	return &SignUpResult{UserID: userID, Identity: ident}, nil
}

// Verify подтверждает регистрацию кодом и открывает сессию.
func (s *AuthService) Verify(ctx context.Context, in VerifyInput) (*model.Identity, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Code = strings.TrimSpace(in.Code)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	ident, err := s.provider.VerifyOTP(ctx, in.Email, in.Code)
	if err != nil {
		return nil, mapIdentityError(err)
	}
	return ident, nil
}

// Refresh обновляет токены.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.Identity, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}
	ident, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, mapIdentityError(err)
	}
	return ident, nil
}

// SignOut завершает сессию у поставщика. Ошибка поставщика
// логируется: локальная сессия закрывается в любом случае.
func (s *AuthService) SignOut(ctx context.Context, ident *model.Identity) {
	if ident == nil {
		return
	}
	if err := s.provider.SignOut(ctx, ident); err != nil {
		s.logger.Warn("Ошибка выхода у поставщика",
			slog.String("user_id", ident.UserID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Info("Пользователь вышел", slog.String("user_id", ident.UserID))
}
