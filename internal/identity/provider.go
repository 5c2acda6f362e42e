// Пакет identity — внешний поставщик учётных записей SpinWise.
// Provider аутентифицирует пользователей, выдаёт и обновляет токены,
// создаёт учётные записи по запросу администратора и сообщает
// подписчикам об изменении состояния аутентификации.
// Реализации: Memory (встроенный mock с тремя пользователями)
// и Keycloak (OIDC + Admin REST API).
package identity

import (
	"context"
	"errors"

	"github.com/MicahParks/keyfunc/v3"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

// Ошибки поставщика.
var (
	// ErrInvalidCredentials — неверный email/пароль, код или refresh token.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrNotConfirmed — учётная запись ожидает подтверждения кодом.
	ErrNotConfirmed = errors.New("учётная запись не подтверждена")
	// ErrConflict — пользователь с таким email уже существует.
	ErrConflict = errors.New("пользователь уже существует")
	// ErrNotFound — пользователь не найден.
	ErrNotFound = errors.New("пользователь не найден")
	// ErrUnsupported — операция не поддерживается поставщиком.
	ErrUnsupported = errors.New("операция не поддерживается")
	// ErrUnavailable — поставщик недоступен.
	ErrUnavailable = errors.New("поставщик учётных записей недоступен")
)

// SignUpRequest — данные самостоятельной регистрации.
type SignUpRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Provider — поставщик учётных записей.
type Provider interface {
	// Authenticate проверяет email и пароль и открывает сессию.
	Authenticate(ctx context.Context, email, password string) (*model.Identity, error)
	// SignUp создаёт учётную запись. Возвращает nil Identity без ошибки,
	// если запись требует подтверждения кодом (VerifyOTP).
	SignUp(ctx context.Context, req SignUpRequest) (string, *model.Identity, error)
	// VerifyOTP подтверждает учётную запись одноразовым кодом.
	VerifyOTP(ctx context.Context, email, code string) (*model.Identity, error)
	// Refresh выдаёт новую пару токенов по refresh token.
	Refresh(ctx context.Context, refreshToken string) (*model.Identity, error)
	// SignOut завершает сессию.
	SignOut(ctx context.Context, identity *model.Identity) error
	// CreateUser создаёт учётную запись (администратор). Возвращает ID пользователя.
	CreateUser(ctx context.Context, email, password string) (string, error)
	// SetPassword устанавливает новый пароль (администратор).
	SetPassword(ctx context.Context, userID, password string) error
	// DeleteUser удаляет учётную запись (администратор).
	DeleteUser(ctx context.Context, userID string) error
	// Subscribe подписывает fn на события аутентификации.
	// Возвращает функцию отписки.
	Subscribe(fn func(Event)) (unsubscribe func())
	// Keyfunc возвращает источник ключей для проверки access token.
	Keyfunc() keyfunc.Keyfunc
	// Issuer возвращает ожидаемый issuer access token.
	Issuer() string
}
