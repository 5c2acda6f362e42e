// keycloak.go — поставщик учётных записей поверх Keycloak.
// Вход — password grant confidential client'а, обновление — refresh_token grant,
// администрирование — Admin REST API. Ключи проверки access token
// загружаются из JWKS realm с фоновым обновлением.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/keycloak"
)

// KeycloakConfig — параметры поставщика Keycloak.
type KeycloakConfig struct {
	// Issuer — ожидаемый issuer (URL realm)
	Issuer string
	// JWKSURL — URL набора ключей realm
	JWKSURL string
	// JWKSRefreshInterval — интервал обновления ключей
	JWKSRefreshInterval time.Duration
	// HTTPClient — клиент для загрузки JWKS
	HTTPClient *http.Client
}

// Keycloak — поставщик учётных записей Keycloak.
type Keycloak struct {
	*hub

	client  *keycloak.Client
	keyfunc keyfunc.Keyfunc
	issuer  string
	now     func() time.Time
	logger  *slog.Logger
}

// NewKeycloak создаёт поставщик. JWKS загружается в фоне:
// старт не блокируется недоступностью Keycloak.
func NewKeycloak(client *keycloak.Client, cfg KeycloakConfig, logger *slog.Logger) (*Keycloak, error) {
	logger = logger.With(slog.String("component", "identity_keycloak"))

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	storage, err := jwkset.NewStorageFromHTTP(cfg.JWKSURL, jwkset.HTTPClientStorageOptions{
		Client:                    httpClient,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           cfg.JWKSRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", cfg.JWKSURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	kf, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return newKeycloakWithKeyfunc(client, kf, cfg.Issuer, logger), nil
}

// newKeycloakWithKeyfunc создаёт поставщик с готовой keyfunc.
func newKeycloakWithKeyfunc(client *keycloak.Client, kf keyfunc.Keyfunc, issuer string, logger *slog.Logger) *Keycloak {
	return &Keycloak{
		hub:     newHub(),
		client:  client,
		keyfunc: kf,
		issuer:  issuer,
		now:     time.Now,
		logger:  logger,
	}
}

// Authenticate входит по email и паролю.
func (k *Keycloak) Authenticate(ctx context.Context, email, password string) (*model.Identity, error) {
	tok, err := k.client.PasswordGrant(ctx, email, password)
	if err != nil {
		return nil, k.mapError("вход", err)
	}

	ident, err := k.identityFromToken(ctx, tok)
	if err != nil {
		return nil, err
	}
	k.publish(ctx, Event{Type: EventSignedIn, UserID: ident.UserID, Identity: ident})
	return ident, nil
}

// SignUp создаёт пользователя через Admin API и сразу входит.
// Подтверждение кодом Keycloak не использует.
func (k *Keycloak) SignUp(ctx context.Context, req SignUpRequest) (string, *model.Identity, error) {
	id, err := k.client.CreateUser(ctx, req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		return "", nil, k.mapError("регистрация", err)
	}

	ident, err := k.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return id, nil, err
	}
	return id, ident, nil
}

// VerifyOTP не поддерживается: Keycloak подтверждает email своими средствами.
func (k *Keycloak) VerifyOTP(context.Context, string, string) (*model.Identity, error) {
	return nil, ErrUnsupported
}

// Refresh обновляет токены.
func (k *Keycloak) Refresh(ctx context.Context, refreshToken string) (*model.Identity, error) {
	tok, err := k.client.RefreshTokens(ctx, refreshToken)
	if err != nil {
		return nil, k.mapError("обновление токена", err)
	}

	ident, err := k.identityFromToken(ctx, tok)
	if err != nil {
		return nil, err
	}
	k.publish(ctx, Event{Type: EventTokenRefreshed, UserID: ident.UserID, Identity: ident})
	return ident, nil
}

// SignOut завершает сессию Keycloak. EventSignedOut рассылается
// даже при ошибке logout: локальная сессия закрывается в любом случае.
func (k *Keycloak) SignOut(ctx context.Context, ident *model.Identity) error {
	if ident == nil {
		return nil
	}

	var err error
	if ident.RefreshToken != "" {
		err = k.client.Logout(ctx, ident.RefreshToken)
		if err != nil {
			k.logger.Warn("Ошибка logout в Keycloak",
				slog.String("user_id", ident.UserID),
				slog.String("error", err.Error()),
			)
		}
	}

	k.publish(ctx, Event{Type: EventSignedOut, UserID: ident.UserID})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// CreateUser создаёт пользователя (администратор).
func (k *Keycloak) CreateUser(ctx context.Context, email, password string) (string, error) {
	id, err := k.client.CreateUser(ctx, email, "", "", password)
	if err != nil {
		return "", k.mapError("создание пользователя", err)
	}
	return id, nil
}

// SetPassword меняет пароль пользователя (администратор).
func (k *Keycloak) SetPassword(ctx context.Context, userID, password string) error {
	if err := k.client.ResetPassword(ctx, userID, password); err != nil {
		return k.mapError("смена пароля", err)
	}
	return nil
}

// DeleteUser удаляет пользователя (администратор).
func (k *Keycloak) DeleteUser(ctx context.Context, userID string) error {
	if err := k.client.DeleteUser(ctx, userID); err != nil {
		return k.mapError("удаление пользователя", err)
	}
	return nil
}

// Keyfunc возвращает источник ключей JWKS realm.
func (k *Keycloak) Keyfunc() keyfunc.Keyfunc {
	return k.keyfunc
}

// Issuer возвращает URL realm.
func (k *Keycloak) Issuer() string {
	return k.issuer
}

// identityFromToken собирает Identity из ответа token endpoint и userinfo.
func (k *Keycloak) identityFromToken(ctx context.Context, tok *keycloak.TokenResponse) (*model.Identity, error) {
	info, err := k.client.UserInfo(ctx, tok.AccessToken)
	if err != nil {
		return nil, k.mapError("userinfo", err)
	}

	return &model.Identity{
		UserID:       info.Subject,
		Email:        info.Email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    k.now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}

// mapError переводит ошибки клиента Keycloak в ошибки поставщика.
func (k *Keycloak) mapError(op string, err error) error {
	switch {
	case errors.Is(err, keycloak.ErrInvalidGrant):
		return ErrInvalidCredentials
	case errors.Is(err, keycloak.ErrUserExists):
		return ErrConflict
	case errors.Is(err, keycloak.ErrUserNotFound):
		return ErrNotFound
	}

	k.logger.Error("Ошибка Keycloak",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
