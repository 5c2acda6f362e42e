// Пакет keycloak — HTTP-клиент к Keycloak (OIDC token endpoint и Admin REST API).
// models.go — модели данных Keycloak.
package keycloak

import "errors"

// Ошибки клиента, которые вызывающий код различает через errors.Is.
var (
	// ErrInvalidGrant — неверные учётные данные или истёкший refresh token.
	ErrInvalidGrant = errors.New("keycloak: invalid_grant")
	// ErrUserExists — пользователь с таким username/email уже существует.
	ErrUserExists = errors.New("keycloak: пользователь уже существует")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("keycloak: пользователь не найден")
)

// TokenResponse — ответ token endpoint (client_credentials, password, refresh_token).
type TokenResponse struct {
	AccessToken      string `json:"access_token"`  //nolint:gosec // G117: структура токена OAuth2
	RefreshToken     string `json:"refresh_token"` //nolint:gosec // G117: структура токена OAuth2
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	IDToken          string `json:"id_token,omitempty"`
}

// TokenError — ошибка от token endpoint Keycloak.
type TokenError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// UserInfo — ответ userinfo endpoint.
type UserInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// KeycloakUser — пользователь в Keycloak.
type KeycloakUser struct { //nolint:revive // stuttering допустим — внешний API Keycloak
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Enabled       bool   `json:"enabled"`
	CreatedAt     int64  `json:"createdTimestamp"`
	EmailVerified bool   `json:"emailVerified"`
}

// Credential — учётные данные пользователя (пароль).
type Credential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// userCreateRequest — запрос на создание пользователя в Keycloak.
// Используется внутренне; поля соответствуют Keycloak Admin REST API.
type userCreateRequest struct {
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	FirstName     string       `json:"firstName,omitempty"`
	LastName      string       `json:"lastName,omitempty"`
	Enabled       bool         `json:"enabled"`
	EmailVerified bool         `json:"emailVerified"`
	Credentials   []Credential `json:"credentials,omitempty"`
}
