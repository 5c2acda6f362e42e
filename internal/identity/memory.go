// memory.go — встроенный поставщик учётных записей.
// Хранит пользователей в памяти (пароли — bcrypt), подписывает access token
// RS256-ключом, публикует открытый ключ через jwkset.MemoryStorage.
// Засевается тремя пользователями — по одному на роль.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
)

const (
	// MemoryIssuer — issuer токенов встроенного поставщика.
	MemoryIssuer = "urn:spinwise:identity:memory"
	// memoryKeyID — kid ключа подписи.
	memoryKeyID = "spinwise-memory-1"
	// accessTokenTTL — время жизни access token.
	accessTokenTTL = time.Hour
)

// SeedUser — предустановленная учётная запись встроенного поставщика.
type SeedUser struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      rbac.Role
}

// SeedUsers возвращает предустановленные учётные записи.
// Идентификаторы совпадают с засеянными профилями.
func SeedUsers() []SeedUser {
	return []SeedUser{
		{ID: "7f3c1a2e-5b8d-4c1e-9a0f-1d2e3f4a5b01", Email: "admin@spinwise.local", Password: "admin123", FirstName: "Arjun", LastName: "Raman", Role: rbac.RoleAdmin},
		{ID: "7f3c1a2e-5b8d-4c1e-9a0f-1d2e3f4a5b02", Email: "manager@spinwise.local", Password: "manager123", FirstName: "Priya", LastName: "Subramanian", Role: rbac.RoleManager},
		{ID: "7f3c1a2e-5b8d-4c1e-9a0f-1d2e3f4a5b03", Email: "employee@spinwise.local", Password: "employee123", FirstName: "Karthik", LastName: "Velu", Role: rbac.RoleEmployee},
	}
}

// memoryUser — учётная запись в памяти.
type memoryUser struct {
	id        string
	email     string
	hash      []byte
	confirmed bool
}

// memoryClaims — claims access token встроенного поставщика.
type memoryClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Memory — встроенный поставщик учётных записей.
type Memory struct {
	*hub

	mu       sync.Mutex
	byEmail  map[string]*memoryUser
	byID     map[string]*memoryUser
	refresh  map[string]string // refresh token → user ID
	otpCodes map[string]string // email → код подтверждения

	key     *rsa.PrivateKey
	keyfunc keyfunc.Keyfunc
	storage jwkset.Storage

	now    func() time.Time
	logger *slog.Logger
}

// NewMemory создаёт встроенный поставщик и засевает SeedUsers.
func NewMemory(logger *slog.Logger) (*Memory, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("генерация ключа подписи: %w", err)
	}

	ctx := context.Background()
	storage := jwkset.NewMemoryStorage()
	jwk, err := jwkset.NewJWKFromKey(&key.PublicKey, jwkset.JWKOptions{
		Metadata: jwkset.JWKMetadataOptions{
			ALG: jwkset.AlgRS256,
			KID: memoryKeyID,
			USE: jwkset.UseSig,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWK: %w", err)
	}
	if err := storage.KeyWrite(ctx, jwk); err != nil {
		return nil, fmt.Errorf("запись JWK: %w", err)
	}

	kf, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	m := &Memory{
		hub:      newHub(),
		byEmail:  make(map[string]*memoryUser),
		byID:     make(map[string]*memoryUser),
		refresh:  make(map[string]string),
		otpCodes: make(map[string]string),
		key:      key,
		keyfunc:  kf,
		storage:  storage,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "identity_memory")),
	}

	for _, u := range SeedUsers() {
		if err := m.addUser(u.ID, u.Email, u.Password, true); err != nil {
			return nil, err
		}
	}

	m.logger.Info("Встроенный поставщик учётных записей готов",
		slog.Int("users", len(m.byID)),
	)
	return m, nil
}

// addUser добавляет учётную запись. Вызывается без удержания m.mu.
func (m *Memory) addUser(id, email, password string, confirmed bool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("хеширование пароля: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalizeEmail(email)
	if _, exists := m.byEmail[key]; exists {
		return ErrConflict
	}
	u := &memoryUser{id: id, email: key, hash: hash, confirmed: confirmed}
	m.byEmail[key] = u
	m.byID[id] = u
	return nil
}

// Authenticate проверяет email и пароль.
func (m *Memory) Authenticate(ctx context.Context, email, password string) (*model.Identity, error) {
	// hash и confirmed меняются под m.mu (SetPassword, VerifyOTP):
	// копируются под блокировкой, bcrypt выполняется без неё
	m.mu.Lock()
	u, ok := m.byEmail[normalizeEmail(email)]
	var (
		hash      []byte
		confirmed bool
	)
	if ok {
		hash, confirmed = u.hash, u.confirmed
	}
	m.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !confirmed {
		return nil, ErrNotConfirmed
	}

	ident, err := m.issue(u)
	if err != nil {
		return nil, err
	}
	m.publish(ctx, Event{Type: EventSignedIn, UserID: u.id, Identity: ident})
	return ident, nil
}

// SignUp регистрирует пользователя. Запись ожидает подтверждения кодом,
// код пишется в лог (встроенный поставщик не отправляет почту).
func (m *Memory) SignUp(_ context.Context, req SignUpRequest) (string, *model.Identity, error) {
	id := uuid.NewString()
	if err := m.addUser(id, req.Email, req.Password, false); err != nil {
		return "", nil, err
	}

	code, err := otpCode()
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	m.otpCodes[normalizeEmail(req.Email)] = code
	m.mu.Unlock()

	m.logger.Info("Код подтверждения выдан",
		slog.String("email", req.Email),
		slog.String("code", code),
	)
	return id, nil, nil
}

// VerifyOTP подтверждает учётную запись кодом и открывает сессию.
func (m *Memory) VerifyOTP(ctx context.Context, email, code string) (*model.Identity, error) {
	key := normalizeEmail(email)

	m.mu.Lock()
	expected, ok := m.otpCodes[key]
	u := m.byEmail[key]
	if !ok || u == nil || expected != strings.TrimSpace(code) {
		m.mu.Unlock()
		return nil, ErrInvalidCredentials
	}
	delete(m.otpCodes, key)
	u.confirmed = true
	m.mu.Unlock()

	ident, err := m.issue(u)
	if err != nil {
		return nil, err
	}
	m.publish(ctx, Event{Type: EventSignedIn, UserID: u.id, Identity: ident})
	return ident, nil
}

// PendingCode возвращает выданный код подтверждения (для тестов и разработки).
func (m *Memory) PendingCode(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.otpCodes[normalizeEmail(email)]
	return code, ok
}

// Refresh обменивает refresh token на новую пару токенов (ротация).
func (m *Memory) Refresh(ctx context.Context, refreshToken string) (*model.Identity, error) {
	m.mu.Lock()
	userID, ok := m.refresh[refreshToken]
	if ok {
		delete(m.refresh, refreshToken)
	}
	u := m.byID[userID]
	m.mu.Unlock()

	if !ok || u == nil {
		return nil, ErrInvalidCredentials
	}

	ident, err := m.issue(u)
	if err != nil {
		return nil, err
	}
	m.publish(ctx, Event{Type: EventTokenRefreshed, UserID: u.id, Identity: ident})
	return ident, nil
}

// SignOut отзывает refresh token и рассылает EventSignedOut.
func (m *Memory) SignOut(ctx context.Context, ident *model.Identity) error {
	if ident == nil {
		return nil
	}

	m.mu.Lock()
	delete(m.refresh, ident.RefreshToken)
	m.mu.Unlock()

	m.publish(ctx, Event{Type: EventSignedOut, UserID: ident.UserID})
	return nil
}

// CreateUser создаёт подтверждённую учётную запись.
func (m *Memory) CreateUser(_ context.Context, email, password string) (string, error) {
	id := uuid.NewString()
	if err := m.addUser(id, email, password, true); err != nil {
		return "", err
	}
	return id, nil
}

// SetPassword устанавливает новый пароль.
func (m *Memory) SetPassword(_ context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("хеширование пароля: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.hash = hash
	return nil
}

// DeleteUser удаляет учётную запись вместе с её refresh token.
func (m *Memory) DeleteUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[userID]
	if !ok {
		return ErrNotFound
	}
	delete(m.byID, userID)
	delete(m.byEmail, u.email)
	delete(m.otpCodes, u.email)
	for token, id := range m.refresh {
		if id == userID {
			delete(m.refresh, token)
		}
	}
	return nil
}

// Keyfunc возвращает источник открытого ключа подписи.
func (m *Memory) Keyfunc() keyfunc.Keyfunc {
	return m.keyfunc
}

// Issuer возвращает issuer токенов.
func (m *Memory) Issuer() string {
	return MemoryIssuer
}

// JWKS возвращает открытый набор ключей в формате JSON.
func (m *Memory) JWKS(ctx context.Context) ([]byte, error) {
	raw, err := m.storage.JSONPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("сериализация JWKS: %w", err)
	}
	return raw, nil
}

// issue выпускает access token (RS256) и refresh token.
func (m *Memory) issue(u *memoryUser) (*model.Identity, error) {
	now := m.now()
	expiresAt := now.Add(accessTokenTTL)

	claims := memoryClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    MemoryIssuer,
			Subject:   u.id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Email: u.email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = memoryKeyID

	signed, err := token.SignedString(m.key)
	if err != nil {
		return nil, fmt.Errorf("подпись токена: %w", err)
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.refresh[refresh] = u.id
	m.mu.Unlock()

	return &model.Identity{
		UserID:       u.id,
		Email:        u.email,
		AccessToken:  signed,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// normalizeEmail приводит email к ключу поиска.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// randomToken генерирует непрозрачный refresh token.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("генерация refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// otpCode генерирует шестизначный код подтверждения.
func otpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("генерация кода: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
