// Пакет config — загрузка и валидация конфигурации SpinWise
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Режимы хранилища данных.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Провайдеры идентификации.
const (
	IdentityMemory   = "memory"
	IdentityKeycloak = "keycloak"
)

// Политики guard для сессии без профиля.
const (
	NullRoleOpen   = "open"
	NullRoleClosed = "closed"
)

// Config содержит все параметры конфигурации SpinWise.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Хранилище ---

	// Режим хранилища: memory или postgres
	Storage string
	// Засеять демонстрационные данные (только для memory)
	SeedData bool

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Максимальный размер пула подключений
	DBMaxConns int
	// Сколько ждать доступности PostgreSQL при старте
	DBStartupWait time.Duration

	// --- Провайдер идентификации ---

	// memory или keycloak
	IdentityProvider string

	// URL Keycloak (например, https://keycloak.mill.lan)
	KeycloakURL string
	// Имя realm в Keycloak
	KeycloakRealm string
	// Client ID (password grant + Admin API)
	KeycloakClientID string
	// Client Secret
	KeycloakClientSecret string

	// --- JWT ---

	// Issuer JWT (авто-вычисляется из KeycloakURL, если не задан)
	JWTIssuer string
	// URL JWKS endpoint (авто-вычисляется из KeycloakURL, если не задан)
	JWTJWKSURL string
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Интервал обновления JWKS
	JWKSRefreshInterval time.Duration

	// --- Сессии UI ---

	// Ключ шифрования cookie (пустой — случайный при старте)
	SessionSecret string
	// Сколько ждать завершения загрузки сессии перед показом страницы ожидания
	SessionSettle time.Duration
	// TTL неактивной сессии в реестре
	SessionIdleTTL time.Duration
	// Secure flag для cookie
	SecureCookies bool
	// Поведение guard при сессии без профиля: open или closed
	GuardNullRole string

	// --- Фоновые задачи ---

	// Интервал SSE-обновлений dashboard
	SSEInterval time.Duration
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Группа в метриках topologymetrics
	DephealthGroup string
	// Таймаут исходящих HTTP-запросов
	HTTPClientTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// SW_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("SW_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("SW_PORT: %w", err)
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SW_PORT: значение %d вне допустимого диапазона 1024-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SW_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SW_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("SW_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SW_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Хранилище ---

	cfg.Storage = getEnvDefault("SW_STORAGE", StorageMemory)
	if cfg.Storage != StorageMemory && cfg.Storage != StoragePostgres {
		return nil, fmt.Errorf("SW_STORAGE: недопустимое значение %q, допустимые: memory, postgres", cfg.Storage)
	}

	cfg.SeedData, err = getEnvBool("SW_SEED_DATA", true)
	if err != nil {
		return nil, fmt.Errorf("SW_SEED_DATA: %w", err)
	}

	if cfg.Storage == StoragePostgres {
		if err := loadDatabase(cfg); err != nil {
			return nil, err
		}
	}

	// --- Провайдер идентификации ---

	cfg.IdentityProvider = getEnvDefault("SW_IDENTITY_PROVIDER", IdentityMemory)
	switch cfg.IdentityProvider {
	case IdentityMemory:
	case IdentityKeycloak:
		if err := loadKeycloak(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("SW_IDENTITY_PROVIDER: недопустимое значение %q, допустимые: memory, keycloak", cfg.IdentityProvider)
	}

	// --- JWT ---

	cfg.JWTLeeway, err = getEnvDuration("SW_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SW_JWT_LEEWAY: %w", err)
	}

	cfg.JWKSRefreshInterval, err = getEnvDuration("SW_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SW_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// --- Сессии UI ---

	cfg.SessionSecret = getEnvDefault("SW_SESSION_SECRET", "")

	cfg.SessionSettle, err = getEnvDuration("SW_SESSION_SETTLE", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SW_SESSION_SETTLE: %w", err)
	}

	cfg.SessionIdleTTL, err = getEnvDuration("SW_SESSION_IDLE_TTL", 12*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("SW_SESSION_IDLE_TTL: %w", err)
	}

	cfg.SecureCookies, err = getEnvBool("SW_SECURE_COOKIES", false)
	if err != nil {
		return nil, fmt.Errorf("SW_SECURE_COOKIES: %w", err)
	}

	cfg.GuardNullRole = getEnvDefault("SW_GUARD_NULL_ROLE", NullRoleOpen)
	if cfg.GuardNullRole != NullRoleOpen && cfg.GuardNullRole != NullRoleClosed {
		return nil, fmt.Errorf("SW_GUARD_NULL_ROLE: недопустимое значение %q, допустимые: open, closed", cfg.GuardNullRole)
	}

	// --- Фоновые задачи ---

	cfg.SSEInterval, err = getEnvDuration("SW_SSE_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SW_SSE_INTERVAL: %w", err)
	}

	cfg.DephealthCheckInterval, err = getEnvDuration("SW_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SW_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	cfg.DephealthGroup = getEnvDefault("SW_DEPHEALTH_GROUP", "spinwise")

	cfg.HTTPClientTimeout, err = getEnvDuration("SW_HTTP_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SW_HTTP_CLIENT_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("SW_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SW_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// loadDatabase читает параметры PostgreSQL (обязательны в режиме postgres).
func loadDatabase(cfg *Config) error {
	var err error

	if cfg.DBHost, err = getEnvRequired("SW_DB_HOST"); err != nil {
		return err
	}

	cfg.DBPort, err = getEnvInt("SW_DB_PORT", 5432)
	if err != nil {
		return fmt.Errorf("SW_DB_PORT: %w", err)
	}

	if cfg.DBName, err = getEnvRequired("SW_DB_NAME"); err != nil {
		return err
	}
	if cfg.DBUser, err = getEnvRequired("SW_DB_USER"); err != nil {
		return err
	}
	if cfg.DBPassword, err = getEnvRequired("SW_DB_PASSWORD"); err != nil {
		return err
	}

	cfg.DBSSLMode = getEnvDefault("SW_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return fmt.Errorf("SW_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	cfg.DBMaxConns, err = getEnvInt("SW_DB_MAX_CONNS", 10)
	if err != nil {
		return fmt.Errorf("SW_DB_MAX_CONNS: %w", err)
	}
	if cfg.DBMaxConns < 1 {
		return fmt.Errorf("SW_DB_MAX_CONNS: значение должно быть больше 0")
	}

	cfg.DBStartupWait, err = getEnvDuration("SW_DB_STARTUP_WAIT", 30*time.Second)
	if err != nil {
		return fmt.Errorf("SW_DB_STARTUP_WAIT: %w", err)
	}
	return nil
}

// loadKeycloak читает параметры Keycloak и вычисляет JWT issuer/JWKS URL.
func loadKeycloak(cfg *Config) error {
	var err error

	cfg.KeycloakURL, err = getEnvRequired("SW_KEYCLOAK_URL")
	if err != nil {
		return err
	}
	cfg.KeycloakURL = strings.TrimRight(cfg.KeycloakURL, "/")

	cfg.KeycloakRealm = getEnvDefault("SW_KEYCLOAK_REALM", "spinwise")

	if cfg.KeycloakClientID, err = getEnvRequired("SW_KEYCLOAK_CLIENT_ID"); err != nil {
		return err
	}
	if cfg.KeycloakClientSecret, err = getEnvRequired("SW_KEYCLOAK_CLIENT_SECRET"); err != nil {
		return err
	}

	cfg.JWTIssuer = getEnvDefault("SW_JWT_ISSUER",
		fmt.Sprintf("%s/realms/%s", cfg.KeycloakURL, cfg.KeycloakRealm))
	cfg.JWTJWKSURL = getEnvDefault("SW_JWT_JWKS_URL",
		fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", cfg.KeycloakURL, cfg.KeycloakRealm))
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL (для golang-migrate и меток topologymetrics).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает bool из переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное логическое значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
