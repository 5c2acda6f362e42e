// cookie.go — зашифрованный cookie сессии UI (AES-256-GCM).
// Cookie хранит токены и SID: после рестарта процесса Store
// восстанавливается из него без повторного входа.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

// CookieName — имя cookie сессии.
const CookieName = "spinwise_session"

// CookieMaxAge — максимальный возраст cookie (7 дней).
const CookieMaxAge = 7 * 24 * 60 * 60

// CookieData — содержимое cookie сессии.
type CookieData struct {
	SID          string `json:"sid"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt — истечение access token (Unix timestamp)
	ExpiresAt int64 `json:"expires_at"`
}

// NewCookieData собирает содержимое cookie из Identity.
func NewCookieData(sid string, ident *model.Identity) *CookieData {
	return &CookieData{
		SID:          sid,
		UserID:       ident.UserID,
		Email:        ident.Email,
		AccessToken:  ident.AccessToken,
		RefreshToken: ident.RefreshToken,
		ExpiresAt:    ident.ExpiresAt.Unix(),
	}
}

// Identity восстанавливает Identity из cookie.
func (d *CookieData) Identity() *model.Identity {
	return &model.Identity{
		UserID:       d.UserID,
		Email:        d.Email,
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		ExpiresAt:    time.Unix(d.ExpiresAt, 0),
	}
}

// CookieCodec шифрует CookieData и управляет cookie в ответе.
type CookieCodec struct {
	gcm    cipher.AEAD
	secure bool
}

// NewCookieCodec создаёт кодек. key — base64 32 байт или произвольная
// строка (хешируется SHA-256). Пустой key — случайный ключ: сессии
// не переживают рестарт.
func NewCookieCodec(key string, secure bool) (*CookieCodec, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			sum := sha256.Sum256([]byte(key))
			keyBytes = sum[:]
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &CookieCodec{gcm: gcm, secure: secure}, nil
}

// Encrypt шифрует CookieData в base64-строку.
func (c *CookieCodec) Encrypt(data *CookieData) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	return base64.URLEncoding.EncodeToString(c.gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

// Decrypt расшифровывает base64-строку в CookieData.
func (c *CookieCodec) Decrypt(encrypted string) (*CookieData, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}

	var data CookieData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}
	if data.SID == "" {
		return nil, errors.New("в cookie сессии нет SID")
	}
	return &data, nil
}

// Write устанавливает cookie сессии.
func (c *CookieCodec) Write(w http.ResponseWriter, data *CookieData) error {
	encrypted, err := c.Encrypt(data)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read читает cookie сессии. nil, nil — cookie нет.
func (c *CookieCodec) Read(r *http.Request) (*CookieData, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	return c.Decrypt(cookie.Value)
}

// Clear удаляет cookie сессии.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
