// Пакет model — доменные модели SpinWise.
package model

import (
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
)

// Language — языковая настройка пользователя.
type Language string

// Поддерживаемые языки интерфейса.
const (
	LanguageEnglish Language = "english"
	LanguageTamil   Language = "tamil"
	LanguageTelugu  Language = "telugu"
	LanguageHindi   Language = "hindi"
	LanguageKannada Language = "kannada"
)

// DefaultLanguage — язык по умолчанию (новые профили, отсутствие cookie).
const DefaultLanguage = LanguageEnglish

// AllLanguages возвращает поддерживаемые языки в порядке вывода в UI.
func AllLanguages() []Language {
	return []Language{LanguageEnglish, LanguageTamil, LanguageTelugu, LanguageHindi, LanguageKannada}
}

// IsValidLanguage проверяет, поддерживается ли язык.
func IsValidLanguage(lang string) bool {
	for _, l := range AllLanguages() {
		if string(l) == lang {
			return true
		}
	}
	return false
}

// Identity — результат успешной аутентификации.
// Принадлежит хранилищу сессий, остальные компоненты только читают её.
type Identity struct {
	// UserID — идентификатор пользователя у провайдера (sub)
	UserID string
	// Email — адрес электронной почты
	Email string
	// AccessToken — непрозрачный токен доступа
	AccessToken string
	// RefreshToken — токен обновления (может быть пустым)
	RefreshToken string
	// ExpiresAt — время истечения AccessToken
	ExpiresAt time.Time
}

// Expired сообщает, истёк ли токен (с буфером 30 секунд на refresh).
func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt.Add(-30*time.Second))
}

// Profile — авторизационная запись пользователя (роль, язык).
// Хранится в таблице profiles.
type Profile struct {
	// ID — совпадает с Identity.UserID
	ID string
	// Email — адрес электронной почты (для списков администратора)
	Email string
	// FirstName — имя
	FirstName string
	// LastName — фамилия
	LastName string
	// Phone — телефон (опционально)
	Phone *string
	// PreferredLanguage — язык интерфейса
	PreferredLanguage Language
	// Role — роль пользователя
	Role rbac.Role
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// FullName возвращает «Имя Фамилия».
func (p *Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// ProfileUpdate — изменяемые администратором поля профиля.
// nil — поле не меняется.
type ProfileUpdate struct {
	FirstName         *string
	LastName          *string
	Phone             *string
	PreferredLanguage *Language
	Role              *rbac.Role
}
