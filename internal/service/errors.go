// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"

	"github.com/arjun8815/spinwise-erp/internal/identity"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrInvalidRole — некорректная роль.
	ErrInvalidRole = errors.New("некорректная роль: допустимые значения — admin, manager, employee")
	// ErrIDPUnavailable — поставщик учётных записей недоступен.
	ErrIDPUnavailable = errors.New("поставщик учётных записей недоступен")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrUnauthorized — неверный email, пароль, код или refresh token.
	ErrUnauthorized = errors.New("неверные учётные данные")
	// ErrNotConfirmed — учётная запись ожидает подтверждения кодом.
	ErrNotConfirmed = errors.New("учётная запись не подтверждена")
	// ErrUnsupported — операция не поддерживается поставщиком.
	ErrUnsupported = errors.New("операция не поддерживается")
)

// mapIdentityError переводит ошибки поставщика учётных записей в ошибки сервиса.
func mapIdentityError(err error) error {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return ErrUnauthorized
	case errors.Is(err, identity.ErrNotConfirmed):
		return ErrNotConfirmed
	case errors.Is(err, identity.ErrConflict):
		return ErrConflict
	case errors.Is(err, identity.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, identity.ErrUnsupported):
		return ErrUnsupported
	default:
		return fmt.Errorf("%w: %v", ErrIDPUnavailable, err)
	}
}

// mapRepoError переводит ошибки репозитория в ошибки сервиса.
func mapRepoError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
