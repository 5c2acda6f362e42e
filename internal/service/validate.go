// validate.go — валидация входных данных форм и запросов API.
package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
)

// minPhoneDigits — минимальное число цифр в номере телефона.
const minPhoneDigits = 10

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	_ = validate.RegisterValidation("phone", validatePhone)
	_ = validate.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return model.IsValidLanguage(fl.Field().String())
	})
	_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return rbac.IsValidRole(fl.Field().String())
	})
	_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.IsValidCategory(fl.Field().String())
	})
}

// validatePhone: не менее minPhoneDigits цифр; допускаются пробелы,
// дефисы, скобки и ведущий «+».
func validatePhone(fl validator.FieldLevel) bool {
	digits := 0
	for i, r := range fl.Field().String() {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0, r == ' ', r == '-', r == '(', r == ')':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits
}

// validateStruct проверяет структуру и возвращает ErrValidation
// с перечнем полей.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", lowerFirst(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: некорректные поля: %s", ErrValidation, strings.Join(fields, ", "))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
