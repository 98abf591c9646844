package validators

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxPayerLength максимальная длина имени плательщика
const MaxPayerLength = 128

// Validator проверка входящих моделей по тегам validate
type Validator struct {
	validate *validator.Validate
}

// New создаёт валидатор с зарегистрированным тегом payer
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// ошибка возможна только при пустом имени тега
	_ = v.RegisterValidation("payer", func(fl validator.FieldLevel) bool {
		return CheckPayer(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct проверяет структуру, возвращает validator.ValidationErrors при нарушениях
func (v *Validator) Struct(s any) error {
	return v.validate.Struct(s)
}

// CheckPayer проверяет имя плательщика: непустое, без управляющих символов, ограниченной длины
func CheckPayer(payer string) bool {
	if strings.TrimSpace(payer) == "" || len(payer) > MaxPayerLength {
		return false
	}
	for _, r := range payer {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Details переводит ошибки валидации в пары поле - описание
func Details(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		details[e.Field()] = fmt.Sprintf("Field validation failed on '%s' tag", e.Tag())
	}
	return details
}
