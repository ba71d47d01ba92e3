// Package validation はリクエストスキーマの検証を行い、
// フィールド単位の検証エラーをmodel.APIErrorに変換する。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/KC-99/workmatch/internal/model"
)

// InvalidInputMessage は検証エラー時のトップレベルメッセージ。
const InvalidInputMessage = "Invalid input"

// Validator はstructタグに基づいてリクエストを検証する。
type Validator struct {
	v *validator.Validate
}

// New はValidatorを生成する。フィールド名にはjsonタグ名を使用する。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default は共有のValidatorを返す。
func Default() *Validator {
	defaultOnce.Do(func() { defaultValidator = New() })
	return defaultValidator
}

// Struct はsを検証する。違反がある場合はフィールド詳細付きの検証エラーを返す。
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return model.NewValidationError(InvalidInputMessage, fields...)
}

// message はタグごとの利用者向けメッセージを組み立てる。
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		default:
			return "must be at least " + fe.Param()
		}
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}
