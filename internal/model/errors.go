package model

import "fmt"

// エラーカテゴリ。ハンドラーはカテゴリからHTTPステータスを決定する。
const (
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryForbidden  = "forbidden"
	CategoryNotFound   = "not_found"
	CategoryConflict   = "conflict"
)

// FieldError はフィールド単位の検証エラーを表す。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError は統一エラーフォーマットを表す。
type APIError struct {
	Code     string       // エラーコード
	Message  string       // エラーメッセージ
	Category string       // カテゴリ: validation, auth, forbidden, not_found, conflict
	Errors   []FieldError // フィールド単位の詳細（検証エラーのみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput            = "INVALID_INPUT"
	ErrCodeInvalidID               = "INVALID_ID"
	ErrCodeUnauthenticated         = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeUsernameTaken           = "USERNAME_TAKEN"
	ErrCodeEmailTaken              = "EMAIL_TAKEN"
	ErrCodeProfileExists           = "PROFILE_EXISTS"
	ErrCodeAlreadyApplied          = "ALREADY_APPLIED"
	ErrCodeInvalidStatus           = "INVALID_STATUS"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeRateLimited             = "RATE_LIMITED"
	ErrCodeCSRFInvalid             = "CSRF_INVALID"
	ErrCodeInternal                = "INTERNAL_ERROR"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string, fields ...FieldError) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  message,
		Category: CategoryValidation,
		Errors:   fields,
	}
}

// NewInvalidIDError はパスパラメータのID形式エラーを生成する。
func NewInvalidIDError(what string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("Invalid %s ID", what),
		Category: CategoryValidation,
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Not authenticated",
		Category: CategoryAuth,
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレスとパスワードのどちらが誤っているかは区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: CategoryAuth,
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  message,
		Category: CategoryForbidden,
	}
}

// NewNotFoundError は対象エンティティ未検出エラーを生成する。
func NewNotFoundError(what string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%s not found", what),
		Category: CategoryNotFound,
	}
}

// NewConflictError は一意性違反エラーを生成する。
func NewConflictError(code, message string) *APIError {
	return &APIError{
		Code:     code,
		Message:  message,
		Category: CategoryConflict,
	}
}
