package profile

import (
	"strings"

	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/security"
)

// CreateWorkerInput はworkerプロフィール作成のリクエスト。
// rating/reviewCountは受け付けない。
type CreateWorkerInput struct {
	Title        string   `json:"title" validate:"required"`
	Skills       []string `json:"skills" validate:"required,min=1,dive,required"`
	Experience   *string  `json:"experience"`
	HourlyRate   int      `json:"hourlyRate" validate:"min=1"`
	Availability string   `json:"availability" validate:"required"`
	Location     *string  `json:"location"`
	Image        *string  `json:"image"`
}

// UpdateWorkerInput はworkerプロフィールの部分更新リクエスト。nilのフィールドは変更しない。
type UpdateWorkerInput struct {
	Title        *string   `json:"title" validate:"omitempty,min=1"`
	Skills       *[]string `json:"skills" validate:"omitempty,min=1,dive,required"`
	Experience   *string   `json:"experience"`
	HourlyRate   *int      `json:"hourlyRate" validate:"omitempty,min=1"`
	Availability *string   `json:"availability" validate:"omitempty,min=1"`
	Location     *string   `json:"location"`
	Image        *string   `json:"image"`
}

// CreateEmployerInput はemployerプロフィール作成のリクエスト。
type CreateEmployerInput struct {
	CompanyName        string  `json:"companyName" validate:"required"`
	CompanySize        *string `json:"companySize"`
	Industry           string  `json:"industry" validate:"required"`
	CompanyDescription *string `json:"companyDescription"`
	Location           *string `json:"location"`
}

// UpdateEmployerInput はemployerプロフィールの部分更新リクエスト。
type UpdateEmployerInput struct {
	CompanyName        *string `json:"companyName" validate:"omitempty,min=1"`
	CompanySize        *string `json:"companySize"`
	Industry           *string `json:"industry" validate:"omitempty,min=1"`
	CompanyDescription *string `json:"companyDescription"`
	Location           *string `json:"location"`
}

// optional は空白のみの任意項目をnilとして扱う。
// 部分更新では空文字列は「変更なし」と同じ扱いになる。
func optional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// checkImage は画像URLを検証する。
func checkImage(image *string) error {
	if image == nil {
		return nil
	}
	if err := security.ValidateImageURL(*image); err != nil {
		return model.NewValidationError("Invalid input", model.FieldError{
			Field:   "image",
			Message: "must be a public http(s) URL",
		})
	}
	return nil
}

// matchesQuery はqが空、またはいずれかの値に大文字小文字を無視して部分一致するかを返す。
func matchesQuery(q string, values ...string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}
