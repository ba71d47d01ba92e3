// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は利用者が入力する自由記述（求人の説明、会社紹介、職務経歴、カバーレター）から
// 危険なマークアップを除去する。bluemondayの許可リストポリシーで、
// 簡単な書式タグのみを通過させる。
package security

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer は自由記述テキストのサニタイズ機能のインターフェース。
type Sanitizer interface {
	// Sanitize は危険なタグ・属性を除去したテキストを返す。
	// マークアップを含まない入力はそのまま返す。
	Sanitize(text string) string
	// SanitizePtr はnil許容フィールド用のSanitize。nilはnilのまま返す。
	SanitizePtr(text *string) *string
}

// TextSanitizer はSanitizerの実装。ポリシーはスレッドセーフに共有できる。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
// 許可タグ: p, br, ul, ol, li, strong, em, a(href)。
// script, iframe, styleおよびon*イベント属性は除去される。
func NewTextSanitizer() *TextSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "ul", "ol", "li", "strong", "em")

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("https", "http", "mailto")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &TextSanitizer{policy: p}
}

// markupPattern はタグ・コメント・宣言の開始と解釈される並び。
// "pay < 20/hr" のような比較記号だけのテキストには一致しない。
var markupPattern = regexp.MustCompile(`<[A-Za-z!/?]`)

// Sanitize は自由記述テキストをサニタイズする。
// マークアップを含まないテキストはエスケープせずそのまま返す。
func (s *TextSanitizer) Sanitize(text string) string {
	if !markupPattern.MatchString(text) {
		return text
	}
	return strings.TrimSpace(s.policy.Sanitize(text))
}

// SanitizePtr はnil許容フィールド用のSanitize。
func (s *TextSanitizer) SanitizePtr(text *string) *string {
	if text == nil {
		return nil
	}
	v := s.Sanitize(*text)
	return &v
}

// compile-time interface check
var _ Sanitizer = (*TextSanitizer)(nil)
