package security

import (
	"strings"
	"testing"
)

// TestSanitize_PlainTextUnchanged はマークアップを含まないテキストが変更されないことを検証する。
func TestSanitize_PlainTextUnchanged(t *testing.T) {
	s := NewTextSanitizer()

	inputs := []string{
		"Fix leaks & drips in 3 bathrooms",
		"We're a small team",
		"",
		"5 > 3",
		"pay < 20/hr, remote team",
		"a <3 b",
	}
	for _, in := range inputs {
		if got := s.Sanitize(in); got != in {
			t.Errorf("Sanitize(%q) = %q, want unchanged", in, got)
		}
	}
}

// TestSanitize_RemovesDangerousMarkup は危険なタグと属性が除去されることを検証する。
func TestSanitize_RemovesDangerousMarkup(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name       string
		input      string
		wantAbsent []string
		wantKept   []string
	}{
		{
			name:       "scriptタグが除去される",
			input:      "<p>Hello</p><script>alert(1)</script>",
			wantAbsent: []string{"<script", "alert(1)"},
			wantKept:   []string{"<p>Hello</p>"},
		},
		{
			name:       "イベント属性が除去される",
			input:      `<p onclick="steal()">Click</p>`,
			wantAbsent: []string{"onclick", "steal"},
			wantKept:   []string{"Click"},
		},
		{
			name:       "iframeが除去される",
			input:      `<iframe src="https://evil.example"></iframe>Text`,
			wantAbsent: []string{"<iframe"},
			wantKept:   []string{"Text"},
		},
		{
			name:       "javascriptスキームのリンクが除去される",
			input:      `<a href="javascript:alert(1)">x</a>`,
			wantAbsent: []string{"javascript:"},
		},
		{
			name:       "書式タグは保持される",
			input:      "<ul><li><strong>Fast</strong></li><li><em>Reliable</em></li></ul>",
			wantKept:   []string{"<ul>", "<li>", "<strong>Fast</strong>", "<em>Reliable</em>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, absent)
				}
			}
			for _, kept := range tt.wantKept {
				if !strings.Contains(got, kept) {
					t.Errorf("Sanitize(%q) = %q, should contain %q", tt.input, got, kept)
				}
			}
		})
	}
}

// TestSanitize_LinksGetNoReferrer は外部リンクにrel属性が付与されることを検証する。
func TestSanitize_LinksGetNoReferrer(t *testing.T) {
	got := NewTextSanitizer().Sanitize(`<a href="https://example.com/portfolio">Portfolio</a>`)
	if !strings.Contains(got, "noreferrer") || !strings.Contains(got, `target="_blank"`) {
		t.Errorf("Sanitize() = %q", got)
	}
}

func TestSanitizePtr(t *testing.T) {
	s := NewTextSanitizer()
	if s.SanitizePtr(nil) != nil {
		t.Error("nil should stay nil")
	}
	in := "<b>bold</b> text"
	got := s.SanitizePtr(&in)
	if got == nil || strings.Contains(*got, "<b>") {
		t.Errorf("SanitizePtr = %v", got)
	}
}
