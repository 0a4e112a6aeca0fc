package encoding

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello World", "Hello World"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"less than", "a < b", "a &lt; b"},
		{"greater than", "a > b", "a &gt; b"},
		{"quotes", `He said "hello"`, "He said &quot;hello&quot;"},
		{"html tag", "<script>alert('xss')</script>", "&lt;script&gt;alert('xss')&lt;/script&gt;"},
		{"unicode", "日本語 & émoji 🎉", "日本語 &amp; émoji 🎉"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeHTML(tt.input)
			if got != tt.want {
				t.Errorf("EscapeHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello World", "Hello World"},
		{"backslash", `path\to\file`, `path\textbackslash{}to\textbackslash{}file`},
		{"braces", "{curly}", `\{curly\}`},
		{"dollar", "price $100", `price \$100`},
		{"percent", "100% complete", `100\% complete`},
		{"ampersand", "Tom & Jerry", `Tom \& Jerry`},
		{"hash", "#1 best", `\#1 best`},
		{"underscore", "var_name", `var\_name`},
		{"caret", "x^2", `x\^{}2`},
		{"tilde", "~user", `\~{}user`},
		{"multiple", `$100 & {test}`, `\$100 \& \{test\}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeLaTeX(tt.input)
			if got != tt.want {
				t.Errorf("EscapeLaTeX(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEmphasisHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no emphasis", "plain heading", "plain heading"},
		{"whole string", "_passim_", "<em>passim</em>"},
		{"single rune", "_x_", "<em>x</em>"},
		{"mid sentence", "see _this_ here", "see <em>this</em> here"},
		{"before punctuation", "read _me_, please", "read <em>me</em>, please"},
		{"inside parens", "(_sic_)", "(<em>sic</em>)"},
		{"snake_case untouched", "parse_mark_body", "parse_mark_body"},
		{"adjacent runs", "_a_ _b_", "<em>a</em> <em>b</em>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EmphasisHTML(tt.input)
			if got != tt.want {
				t.Errorf("EmphasisHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextLaTeX(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no emphasis", "plain heading", "plain heading"},
		{"whole string", "_passim_", `\emph{passim}`},
		{"mid sentence", "see _this_ here", `see \emph{this} here`},
		{"adjacent runs", "_a_ _b_", `\emph{a} \emph{b}`},
		{"snake_case escaped", "parse_mark_body", `parse\_mark\_body`},
		{"specials around emphasis", "AT&T _rocks_ 100%", `AT\&T \emph{rocks} 100\%`},
		{"specials inside emphasis", "_Q&A_", `\emph{Q\&A}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TextLaTeX(tt.input)
			if got != tt.want {
				t.Errorf("TextLaTeX(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripEmphasis(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no emphasis", "plain heading", "plain heading"},
		{"whole string", "_Linux_", "Linux"},
		{"mid sentence", "the _QMK_ firmware", "the QMK firmware"},
		{"snake_case untouched", "parse_mark_body", "parse_mark_body"},
		{"adjacent runs", "_a_ _b_", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripEmphasis(tt.input)
			if got != tt.want {
				t.Errorf("StripEmphasis(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
