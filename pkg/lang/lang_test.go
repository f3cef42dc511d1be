package lang

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"pt-br", "pt-br"},
		{"pt-BR", "pt-br"},
		{"PT_BR", "pt-br"},
		{" en ", "en"},
		{"", ""},
		{"not a tag!!", "not a tag!!"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatch(t *testing.T) {
	if !Match("pt-br", "pt-BR") {
		t.Error("expected case-insensitive match for equal tags")
	}
	if Match("en", "pt-br") {
		t.Error("different tags must not match")
	}
	if Match("en", "") {
		t.Error("empty content tag must not match a real preference")
	}
}
