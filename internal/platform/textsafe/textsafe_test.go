package textsafe

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Reservation already cancelled", want: "Reservation already cancelled"},
		{name: "markup stripped", in: "<b>Too late</b> to cancel<script>alert(1)</script>", want: "Too late to cancel"},
		{name: "entities kept readable", in: "Can't cancel & refund", want: "Can't cancel & refund"},
		{name: "whitespace collapsed", in: "  line one\n\tline two  ", want: "line one line two"},
		{name: "null bytes removed", in: "bad\x00input", want: "badinput"},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in, 0); got != tt.want {
				t.Fatalf("Clean(%q)=%q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_Truncates(t *testing.T) {
	t.Parallel()

	got := Clean(strings.Repeat("a", 500), 20)
	if n := utf8.RuneCountInString(got); n != 20 {
		t.Fatalf("rune count=%d, want 20 (%q)", n, got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
}
