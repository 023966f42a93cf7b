package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/via/internal/core"
)

func TestRenderScreen(t *testing.T) {
	s := core.NewScreen(12, 3)
	s.DrawText(0, 0, "hello")
	s.DrawTextColored(0, 1, "red", core.ColorRed)
	s.SetColored(11, 2, '*', core.ColorHighlight)

	out := RenderScreen(s)
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("got %d line breaks, want 2", n)
	}
	for _, want := range []string{"hello", "red", "*"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestCenterText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"ab", 6, "  ab"},
		{"abc", 6, " abc"},
		{"toolong", 3, "toolong"},
		{"", 4, "  "},
	}
	for _, tt := range tests {
		if got := centerText(tt.text, tt.width); got != tt.want {
			t.Errorf("centerText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}
