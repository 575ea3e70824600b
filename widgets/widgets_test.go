package widgets

import (
	"strings"
	"testing"
)

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value float64
		width int
		want  string
	}{
		{0, 4, "----"},
		{1, 4, "####"},
		{0.5, 4, "##--"},
		{2, 3, "###"},
		{-1, 3, "---"},
		{0.5, 0, ""},
	}
	for _, tt := range tests {
		if got := RenderBar(tt.value, tt.width, '#', '-'); got != tt.want {
			t.Errorf("RenderBar(%v, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
	}
}

func TestRenderKeyLine(t *testing.T) {
	got := RenderKeyLine([]KeyBinding{{Key: "tab", Desc: "focus"}, {Key: "esc", Desc: "quit"}})
	if got != "tab:focus  esc:quit" {
		t.Errorf("RenderKeyLine = %q", got)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	got := RenderKeyHelp([]KeySection{{Title: "Global", Keys: []KeyBinding{{Key: "F1", Desc: "waveform"}}}})
	lines := strings.Split(got, "\n")
	if len(lines) != 2 || lines[0] != "Global" || !strings.Contains(lines[1], "waveform") {
		t.Errorf("RenderKeyHelp = %q", got)
	}
}
