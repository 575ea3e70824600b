package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPad renders a single colored pad
func RenderPad(color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render("■")
}

// RenderBar draws value (0-1) as a horizontal bar of width cells
func RenderBar(value float64, width int, full, empty rune) string {
	if width <= 0 {
		return ""
	}
	value = min(max(value, 0), 1)
	n := int(value*float64(width) + 0.5)
	return strings.Repeat(string(full), n) + strings.Repeat(string(empty), width-n)
}

// RenderMeter draws a level bar with the RMS portion in color and the gap up
// to the peak marked with a tick
func RenderMeter(rms, peak float64, width int, full, empty rune, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	rms = min(max(rms, 0), 1)
	peak = min(max(peak, rms), 1)
	filled := int(rms*float64(width) + 0.5)
	peakAt := min(int(peak*float64(width)), width-1)

	var b strings.Builder
	style := lipgloss.NewStyle().Foreground(color)
	b.WriteString(style.Render(strings.Repeat(string(full), filled)))
	for i := filled; i < width; i++ {
		if i == peakAt && peak > 0 {
			b.WriteString(style.Render("|"))
			continue
		}
		b.WriteRune(empty)
	}
	return b.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderKeyLine formats key bindings on one line: "key:desc  key:desc"
func RenderKeyLine(keys []KeyBinding) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Key + ":" + k.Desc
	}
	return strings.Join(parts, "  ")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
