package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-groovebox/engine"
	"go-groovebox/synth"
	"go-groovebox/widgets"
)

const (
	seqRowSteps = 16
	pianoKeys24 = 24
	meterWidth  = 20
	volumeWidth = 5
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(m.renderHeader())
	out.WriteString("\n\n")
	out.WriteString(m.renderKeyboard())
	out.WriteString("\n\n")
	out.WriteString(m.renderSequencer())
	out.WriteString("\n\n")
	out.WriteString(m.renderDrums())
	out.WriteString("\n\n")

	if m.status != "" {
		out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.FG()).Render(m.status))
		out.WriteString("\n")
	}
	if m.showHelp {
		out.WriteString(m.renderHelp())
	} else {
		out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Muted()).Render(m.helpLine()))
	}
	return out.String()
}

func (m Model) renderHeader() string {
	s := m.snap
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	scale := "off"
	if m.quant.Active() {
		scale = m.quant.RootName() + " " + m.quant.Scale.Short()
	}

	devices := ""
	if m.launchpad != nil {
		devices += " LP"
	}
	if n := len(m.keyboards); n > 0 {
		devices += fmt.Sprintf(" KB:%d", n)
	}

	title := headerStyle.Render("go-groovebox")
	info := fmt.Sprintf("%3.0fbpm  vol %3.0f%%  %-8s  oct %d  scale %s%s",
		s.Tempo, s.Volume*100, s.Waveform, m.octave, scale, devices)
	meter := widgets.RenderMeter(s.LevelRMS, s.LevelPeak, meterWidth,
		m.Theme.Symbols.MeterFull, m.Theme.Symbols.MeterEmpty, m.Theme.Level(s.LevelPeak))

	return title + "  " + dimStyle.Render(info) + "  " + meter
}

// panelTitle renders a section heading, highlighted when focused
func (m Model) panelTitle(mode Mode, extra string) string {
	style := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	marker := "  "
	if m.mode == mode {
		style = lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)
		marker = "▸ "
	}
	return style.Render(marker+strings.ToUpper(mode.String())) + "  " +
		lipgloss.NewStyle().Foreground(m.Theme.Muted()).Render(extra)
}

func (m Model) renderKeyboard() string {
	s := m.snap
	sym := m.Theme.Symbols

	sounding := make(map[int]bool, len(s.ActiveNotes))
	for _, n := range s.ActiveNotes {
		sounding[int(n)] = true
	}

	base := (m.octave + 1) * 12
	downStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	upStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var keys strings.Builder
	for i := 0; i < pianoKeys24; i++ {
		if sounding[base+i] {
			keys.WriteString(downStyle.Render(string(sym.KeyDown)))
		} else {
			keys.WriteString(upStyle.Render(string(sym.KeyUp)))
		}
	}

	names := make([]string, len(s.ActiveNotes))
	for i, n := range s.ActiveNotes {
		names[i] = synth.NoteName(n)
	}
	notes := "-"
	if len(names) > 0 {
		notes = strings.Join(names, " ")
	}

	extra := fmt.Sprintf("%d voices", s.MelodicVoices)
	return m.panelTitle(ModeKeyboard, extra) + "\n  " + keys.String() + "  " + notes
}

func (m Model) renderSequencer() string {
	s := m.snap
	sym := m.Theme.Symbols
	state := "paused"
	if s.SeqPlaying {
		state = "playing"
	}
	extra := fmt.Sprintf("%s  %d steps", state, len(s.SeqSteps))

	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.BG()).Background(m.Theme.Cursor())
	playStyle := lipgloss.NewStyle().Foreground(m.Theme.Success()).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	restStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var rows []string
	for start := 0; start < len(s.SeqSteps); start += seqRowSteps {
		var row strings.Builder
		row.WriteString("  ")
		for i := start; i < min(start+seqRowSteps, len(s.SeqSteps)); i++ {
			st := s.SeqSteps[i]
			cell := string(sym.StepEmpty)
			if st.Active {
				cell = synth.NoteName(st.Note)
			}
			cell = fmt.Sprintf("%-4s", cell)

			focused := m.mode == ModeSynthSeq && i == m.seqCursor
			switch {
			case focused:
				row.WriteString(cursorStyle.Render(cell))
			case s.SeqPlaying && i == s.SeqCurrent:
				row.WriteString(playStyle.Render(cell))
			case st.Active:
				row.WriteString(noteStyle.Render(cell))
			default:
				row.WriteString(restStyle.Render(cell))
			}
		}
		rows = append(rows, row.String())
	}
	return m.panelTitle(ModeSynthSeq, extra) + "\n" + strings.Join(rows, "\n")
}

func (m Model) renderDrums() string {
	s := m.snap
	state := "stopped"
	if s.DrumPlaying {
		state = "playing"
	}
	extra := fmt.Sprintf("%s  %d steps  %d voices", state, s.DrumLen, s.DrumVoices)

	rows := make([]string, 0, len(s.Tracks))
	for i, t := range s.Tracks {
		rows = append(rows, m.renderTrack(i, t))
	}
	return m.panelTitle(ModeDrums, extra) + "\n" + strings.Join(rows, "\n")
}

func (m Model) renderTrack(i int, t engine.TrackState) string {
	s := m.snap
	sym := m.Theme.Symbols
	color := m.Theme.Track(i, len(s.Tracks))
	selected := m.mode == ModeDrums && i == m.drumTrack

	nameStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	if selected {
		nameStyle = lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)
	}
	hitStyle := lipgloss.NewStyle().Foreground(color)
	if t.Muted {
		hitStyle = lipgloss.NewStyle().Foreground(m.Theme.Muted())
	}
	playStyle := lipgloss.NewStyle().Foreground(m.Theme.Success())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor())

	var b strings.Builder
	b.WriteString(" ")
	if t.Voices > 0 {
		b.WriteString(widgets.RenderPad(color))
	} else {
		b.WriteString(" ")
	}
	b.WriteString(" ")
	b.WriteString(nameStyle.Render(fmt.Sprintf("%-6s", t.Kind)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("[%s] ", DrumKeyFor(t.Kind))))

	for step, on := range t.Steps {
		if step > 0 && step%4 == 0 {
			b.WriteString(" ")
		}
		playing := s.DrumPlaying && step == s.DrumCurrent
		cursor := selected && step == m.drumStep
		switch {
		case cursor && playing:
			b.WriteString(cursorStyle.Render(string(sym.CursorPlayhead)))
		case cursor && on:
			b.WriteString(cursorStyle.Render(string(sym.CursorActive)))
		case cursor:
			b.WriteString(cursorStyle.Render(string(sym.CursorEmpty)))
		case playing:
			b.WriteString(playStyle.Render(string(sym.StepPlayhead)))
		case on:
			b.WriteString(hitStyle.Render(string(sym.StepActive)))
		default:
			b.WriteString(dimStyle.Render(string(sym.StepEmpty)))
		}
	}

	mute := "   "
	if t.Muted {
		mute = " M "
	}
	b.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Warning()).Render(mute))
	b.WriteString(dimStyle.Render(widgets.RenderBar(t.Volume, volumeWidth, sym.MeterFull, sym.MeterEmpty)))
	return b.String()
}

// renderHelp is the full key reference toggled with ?
func (m Model) renderHelp() string {
	sections := []widgets.KeySection{
		{Title: "Global", Keys: []widgets.KeyBinding{
			{Key: "tab / F2", Desc: "cycle focus"},
			{Key: "F1", Desc: "cycle waveform"},
			{Key: "F3", Desc: "drums play/stop"},
			{Key: "F4 / F5", Desc: "scale / root"},
			{Key: "pgup/pgdn", Desc: "tempo ±5"},
			{Key: "ctrl+t", Desc: "reset tempo"},
			{Key: "ctrl+r", Desc: "rewind both sequencers"},
			{Key: "ctrl+s", Desc: "save pattern " + m.project},
			{Key: "ctrl+o", Desc: "load pattern " + m.project},
			{Key: "?", Desc: "close help"},
			{Key: "esc", Desc: "quit"},
		}},
		{Title: "Keyboard", Keys: []widgets.KeyBinding{
			{Key: "z..m s d g h j", Desc: "lower octave"},
			{Key: "q..u 2 3 5 6 7", Desc: "upper octave"},
			{Key: "← →", Desc: "octave"},
			{Key: "↑ ↓", Desc: "volume"},
		}},
		{Title: "Synth Seq", Keys: []widgets.KeyBinding{
			{Key: "note keys", Desc: "write step, advance"},
			{Key: "+ / _", Desc: "transpose step"},
			{Key: "backspace", Desc: "rest"},
			{Key: "space", Desc: "play/pause"},
			{Key: "]", Desc: "8/16/24/32 steps"},
		}},
		{Title: "Drums", Keys: []widgets.KeyBinding{
			{Key: "arrows", Desc: "move cursor"},
			{Key: "space", Desc: "toggle step"},
			{Key: "ctrl+x", Desc: "clear track"},
			{Key: "\\", Desc: "mute track"},
			{Key: "= / -", Desc: "track volume"},
			{Key: "z x c v b n m ,", Desc: "preview"},
		}},
	}
	return lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Surface()).
		Padding(0, 1).
		Render(widgets.RenderKeyHelp(sections))
}

func (m Model) helpLine() string {
	global := []widgets.KeyBinding{
		{Key: "tab", Desc: "focus"},
		{Key: "F1", Desc: "wave"},
		{Key: "F3", Desc: "drums"},
		{Key: "F4/F5", Desc: "scale/root"},
		{Key: "pgup/dn", Desc: "bpm"},
		{Key: "^s/^o", Desc: "save/load"},
		{Key: "?", Desc: "help"},
		{Key: "esc", Desc: "quit"},
	}
	var local []widgets.KeyBinding
	switch m.mode {
	case ModeKeyboard:
		local = []widgets.KeyBinding{
			{Key: "z-/ q-p", Desc: "play"},
			{Key: "←→", Desc: "octave"},
			{Key: "↑↓", Desc: "volume"},
		}
	case ModeSynthSeq:
		local = []widgets.KeyBinding{
			{Key: "keys", Desc: "set note"},
			{Key: "←→", Desc: "cursor"},
			{Key: "space", Desc: "play"},
			{Key: "del", Desc: "clear"},
			{Key: "]", Desc: "length"},
			{Key: "+/_", Desc: "transpose"},
		}
	case ModeDrums:
		local = []widgets.KeyBinding{
			{Key: "z-,", Desc: "preview"},
			{Key: "arrows", Desc: "move"},
			{Key: "space", Desc: "toggle"},
			{Key: "enter", Desc: "play"},
			{Key: "\\", Desc: "mute"},
			{Key: "=/-", Desc: "vol"},
			{Key: "]", Desc: "length"},
		}
	}
	return widgets.RenderKeyLine(local) + "\n" + widgets.RenderKeyLine(global)
}
