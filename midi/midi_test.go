package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestParseNote(t *testing.T) {
	tests := []struct {
		name string
		msg  gomidi.Message
		ok   bool
		want NoteEvent
	}{
		{"note on", gomidi.NoteOn(0, 60, 100), true, NoteEvent{Note: 60, Velocity: 100, On: true}},
		{"note on channel 10", gomidi.NoteOn(9, 36, 127), true, NoteEvent{Note: 36, Velocity: 127, Channel: 9, On: true}},
		{"note off", gomidi.NoteOff(2, 64), true, NoteEvent{Note: 64, Channel: 2}},
		{"zero velocity note on", gomidi.NoteOn(0, 61, 0), true, NoteEvent{Note: 61}},
		{"control change", gomidi.ControlChange(0, 7, 100), false, NoteEvent{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNote(tt.msg)
			if ok != tt.ok || got != tt.want {
				t.Errorf("got %+v %v, want %+v %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNoteEventGain(t *testing.T) {
	if g := (NoteEvent{Velocity: 127}).Gain(); g != 1 {
		t.Errorf("full velocity gain %f", g)
	}
	if g := (NoteEvent{}).Gain(); g != 0 {
		t.Errorf("zero velocity gain %f", g)
	}
}

func TestKeyboardChannelFilter(t *testing.T) {
	kb, err := NewKeyboardController("test", nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	kb.handle(gomidi.NoteOn(0, 60, 90), 0)
	kb.handle(gomidi.NoteOn(2, 62, 90), 0)
	kb.handle(gomidi.ControlChange(2, 1, 64), 0)

	select {
	case ev := <-kb.NoteEvents():
		if ev.Note != 62 || !ev.On {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("channel 3 note was dropped")
	}
	select {
	case ev := <-kb.NoteEvents():
		t.Errorf("filtered note leaked: %+v", ev)
	default:
	}
}

func TestKeyboardOmni(t *testing.T) {
	kb, _ := NewKeyboardController("omni", nil, 0)
	for ch := uint8(0); ch < 16; ch++ {
		kb.handle(gomidi.NoteOff(ch, 40), 0)
	}
	if n := len(kb.NoteEvents()); n != 16 {
		t.Errorf("omni keyboard queued %d events, want 16", n)
	}
}

func TestLaunchpadNoteMapping(t *testing.T) {
	for row := 0; row <= TopRow; row++ {
		for col := 0; col <= SideCol; col++ {
			if row == TopRow && col == SideCol {
				continue
			}
			r, c := noteToRowCol(rowColToNote(row, col))
			if r != row || c != col {
				t.Errorf("(%d,%d) round-tripped to (%d,%d)", row, col, r, c)
			}
		}
	}
	if r, c := noteToRowCol(5); r != -1 || c != -1 {
		t.Errorf("note 5 mapped to (%d,%d)", r, c)
	}
	if r, c := ccToRowCol(95); r != TopRow || c != 4 {
		t.Errorf("cc 95 mapped to (%d,%d)", r, c)
	}
}

func TestPages(t *testing.T) {
	tests := map[int]int{0: 1, 8: 1, 16: 2, 24: 3, 32: 4}
	for length, want := range tests {
		if got := Pages(length); got != want {
			t.Errorf("Pages(%d) = %d, want %d", length, got, want)
		}
	}
}

func TestResolvePad(t *testing.T) {
	st := GridState{Length: 24, Page: 1}
	tests := []struct {
		name      string
		row, col  int
		action    PadAction
		track, st int
	}{
		{"transport", TopRow, TransportCol, PadTransport, 0, 0},
		{"page 2", TopRow, 2, PadSelectPage, 0, 2},
		{"page past length", TopRow, 3, PadNone, 0, 0},
		{"mute kick", 7, SideCol, PadToggleMute, 0, 0},
		{"mute high tom", 0, SideCol, PadToggleMute, 7, 0},
		{"kick step on page 1", 7, 0, PadToggleStep, 0, 8},
		{"snare last step", 6, 7, PadToggleStep, 1, 15},
		{"outside grid", 9, 0, PadNone, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, track, step := ResolvePad(tt.row, tt.col, st)
			if action != tt.action || track != tt.track || step != tt.st {
				t.Errorf("got %d/%d/%d, want %d/%d/%d", action, track, step, tt.action, tt.track, tt.st)
			}
		})
	}

	short := GridState{Length: 8, Page: 1}
	if action, _, _ := ResolvePad(7, 0, short); action != PadNone {
		t.Error("step past the loop length resolved")
	}
}

func TestGridUpdates(t *testing.T) {
	st := GridState{Length: 16, Current: 2, Playing: true}
	st.Steps[0] = make([]bool, 16)
	st.Steps[0][0] = true
	st.Steps[1] = make([]bool, 16)
	st.Steps[1][4] = true
	st.Muted[1] = true

	ups := GridUpdates(st)
	if len(ups) != GridTracks*(GridSteps+1)+GridSteps {
		t.Fatalf("update count %d", len(ups))
	}

	at := func(row, col int) [3]uint8 {
		for _, u := range ups {
			if u.Row == row && u.Col == col {
				return u.Color
			}
		}
		t.Fatalf("no update for (%d,%d)", row, col)
		return padOff
	}

	if at(TrackRow(0), 0) != trackColors[0] {
		t.Error("kick step 0 not lit")
	}
	if at(TrackRow(0), 2) != padPlayhead {
		t.Error("playhead missing")
	}
	if at(TrackRow(1), 4) != dim(trackColors[1]) {
		t.Error("muted step not dimmed")
	}
	if at(TrackRow(1), SideCol) != padMuted || at(TrackRow(0), SideCol) != padUnmuted {
		t.Error("mute column wrong")
	}
	if at(TopRow, 0) != padPageSel || at(TopRow, 1) != padPage || at(TopRow, 2) != padOff {
		t.Error("page row wrong")
	}
	if at(TopRow, TransportCol) != padPlayhead {
		t.Error("transport pad not showing play")
	}
}

func TestDiffUpdates(t *testing.T) {
	st := GridState{Length: 16}
	prev := GridUpdates(st)
	if d := DiffUpdates(prev, GridUpdates(st)); len(d) != 0 {
		t.Errorf("identical state produced %d updates", len(d))
	}

	st.Steps[3] = make([]bool, 16)
	st.Steps[3][5] = true
	d := DiffUpdates(prev, GridUpdates(st))
	if len(d) != 1 || d[0].Row != TrackRow(3) || d[0].Col != 5 {
		t.Errorf("diff = %+v", d)
	}

	if d := DiffUpdates(nil, prev); len(d) != len(prev) {
		t.Error("first diff should send everything")
	}
}
