package sequencer

import "testing"

const testRate = 8000.0

func runMelodic(m *Melodic, samples int) []StepEvent {
	var events []StepEvent
	for i := 0; i < samples; i++ {
		if ev, ok := m.Tick(120); ok {
			events = append(events, ev)
		}
	}
	return events
}

func TestMelodicEvents(t *testing.T) {
	m := NewMelodic(testRate, 8)
	m.SetNote(0, 60)
	m.SetNote(1, 62)
	// step 2 is a rest
	m.SetNote(3, 65)
	m.Start()

	sps := SamplesPerStep(120, testRate)
	events := runMelodic(m, sps*4)
	if len(events) != 4 {
		t.Fatalf("events: got %d, want 4", len(events))
	}

	tests := []struct {
		off, on Step
	}{
		{Step{}, Step{Active: true, Note: 60}},
		{Step{Active: true, Note: 60}, Step{Active: true, Note: 62}},
		{Step{Active: true, Note: 62}, Step{}},
		{Step{}, Step{Active: true, Note: 65}},
	}
	for i, tt := range tests {
		ev := events[i]
		if ev.Step != i {
			t.Errorf("event %d: step %d", i, ev.Step)
		}
		if ev.Off != tt.off || ev.On != tt.on {
			t.Errorf("event %d: off %+v on %+v, want off %+v on %+v", i, ev.Off, ev.On, tt.off, tt.on)
		}
	}
	if m.Held() != (Step{Active: true, Note: 65}) {
		t.Errorf("held: %+v", m.Held())
	}
}

func TestMelodicStopReturnsHeld(t *testing.T) {
	m := NewMelodic(testRate, 16)
	m.SetNote(0, 48)
	m.Start()
	runMelodic(m, 10)

	held := m.Stop()
	if !held.Active || held.Note != 48 {
		t.Fatalf("Stop returned %+v", held)
	}
	if m.Held().Active {
		t.Error("held note not cleared")
	}
	if ev := runMelodic(m, 5000); len(ev) != 0 {
		t.Error("stopped sequencer emitted events")
	}
}

func TestMelodicToggle(t *testing.T) {
	m := NewMelodic(testRate, 16)
	m.SetNote(0, 72)
	if r := m.Toggle(); r.Active || !m.Playing() {
		t.Fatal("toggle should start")
	}
	runMelodic(m, 1)
	if r := m.Toggle(); !r.Active || r.Note != 72 || m.Playing() {
		t.Errorf("toggle should stop and return the held note, got %+v", r)
	}
}

func TestMelodicAdjustNoteClamps(t *testing.T) {
	m := NewMelodic(testRate, 16)
	m.SetNote(0, 126)
	m.AdjustNote(0, 5)
	if got := m.Get(0).Note; got != 127 {
		t.Errorf("up clamp: %d", got)
	}
	m.SetNote(1, 2)
	m.AdjustNote(1, -12)
	if got := m.Get(1).Note; got != 0 {
		t.Errorf("down clamp: %d", got)
	}
	m.AdjustNote(2, 3)
	if m.Get(2).Active {
		t.Error("transposing a rest made it active")
	}
}

func TestMelodicStepsSurviveShrink(t *testing.T) {
	m := NewMelodic(testRate, 32)
	m.SetNote(20, 55)
	m.SetSteps(8)
	if len(m.Steps()) != 8 {
		t.Fatalf("Steps() length %d", len(m.Steps()))
	}
	m.SetSteps(32)
	if st := m.Get(20); !st.Active || st.Note != 55 {
		t.Errorf("note lost after shrink and grow: %+v", st)
	}
}

func TestMelodicOutOfRange(t *testing.T) {
	m := NewMelodic(testRate, 16)
	m.SetNote(-1, 60)
	m.SetNote(MaxSteps, 60)
	m.SetNote(0, 200)
	m.Clear(99)
	for _, st := range m.Steps() {
		if st.Active {
			t.Fatal("out of range write landed in the grid")
		}
	}
	if m.Get(99).Active {
		t.Error("Get out of range returned an active step")
	}
}
