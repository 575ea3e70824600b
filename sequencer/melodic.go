package sequencer

// Step is one melodic slot; inactive steps are rests
type Step struct {
	Active bool
	Note   uint8
}

// StepEvent is emitted at each step onset. Off carries the note the
// sequencer was holding, On the note of the new step.
type StepEvent struct {
	Step int
	Off  Step
	On   Step
}

// Melodic is the monophonic step sequencer driving the voice pool
type Melodic struct {
	steps [MaxSteps]Step
	clock Clock
	held  Step // note-on we emitted and have not yet stopped
}

// NewMelodic creates a stopped sequencer with all rests
func NewMelodic(sampleRate float64, steps int) *Melodic {
	return &Melodic{clock: NewClock(sampleRate, steps)}
}

// Tick advances one sample at bpm and returns an event on step onsets
func (m *Melodic) Tick(bpm float64) (StepEvent, bool) {
	step, onset := m.clock.Tick(bpm)
	if !onset {
		return StepEvent{}, false
	}
	ev := StepEvent{Step: step, Off: m.held, On: m.steps[step]}
	m.held = ev.On
	return ev, true
}

// Start runs the sequencer from the start of the current step
func (m *Melodic) Start() {
	m.clock.Start()
}

// Stop pauses and returns the held note so the caller can release it
func (m *Melodic) Stop() Step {
	held := m.held
	m.held = Step{}
	m.clock.Stop()
	return held
}

// Toggle flips the transport; the returned step is the note to release when stopping
func (m *Melodic) Toggle() Step {
	if m.clock.Running() {
		return m.Stop()
	}
	m.Start()
	return Step{}
}

// Rewind returns to step 0 without changing the transport
func (m *Melodic) Rewind() {
	m.clock.Rewind()
}

// SetNote writes a note into step; out of range steps are ignored
func (m *Melodic) SetNote(index int, note uint8) {
	if index >= 0 && index < MaxSteps && note <= 127 {
		m.steps[index] = Step{Active: true, Note: note}
	}
}

// Clear turns step into a rest
func (m *Melodic) Clear(index int) {
	if index >= 0 && index < MaxSteps {
		m.steps[index] = Step{}
	}
}

// AdjustNote transposes an active step by delta semitones, clamped to 0-127
func (m *Melodic) AdjustNote(index int, delta int) {
	if index < 0 || index >= MaxSteps || !m.steps[index].Active {
		return
	}
	newNote := int(m.steps[index].Note) + delta
	if newNote < 0 {
		newNote = 0
	}
	if newNote > 127 {
		newNote = 127
	}
	m.steps[index].Note = uint8(newNote)
}

// SetSteps changes the loop length. Steps past the end keep their notes
// and come back when the grid grows again.
func (m *Melodic) SetSteps(n int) {
	m.clock.SetSteps(n)
}

// CycleSteps moves to the next allowed length and returns it
func (m *Melodic) CycleSteps() int {
	m.clock.SetSteps(NextStepCount(m.clock.Steps()))
	return m.clock.Steps()
}

// Get returns the step at index (a rest if out of range)
func (m *Melodic) Get(index int) Step {
	if index < 0 || index >= MaxSteps {
		return Step{}
	}
	return m.steps[index]
}

// Steps returns a copy of the audible steps
func (m *Melodic) Steps() []Step {
	out := make([]Step, m.clock.Steps())
	copy(out, m.steps[:m.clock.Steps()])
	return out
}

func (m *Melodic) Len() int      { return m.clock.Steps() }
func (m *Melodic) Current() int  { return m.clock.Step() }
func (m *Melodic) Counter() int  { return m.clock.Counter() }
func (m *Melodic) Playing() bool { return m.clock.Running() }
func (m *Melodic) Held() Step    { return m.held }
