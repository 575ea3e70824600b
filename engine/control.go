package engine

import (
	"math"

	"go-groovebox/sequencer"
	"go-groovebox/synth"
)

// Control actions. Each takes the lock for one bounded mutation; bad
// indices and unknown values are ignored.

// SetTempo sets BPM, clamped to the configured range
func (e *Engine) SetTempo(bpm float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setTempo(bpm)
}

func (e *Engine) setTempo(bpm float64) {
	if math.IsNaN(bpm) {
		return
	}
	e.tempo = min(max(bpm, e.minTempo), e.maxTempo)
}

// AdjustTempo nudges BPM by delta
func (e *Engine) AdjustTempo(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setTempo(e.tempo + delta)
}

// ResetTempo returns to the tempo the engine started with
func (e *Engine) ResetTempo() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tempo = e.defaultTempo
}

// Tempo returns the current BPM
func (e *Engine) Tempo() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tempo
}

// SetVolume sets master gain, clamped to 0-1
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if math.IsNaN(v) {
		return
	}
	e.volume = min(max(v, 0), 1)
}

func (e *Engine) AdjustVolume(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = min(max(e.volume+delta, 0), 1)
}

// SetWaveform selects the oscillator for new notes
func (e *Engine) SetWaveform(w synth.Waveform) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waveform = w
}

// CycleWaveform moves to the next waveform and returns it
func (e *Engine) CycleWaveform() synth.Waveform {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waveform = e.waveform.Next()
	return e.waveform
}

// SetEnvelope changes the ADSR of new and sounding voices
func (e *Engine) SetEnvelope(adsr synth.ADSR) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices.SetEnvelope(adsr)
}

// Melodic grid

func (e *Engine) SetStepNote(step int, note uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.SetNote(step, note)
}

func (e *Engine) ClearStep(step int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.Clear(step)
}

// AdjustStepNote transposes an active step by semitones
func (e *Engine) AdjustStepNote(step, delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.AdjustNote(step, delta)
}

func (e *Engine) SetMelodicSteps(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.SetSteps(n)
}

// CycleMelodicSteps goes 8 → 16 → 24 → 32 → 8 and returns the new length
func (e *Engine) CycleMelodicSteps() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq.CycleSteps()
}

// Melodic transport

func (e *Engine) StartSequencer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.Start()
}

// StopSequencer pauses and releases the note the sequencer was holding
func (e *Engine) StopSequencer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.releaseHeld(e.seq.Stop())
}

// ToggleSequencer flips the melodic transport and reports whether it now plays
func (e *Engine) ToggleSequencer() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.releaseHeld(e.seq.Toggle())
	return e.seq.Playing()
}

func (e *Engine) RewindSequencer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.Rewind()
}

func (e *Engine) releaseHeld(held sequencer.Step) {
	if held.Active {
		e.voices.NoteOff(held.Note)
	}
}

// Drum grid

func (e *Engine) ToggleDrumStep(track, step int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.ToggleStep(track, step)
}

func (e *Engine) SetDrumStep(track, step int, on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.SetStep(track, step, on)
}

func (e *Engine) ClearDrumStep(track, step int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.SetStep(track, step, false)
}

func (e *Engine) ClearDrumTrack(track int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.ClearTrack(track)
}

func (e *Engine) SetDrumSteps(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.SetSteps(n)
}

// CycleDrumSteps goes 8 → 16 → 24 → 32 → 8 and returns the new length
func (e *Engine) CycleDrumSteps() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drums.CycleSteps()
}

func (e *Engine) SetMute(track int, muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.SetMute(track, muted)
}

func (e *Engine) ToggleMute(track int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.ToggleMute(track)
}

// TrackVolumeUp raises a drum track by one increment
func (e *Engine) TrackVolumeUp(track int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.AdjustVolume(track, sequencer.TrackVolumeStep)
}

// TrackVolumeDown lowers a drum track by one increment
func (e *Engine) TrackVolumeDown(track int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.AdjustVolume(track, -sequencer.TrackVolumeStep)
}

// Drum transport

func (e *Engine) StartDrums() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.Start()
}

func (e *Engine) StopDrums() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.Stop()
}

// ToggleDrums flips the drum transport and reports whether it now plays
func (e *Engine) ToggleDrums() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.Toggle()
	return e.drums.Playing()
}

func (e *Engine) RewindDrums() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.Rewind()
}

// TriggerDrum plays a one-off hit of kind, whatever the transport state
func (e *Engine) TriggerDrum(kind synth.DrumKind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drums.Trigger(kind)
}

// Live notes

// PlayNote starts or retriggers note with the current waveform
func (e *Engine) PlayNote(note uint8, velocity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices.NoteOn(note, e.waveform, velocity)
}

// StopNote releases note; notes that are not sounding are ignored
func (e *Engine) StopNote(note uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices.NoteOff(note)
}

// ReleaseAll releases every melodic voice
func (e *Engine) ReleaseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices.ReleaseAll()
}
