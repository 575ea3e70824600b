package engine

import (
	"go-groovebox/sequencer"
	"go-groovebox/synth"
)

// LevelSource reports the most recent output level, 0-1
type LevelSource interface {
	Level() (rms, peak float64)
}

// TrackState is the read-only view of one drum track
type TrackState struct {
	Kind   synth.DrumKind
	Steps  []bool
	Muted  bool
	Volume float64
	Voices int
}

// Snapshot is a copy of everything a renderer needs. It shares no memory
// with the engine.
type Snapshot struct {
	Tempo    float64
	MinTempo float64
	MaxTempo float64
	Volume   float64
	Waveform synth.Waveform
	Envelope synth.ADSR

	SeqSteps   []sequencer.Step
	SeqCurrent int
	SeqPlaying bool

	Tracks      [sequencer.NumTracks]TrackState
	DrumLen     int
	DrumCurrent int
	DrumPlaying bool
	DrumVoices  int

	ActiveNotes   []uint8
	MelodicVoices int

	LevelRMS  float64
	LevelPeak float64
}

// AttachMeter makes Snapshot report levels from src
func (e *Engine) AttachMeter(src LevelSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meter = src
}

// Snapshot copies the state under one lock acquisition
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	s := Snapshot{
		Tempo:         e.tempo,
		MinTempo:      e.minTempo,
		MaxTempo:      e.maxTempo,
		Volume:        e.volume,
		Waveform:      e.waveform,
		Envelope:      e.voices.Envelope(),
		SeqSteps:      e.seq.Steps(),
		SeqCurrent:    e.seq.Current(),
		SeqPlaying:    e.seq.Playing(),
		DrumLen:       e.drums.Len(),
		DrumCurrent:   e.drums.Current(),
		DrumPlaying:   e.drums.Playing(),
		DrumVoices:    e.drums.ActiveVoices(),
		ActiveNotes:   e.voices.ActiveNotes(make([]uint8, 0, e.voices.Len())),
		MelodicVoices: e.voices.Len(),
	}
	n := e.drums.Len()
	for i := range e.drums.Tracks {
		t := &e.drums.Tracks[i]
		steps := make([]bool, n)
		copy(steps, t.Steps[:n])
		s.Tracks[i] = TrackState{
			Kind:   t.Kind,
			Steps:  steps,
			Muted:  t.Muted,
			Volume: t.Volume,
			Voices: e.drums.VoiceCount(t.Kind),
		}
	}
	meter := e.meter
	e.mu.Unlock()

	// meter is atomic, read it outside the engine lock
	if meter != nil {
		s.LevelRMS, s.LevelPeak = meter.Level()
	}
	return s
}
