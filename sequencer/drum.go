package sequencer

import (
	"go-groovebox/synth"
)

// NumTracks is one track per drum kind
const NumTracks = synth.NumDrumKinds

// Track volume defaults and the fixed adjustment increment
const (
	DefaultTrackVolume = 0.85
	TrackVolumeStep    = 0.05
)

// voicePoolSize caps simultaneous drum hits; the pool never grows past it
const voicePoolSize = 64

type DrumTrack struct {
	Kind   synth.DrumKind
	Steps  [MaxSteps]bool
	Muted  bool
	Volume float64
	FX     *synth.EffectChain
}

// DrumMachine is the 8-track drum grid with its own phase-locked clock
// and a polyphonic pool of one-shot voices
type DrumMachine struct {
	Tracks [NumTracks]DrumTrack
	FX     *synth.EffectChain

	sampleRate float64
	clock      Clock
	voices     []synth.DrumVoice
	seed       uint32
	trackSums  [NumTracks]float64
}

func NewDrumMachine(sampleRate float64, steps int) *DrumMachine {
	d := &DrumMachine{
		FX:         synth.NewEffectChain(),
		sampleRate: sampleRate,
		clock:      NewClock(sampleRate, steps),
		voices:     make([]synth.DrumVoice, 0, voicePoolSize),
		seed:       0x2545F491,
	}
	for t := 0; t < NumTracks; t++ {
		d.Tracks[t] = DrumTrack{
			Kind:   synth.DrumKind(t),
			Volume: DefaultTrackVolume,
			FX:     synth.NewEffectChain(),
		}
	}
	return d
}

// Tick advances the drum clock one sample at bpm and fires every active,
// unmuted track on step onsets
func (d *DrumMachine) Tick(bpm float64) {
	step, onset := d.clock.Tick(bpm)
	if !onset {
		return
	}
	for i := 0; i < NumTracks; i++ {
		track := &d.Tracks[i]
		if track.Steps[step] && !track.Muted {
			d.spawn(i, false)
		}
	}
}

// Trigger fires a preview hit of kind regardless of transport and mute
func (d *DrumMachine) Trigger(kind synth.DrumKind) {
	if !kind.Valid() {
		return
	}
	d.spawn(int(kind), true)
}

func (d *DrumMachine) spawn(track int, preview bool) {
	kind := d.Tracks[track].Kind
	if kind == synth.ClosedHat {
		// hi-hat pedal closing cuts any ringing open hat
		for i := range d.voices {
			if d.voices[i].Kind == synth.OpenHat {
				d.voices[i].Choke()
			}
		}
	}
	d.seed = d.seed*1664525 + 1013904223
	v := synth.NewDrumVoice(kind, track, d.sampleRate, d.seed)
	v.Preview = preview
	if len(d.voices) < voicePoolSize {
		d.voices = append(d.voices, v)
		return
	}
	// pool full: the oldest hit makes room
	oldest := 0
	for i := range d.voices {
		if d.voices[i].Age() > d.voices[oldest].Age() {
			oldest = i
		}
	}
	d.voices[oldest] = v
}

// Render sums every voice through its track (chain, volume, mute) and the
// master chain, dropping voices whose recipe has finished
func (d *DrumMachine) Render() float64 {
	d.trackSums = [NumTracks]float64{}
	for i := 0; i < len(d.voices); {
		v := &d.voices[i]
		s, done := v.Next()
		track := &d.Tracks[v.Track]
		if !track.Muted || v.Preview {
			d.trackSums[v.Track] += s
		}
		if done {
			last := len(d.voices) - 1
			d.voices[i] = d.voices[last]
			d.voices = d.voices[:last]
			continue
		}
		i++
	}

	var mix float64
	for t := 0; t < NumTracks; t++ {
		track := &d.Tracks[t]
		mix += track.FX.Process(d.trackSums[t]) * track.Volume
	}
	return d.FX.Process(mix)
}

// ToggleStep flips a grid cell
func (d *DrumMachine) ToggleStep(track, step int) {
	if track >= 0 && track < NumTracks && step >= 0 && step < MaxSteps {
		d.Tracks[track].Steps[step] = !d.Tracks[track].Steps[step]
	}
}

// SetStep sets a grid cell
func (d *DrumMachine) SetStep(track, step int, on bool) {
	if track >= 0 && track < NumTracks && step >= 0 && step < MaxSteps {
		d.Tracks[track].Steps[step] = on
	}
}

// ClearTrack turns off every step of track
func (d *DrumMachine) ClearTrack(track int) {
	if track >= 0 && track < NumTracks {
		d.Tracks[track].Steps = [MaxSteps]bool{}
	}
}

// SetMute mutes or unmutes a track; its step clock keeps running either way
func (d *DrumMachine) SetMute(track int, muted bool) {
	if track >= 0 && track < NumTracks {
		d.Tracks[track].Muted = muted
	}
}

func (d *DrumMachine) ToggleMute(track int) {
	if track >= 0 && track < NumTracks {
		d.Tracks[track].Muted = !d.Tracks[track].Muted
	}
}

// AdjustVolume changes a track's volume by delta, clamped to 0-1
func (d *DrumMachine) AdjustVolume(track int, delta float64) {
	if track >= 0 && track < NumTracks {
		d.SetVolume(track, d.Tracks[track].Volume+delta)
	}
}

func (d *DrumMachine) SetVolume(track int, volume float64) {
	if track >= 0 && track < NumTracks {
		d.Tracks[track].Volume = min(max(volume, 0), 1)
	}
}

// Start runs the drum clock from the beginning of the current step
func (d *DrumMachine) Start() { d.clock.Start() }

// Stop pauses the drum clock; ringing voices decay naturally
func (d *DrumMachine) Stop() { d.clock.Stop() }

func (d *DrumMachine) Toggle() {
	if d.clock.Running() {
		d.Stop()
	} else {
		d.Start()
	}
}

func (d *DrumMachine) Rewind() { d.clock.Rewind() }

// SetSteps changes the grid length shared by all tracks
func (d *DrumMachine) SetSteps(n int) { d.clock.SetSteps(n) }

// CycleSteps moves to the next allowed length and returns it
func (d *DrumMachine) CycleSteps() int {
	d.clock.SetSteps(NextStepCount(d.clock.Steps()))
	return d.clock.Steps()
}

func (d *DrumMachine) Len() int          { return d.clock.Steps() }
func (d *DrumMachine) Current() int      { return d.clock.Step() }
func (d *DrumMachine) Counter() int      { return d.clock.Counter() }
func (d *DrumMachine) Playing() bool     { return d.clock.Running() }
func (d *DrumMachine) ActiveVoices() int { return len(d.voices) }

// VoiceCount returns the number of active voices of kind
func (d *DrumMachine) VoiceCount(kind synth.DrumKind) int {
	n := 0
	for i := range d.voices {
		if d.voices[i].Kind == kind {
			n++
		}
	}
	return n
}

// HasContent reports whether any step of track is on
func (t *DrumTrack) HasContent(length int) bool {
	for s := 0; s < length && s < MaxSteps; s++ {
		if t.Steps[s] {
			return true
		}
	}
	return false
}
