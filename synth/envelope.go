package synth

import "math"

// Stage is the current envelope stage
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "idle"
}

// ADSR holds envelope timing in seconds and the sustain level (0-1)
type ADSR struct {
	Attack  float64 `json:"attack" yaml:"attack"`
	Decay   float64 `json:"decay" yaml:"decay"`
	Sustain float64 `json:"sustain" yaml:"sustain"`
	Release float64 `json:"release" yaml:"release"`
}

// DefaultADSR returns the stock melodic envelope
func DefaultADSR() ADSR {
	return ADSR{Attack: 0.01, Decay: 0.1, Sustain: 0.7, Release: 0.3}
}

// Clamped returns a copy with negative times zeroed and sustain in 0-1.
// NaN and infinite fields become 0.
func (p ADSR) Clamped() ADSR {
	p.Attack = max(finite(p.Attack), 0)
	p.Decay = max(finite(p.Decay), 0)
	p.Release = max(finite(p.Release), 0)
	p.Sustain = min(max(finite(p.Sustain), 0), 1)
	return p
}

// Finite reports whether every field is a real number
func (p ADSR) Finite() bool {
	return finite(p.Attack) == p.Attack && finite(p.Decay) == p.Decay &&
		finite(p.Sustain) == p.Sustain && finite(p.Release) == p.Release
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Envelope is a linear ADSR state machine advanced one sample at a time.
// Every stage ramps at a fixed slope, so amplitude never jumps by more than
// the slope of the stage it is in. Stages shorter than one sample complete
// on the sample they are entered.
type Envelope struct {
	params     ADSR
	sampleRate float64

	stage       Stage
	level       float64
	releaseFrom float64
}

// NewEnvelope creates an idle envelope
func NewEnvelope(params ADSR, sampleRate float64) Envelope {
	return Envelope{
		params:     params.Clamped(),
		sampleRate: sampleRate,
	}
}

// SetParams changes timing; a running stage picks up the new slope on the next sample
func (e *Envelope) SetParams(params ADSR) {
	e.params = params.Clamped()
}

// Trigger restarts the attack from the current level so retriggers don't click
func (e *Envelope) Trigger() {
	e.stage = StageAttack
}

// Release moves any running stage to release
func (e *Envelope) Release() {
	if e.stage == StageIdle || e.stage == StageRelease {
		return
	}
	e.releaseFrom = e.level
	e.stage = StageRelease
}

// Reset forces the envelope to idle at zero
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.level = 0
}

func (e *Envelope) Stage() Stage   { return e.stage }
func (e *Envelope) Level() float64 { return e.level }
func (e *Envelope) Active() bool   { return e.stage != StageIdle }

// step is the per-sample delta that covers span over seconds
func (e *Envelope) step(seconds, span float64) float64 {
	samples := seconds * e.sampleRate
	if samples < 1 {
		return span
	}
	return span / samples
}

// Next advances one sample and returns the amplitude
func (e *Envelope) Next() float64 {
	switch e.stage {
	case StageIdle:
		return 0

	case StageAttack:
		e.level += e.step(e.params.Attack, 1)
		if e.level >= 1 {
			e.level = 1
			e.enter(StageDecay)
		}

	case StageDecay:
		e.level -= e.step(e.params.Decay, 1-e.params.Sustain)
		if e.level <= e.params.Sustain {
			e.level = e.params.Sustain
			if e.params.Sustain <= 0 {
				// nothing to hold
				e.level = 0
				e.enter(StageIdle)
			} else {
				e.enter(StageSustain)
			}
		}

	case StageSustain:
		e.level = e.params.Sustain

	case StageRelease:
		e.level -= e.step(e.params.Release, e.releaseFrom)
		if e.level <= 0 {
			e.level = 0
			e.enter(StageIdle)
		}
	}
	return e.level
}

func (e *Envelope) enter(s Stage) {
	e.stage = s
}
