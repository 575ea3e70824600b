package synth

import (
	"fmt"
	"math"
	"strings"
)

// DrumKind is one of the eight synthesized percussion sounds
type DrumKind int

const (
	Kick DrumKind = iota
	Snare
	ClosedHat
	OpenHat
	Clap
	LowTom
	MidTom
	HighTom
)

// NumDrumKinds is the size of the kit
const NumDrumKinds = 8

var drumNames = [NumDrumKinds]string{"Kick", "Snare", "C-Hat", "O-Hat", "Clap", "L.Tom", "M.Tom", "H.Tom"}

func (k DrumKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("DrumKind(%d)", int(k))
	}
	return drumNames[k]
}

func (k DrumKind) Valid() bool {
	return k >= 0 && k < NumDrumKinds
}

// ParseDrumKind accepts the display name, case-insensitive
func ParseDrumKind(name string) (DrumKind, error) {
	for i, n := range drumNames {
		if strings.EqualFold(n, name) {
			return DrumKind(i), nil
		}
	}
	return Kick, fmt.Errorf("unknown drum kind %q", name)
}

// Recipe durations in seconds; a voice outputs exactly zero from then on
var drumDurations = [NumDrumKinds]float64{
	Kick:      0.45,
	Snare:     0.25,
	ClosedHat: 0.06,
	OpenHat:   0.38,
	Clap:      0.30,
	LowTom:    0.50,
	MidTom:    0.40,
	HighTom:   0.32,
}

// Duration returns the kind's total length in seconds
func (k DrumKind) Duration() float64 {
	if !k.Valid() {
		return 0
	}
	return drumDurations[k]
}

// tom recipe parameters: sweep from start to base Hz, amplitude decay constant
type tomRecipe struct {
	start, base, sweep, decay float64
}

var toms = [NumDrumKinds]tomRecipe{
	LowTom:  {start: 130, base: 80, sweep: 0.10, decay: 0.16},
	MidTom:  {start: 190, base: 120, sweep: 0.08, decay: 0.12},
	HighTom: {start: 270, base: 180, sweep: 0.06, decay: 0.09},
}

const (
	kickStart     = 150.0
	kickEnd       = 50.0
	kickSweep     = 0.07 // seconds for the 150 → 50 Hz glide
	kickDecay     = 0.12
	kickClick     = 0.002 // onset click length
	snareBody     = 195.0
	chokeTime     = 0.005 // open hat fade when choked
	clapBurstTime = 0.010
)

var clapBursts = [...]float64{0, 0.009, 0.017}

// DrumVoice is one fire-and-forget percussion hit
type DrumVoice struct {
	Kind DrumKind
	// Track is the owning track index, used for volume and mute at mix time
	Track int
	// Preview hits ignore the track's mute flag
	Preview bool

	sampleRate float64
	elapsed    int
	length     int
	osc        Oscillator
	noise      Noise
	tom        tomRecipe

	choked    bool
	chokeLeft int
	chokeLen  int
}

// NewDrumVoice creates a voice at its first sample
func NewDrumVoice(kind DrumKind, track int, sampleRate float64, seed uint32) DrumVoice {
	v := DrumVoice{
		Kind:       kind,
		Track:      track,
		sampleRate: sampleRate,
		length:     int(math.Ceil(kind.Duration() * sampleRate)),
		noise:      NewNoise(seed),
	}
	if kind.Valid() {
		v.tom = toms[kind]
	}
	return v
}

// Age is the number of samples rendered since the hit
func (v *DrumVoice) Age() int { return v.elapsed }

// Active reports whether the voice still produces output
func (v *DrumVoice) Active() bool {
	if v.choked && v.chokeLeft <= 0 {
		return false
	}
	return v.elapsed < v.length
}

// Choke forces a short fade to silence (open hat closed by the pedal)
func (v *DrumVoice) Choke() {
	if v.choked {
		return
	}
	v.choked = true
	v.chokeLen = max(1, int(chokeTime*v.sampleRate))
	v.chokeLeft = v.chokeLen
}

// Next renders one sample; done is true once the recipe has finished
func (v *DrumVoice) Next() (sample float64, done bool) {
	if !v.Active() {
		return 0, true
	}
	t := float64(v.elapsed) / v.sampleRate
	// linear tail guarantees zero at the end of the recipe
	tail := 1 - float64(v.elapsed)/float64(v.length)

	switch v.Kind {
	case Kick:
		freq := kickEnd
		if t < kickSweep {
			freq = kickStart * math.Pow(kickEnd/kickStart, t/kickSweep)
		}
		sample = v.osc.Sine(freq, v.sampleRate) * math.Exp(-t/kickDecay)
		if t < kickClick {
			sample += v.noise.Next() * (1 - t/kickClick)
		}

	case Snare:
		body := v.osc.Sine(snareBody, v.sampleRate) * math.Exp(-t/0.05) * 0.5
		rattle := v.noise.Next() * math.Exp(-t/0.07) * 0.6
		sample = body + rattle

	case ClosedHat:
		sample = v.noise.Next() * math.Exp(-t/0.015) * 0.5

	case OpenHat:
		sample = v.noise.Next() * math.Exp(-t/0.12) * 0.45

	case Clap:
		n := v.noise.Next()
		for _, at := range clapBursts {
			if dt := t - at; dt >= 0 && dt < clapBurstTime {
				sample += n * math.Exp(-dt/0.003) * 0.7
			}
		}
		if dt := t - clapBursts[len(clapBursts)-1]; dt >= 0 {
			sample += n * math.Exp(-dt/0.06) * 0.4
		}

	case LowTom, MidTom, HighTom:
		r := v.tom
		freq := r.base
		if t < r.sweep {
			freq = r.start + (r.base-r.start)*(t/r.sweep)
		}
		sample = v.osc.Sine(freq, v.sampleRate)*math.Exp(-t/r.decay)*0.8 +
			v.noise.Next()*math.Exp(-t/0.02)*0.15
	}

	sample *= tail
	if v.choked {
		sample *= float64(v.chokeLeft) / float64(v.chokeLen)
		v.chokeLeft--
	}
	v.elapsed++
	return sample, !v.Active()
}
