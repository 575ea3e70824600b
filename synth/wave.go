package synth

import (
	"fmt"
	"math"
	"strings"
)

// Waveform selects the melodic oscillator shape
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

var waveNames = [...]string{"Sine", "Square", "Sawtooth", "Triangle"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveNames) {
		return "Sine"
	}
	return waveNames[w]
}

// Next cycles Sine → Square → Sawtooth → Triangle → Sine
func (w Waveform) Next() Waveform {
	return (w + 1) % Waveform(len(waveNames))
}

// ParseWaveform accepts a case-insensitive waveform name
func ParseWaveform(name string) (Waveform, error) {
	for i, n := range waveNames {
		if strings.EqualFold(n, name) {
			return Waveform(i), nil
		}
	}
	if strings.EqualFold(name, "saw") {
		return Sawtooth, nil
	}
	return Sine, fmt.Errorf("unknown waveform %q", name)
}

// Eval returns the waveform value at phase (0-1)
func (w Waveform) Eval(phase float64) float64 {
	switch w {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*phase - 1
	case Triangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	}
	return math.Sin(2 * math.Pi * phase)
}

// Oscillator is a phase accumulator in cycles
type Oscillator struct {
	Phase float64
}

// Next returns the value at the current phase, then advances by freq
func (o *Oscillator) Next(w Waveform, freq, sampleRate float64) float64 {
	v := w.Eval(o.Phase)
	o.Phase += freq / sampleRate
	o.Phase -= math.Floor(o.Phase)
	return v
}

// Sine returns sin at the current phase and advances; used by drum recipes
// whose frequency changes every sample
func (o *Oscillator) Sine(freq, sampleRate float64) float64 {
	return o.Next(Sine, freq, sampleRate)
}

// NoteToFreq converts a MIDI note to Hz (A4 = 69 = 440 Hz)
func NoteToFreq(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

var noteNames = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName converts a MIDI note to a readable name (e.g. "C4", "F#3")
func NoteName(note uint8) string {
	octave := int(note)/12 - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}

// PitchClassName returns the name without octave
func PitchClassName(pc int) string {
	return noteNames[((pc%12)+12)%12]
}
