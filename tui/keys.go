package tui

import (
	"time"

	"go-groovebox/synth"
)

// FallbackRelease is how long a note key stays down after its last press or
// auto-repeat; terminals do not report key release
const FallbackRelease = 600 * time.Millisecond

type pianoKey struct {
	semitone int
	octave   int
}

// Two-row piano: z-row from the base octave, q-row one octave up
var pianoKeys = map[string]pianoKey{
	// lower row, white keys
	"z": {0, 0}, "x": {2, 0}, "c": {4, 0}, "v": {5, 0},
	"b": {7, 0}, "n": {9, 0}, "m": {11, 0},
	",": {12, 0}, ".": {14, 0}, "/": {16, 0},
	// lower row, black keys
	"s": {1, 0}, "d": {3, 0}, "g": {6, 0},
	"h": {8, 0}, "j": {10, 0}, "l": {13, 0}, ";": {15, 0},
	// upper row, white keys
	"q": {0, 1}, "w": {2, 1}, "e": {4, 1}, "r": {5, 1},
	"t": {7, 1}, "y": {9, 1}, "u": {11, 1},
	"i": {12, 1}, "o": {14, 1}, "p": {16, 1},
	// upper row, black keys
	"2": {1, 1}, "3": {3, 1}, "5": {6, 1},
	"6": {8, 1}, "7": {10, 1}, "9": {13, 1}, "0": {15, 1},
}

// KeyToNote maps a piano key to a MIDI note at baseOctave, clamped to 0-127
func KeyToNote(key string, baseOctave int) (uint8, bool) {
	pk, ok := pianoKeys[key]
	if !ok {
		return 0, false
	}
	note := (baseOctave+pk.octave)*12 + 12 + pk.semitone
	return uint8(min(max(note, 0), 127)), true
}

// Octave bounds for the computer keyboard
const (
	MinOctave = 0
	MaxOctave = 8
)

var drumKeys = map[string]synth.DrumKind{
	"z": synth.Kick,
	"x": synth.Snare,
	"c": synth.ClosedHat,
	"v": synth.OpenHat,
	"b": synth.Clap,
	"n": synth.LowTom,
	"m": synth.MidTom,
	",": synth.HighTom,
}

// DrumKey maps a preview key to a drum kind
func DrumKey(key string) (synth.DrumKind, bool) {
	k, ok := drumKeys[key]
	return k, ok
}

// DrumKeyFor returns the preview key of kind
func DrumKeyFor(kind synth.DrumKind) string {
	for k, v := range drumKeys {
		if v == kind {
			return k
		}
	}
	return ""
}
