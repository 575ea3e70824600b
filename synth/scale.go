package synth

import (
	"fmt"
	"strings"
)

// Scale is a note set used to snap input notes
type Scale int

const (
	ScaleOff Scale = iota
	ScaleMajor
	ScaleMinor
	ScalePentaMajor
	ScalePentaMinor
	ScaleBlues
	ScaleDorian
	ScaleMixolydian
	numScales
)

type scaleInfo struct {
	name, short string
	intervals   []int
}

var scales = [numScales]scaleInfo{
	ScaleOff:        {"Off", "Off", []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
	ScaleMajor:      {"Major", "Maj", []int{0, 2, 4, 5, 7, 9, 11}},
	ScaleMinor:      {"Minor", "Min", []int{0, 2, 3, 5, 7, 8, 10}},
	ScalePentaMajor: {"Penta Maj", "PMaj", []int{0, 2, 4, 7, 9}},
	ScalePentaMinor: {"Penta Min", "PMin", []int{0, 3, 5, 7, 10}},
	ScaleBlues:      {"Blues", "Blues", []int{0, 3, 5, 6, 7, 10}},
	ScaleDorian:     {"Dorian", "Dor", []int{0, 2, 3, 5, 7, 9, 10}},
	ScaleMixolydian: {"Mixolydian", "Mix", []int{0, 2, 4, 5, 7, 9, 10}},
}

func (s Scale) valid() bool { return s >= 0 && s < numScales }

func (s Scale) String() string {
	if !s.valid() {
		return "Off"
	}
	return scales[s].name
}

// Short is the abbreviated name for the status bar
func (s Scale) Short() string {
	if !s.valid() {
		return "Off"
	}
	return scales[s].short
}

// Intervals returns semitone offsets from the root
func (s Scale) Intervals() []int {
	if !s.valid() {
		return scales[ScaleOff].intervals
	}
	return scales[s].intervals
}

// Next cycles through all scales
func (s Scale) Next() Scale {
	return (s + 1) % numScales
}

// ParseScale accepts either the full or the short name
func ParseScale(name string) (Scale, error) {
	for i, info := range scales {
		if strings.EqualFold(info.name, name) || strings.EqualFold(info.short, name) {
			return Scale(i), nil
		}
	}
	return ScaleOff, fmt.Errorf("unknown scale %q", name)
}

// Quantizer snaps notes to a scale over a root pitch class (0 = C)
type Quantizer struct {
	Scale Scale
	Root  int
}

// Active reports whether quantizing changes anything
func (q Quantizer) Active() bool {
	return q.Scale != ScaleOff
}

// Quantize returns the nearest in-scale note, looking at the same, lower
// and upper octave; ties go to the first interval found
func (q Quantizer) Quantize(note uint8) uint8 {
	if !q.Active() {
		return note
	}
	n := int(note)
	rel := ((n-q.Root)%12 + 12) % 12

	bestOffset, bestDist := 0, 1<<30
	for _, iv := range q.Scale.Intervals() {
		for _, cand := range [3]int{iv - rel, iv - 12 - rel, iv + 12 - rel} {
			if d := abs(cand); d < bestDist {
				bestDist, bestOffset = d, cand
			}
		}
	}
	return uint8(min(max(n+bestOffset, 0), 127))
}

// RootName returns the root's pitch class name
func (q Quantizer) RootName() string {
	return PitchClassName(q.Root)
}

// CycleRoot moves the root up a semitone
func (q *Quantizer) CycleRoot() {
	q.Root = (q.Root + 1) % 12
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
