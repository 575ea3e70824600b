package engine

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"go-groovebox/sequencer"
	"go-groovebox/synth"
)

// ErrInvalidPattern is returned when a pattern file fails validation
var ErrInvalidPattern = errors.New("invalid pattern")

const patternExt = ".yaml"

// Pattern is the on-disk form of a session
type Pattern struct {
	Tempo    float64     `yaml:"tempo"`
	Volume   float64     `yaml:"volume"`
	Waveform string      `yaml:"waveform"`
	Envelope synth.ADSR  `yaml:"envelope"`
	Melodic  MelodicPart `yaml:"melodic"`
	Drums    DrumPart    `yaml:"drums"`
}

// MelodicPart holds the melodic grid; -1 marks a rest
type MelodicPart struct {
	Length int   `yaml:"length"`
	Notes  []int `yaml:"notes"`
}

// DrumPart holds the drum grid, one row per kind
type DrumPart struct {
	Length int         `yaml:"length"`
	Tracks []TrackPart `yaml:"tracks"`
}

// TrackPart is one drum row. Steps uses x for a hit and . for a rest.
type TrackPart struct {
	Kind   string  `yaml:"kind"`
	Steps  string  `yaml:"steps"`
	Muted  bool    `yaml:"muted,omitempty"`
	Volume float64 `yaml:"volume"`
}

// Pattern captures the current grids and sound settings
func (e *Engine) Pattern() Pattern {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := Pattern{
		Tempo:    e.tempo,
		Volume:   e.volume,
		Waveform: e.waveform.String(),
		Envelope: e.voices.Envelope(),
		Melodic: MelodicPart{
			Length: e.seq.Len(),
			Notes:  make([]int, sequencer.MaxSteps),
		},
		Drums: DrumPart{Length: e.drums.Len()},
	}
	for i := 0; i < sequencer.MaxSteps; i++ {
		st := e.seq.Get(i)
		if st.Active {
			p.Melodic.Notes[i] = int(st.Note)
		} else {
			p.Melodic.Notes[i] = -1
		}
	}
	for i := range e.drums.Tracks {
		t := &e.drums.Tracks[i]
		var b strings.Builder
		for _, on := range t.Steps {
			if on {
				b.WriteByte('x')
			} else {
				b.WriteByte('.')
			}
		}
		p.Drums.Tracks = append(p.Drums.Tracks, TrackPart{
			Kind:   t.Kind.String(),
			Steps:  b.String(),
			Muted:  t.Muted,
			Volume: t.Volume,
		})
	}
	return p
}

// decoded is a validated pattern ready to apply under the lock
type decoded struct {
	tempo    float64
	volume   float64
	waveform synth.Waveform
	envelope synth.ADSR
	melLen   int
	notes    [sequencer.MaxSteps]sequencer.Step
	drumLen  int
	tracks   [sequencer.NumTracks]struct {
		set    bool
		steps  [sequencer.MaxSteps]bool
		muted  bool
		volume float64
	}
}

// Validate checks step counts, note range and drum kinds
func (p *Pattern) Validate() error {
	_, err := p.decode()
	return err
}

func (p *Pattern) decode() (*decoded, error) {
	d := &decoded{
		tempo:    p.Tempo,
		volume:   min(max(p.Volume, 0), 1),
		envelope: p.Envelope.Clamped(),
		melLen:   p.Melodic.Length,
		drumLen:  p.Drums.Length,
	}
	if !isFinite(p.Tempo) || p.Tempo <= 0 {
		return nil, fmt.Errorf("%w: tempo %v", ErrInvalidPattern, p.Tempo)
	}
	if !isFinite(p.Volume) {
		return nil, fmt.Errorf("%w: volume %v", ErrInvalidPattern, p.Volume)
	}
	if !p.Envelope.Finite() {
		return nil, fmt.Errorf("%w: envelope %+v", ErrInvalidPattern, p.Envelope)
	}
	w, err := synth.ParseWaveform(p.Waveform)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	d.waveform = w
	if !sequencer.ValidStepCount(d.melLen) {
		return nil, fmt.Errorf("%w: melodic length %d", ErrInvalidPattern, d.melLen)
	}
	if !sequencer.ValidStepCount(d.drumLen) {
		return nil, fmt.Errorf("%w: drum length %d", ErrInvalidPattern, d.drumLen)
	}
	if len(p.Melodic.Notes) > sequencer.MaxSteps {
		return nil, fmt.Errorf("%w: %d melodic steps", ErrInvalidPattern, len(p.Melodic.Notes))
	}
	for i, n := range p.Melodic.Notes {
		switch {
		case n < 0:
		case n <= 127:
			d.notes[i] = sequencer.Step{Active: true, Note: uint8(n)}
		default:
			return nil, fmt.Errorf("%w: note %d at step %d", ErrInvalidPattern, n, i)
		}
	}
	for _, tp := range p.Drums.Tracks {
		kind, err := synth.ParseDrumKind(tp.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		if len(tp.Steps) > sequencer.MaxSteps {
			return nil, fmt.Errorf("%w: %s has %d steps", ErrInvalidPattern, tp.Kind, len(tp.Steps))
		}
		if !isFinite(tp.Volume) {
			return nil, fmt.Errorf("%w: %s volume %v", ErrInvalidPattern, tp.Kind, tp.Volume)
		}
		t := &d.tracks[kind]
		t.set = true
		t.muted = tp.Muted
		t.volume = min(max(tp.Volume, 0), 1)
		for i, c := range tp.Steps {
			switch c {
			case 'x', 'X':
				t.steps[i] = true
			case '.', '-':
			default:
				return nil, fmt.Errorf("%w: %s step %d is %q", ErrInvalidPattern, tp.Kind, i, c)
			}
		}
	}
	return d, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ApplyPattern replaces the grids and sound settings in one step. Transport
// state is kept; held notes are released.
func (e *Engine) ApplyPattern(p Pattern) error {
	d, err := p.decode()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.setTempo(d.tempo)
	e.volume = d.volume
	e.waveform = d.waveform
	e.voices.SetEnvelope(d.envelope)
	e.releaseHeld(e.seq.Held())
	e.voices.ReleaseAll()

	for i, st := range d.notes {
		if st.Active {
			e.seq.SetNote(i, st.Note)
		} else {
			e.seq.Clear(i)
		}
	}
	e.seq.SetSteps(d.melLen)

	for i := range d.tracks {
		t := &d.tracks[i]
		if !t.set {
			e.drums.ClearTrack(i)
			e.drums.SetMute(i, false)
			e.drums.SetVolume(i, sequencer.DefaultTrackVolume)
			continue
		}
		e.drums.Tracks[i].Steps = t.steps
		e.drums.SetMute(i, t.muted)
		e.drums.SetVolume(i, t.volume)
	}
	e.drums.SetSteps(d.drumLen)
	return nil
}

// PatternsDir returns the pattern directory path
func PatternsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-groovebox", "projects"), nil
}

func patternPath(name string) (string, error) {
	name = sanitizeFilename(strings.TrimSuffix(name, patternExt))
	if name == "" {
		return "", fmt.Errorf("empty pattern name")
	}
	dir, err := PatternsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+patternExt), nil
}

// SavePattern writes the current pattern to name
func (e *Engine) SavePattern(name string) error {
	path, err := patternPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("save pattern %s: %w", name, err)
	}
	data, err := yaml.Marshal(e.Pattern())
	if err != nil {
		return fmt.Errorf("save pattern %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save pattern %s: %w", name, err)
	}
	return nil
}

// ReadPattern parses the pattern file name without applying it
func ReadPattern(name string) (Pattern, error) {
	var p Pattern
	path, err := patternPath(name)
	if err != nil {
		return p, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("load pattern %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("load pattern %s: %w: %v", name, ErrInvalidPattern, err)
	}
	return p, nil
}

// LoadPattern reads name and applies it
func (e *Engine) LoadPattern(name string) error {
	p, err := ReadPattern(name)
	if err != nil {
		return err
	}
	if err := e.ApplyPattern(p); err != nil {
		return fmt.Errorf("load pattern %s: %w", name, err)
	}
	return nil
}

// ListPatterns returns saved pattern names, sorted
func ListPatterns() ([]string, error) {
	dir, err := PatternsDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), patternExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), patternExt))
	}
	sort.Strings(names)
	return names, nil
}

// DeletePattern removes a saved pattern
func DeletePattern(name string) error {
	path, err := patternPath(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// sanitizeFilename removes characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, ":", "-")
	for _, c := range []string{"*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, c, "")
	}
	return strings.Trim(name, ".")
}
