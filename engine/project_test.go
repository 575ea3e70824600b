package engine

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go-groovebox/sequencer"
	"go-groovebox/synth"
)

func TestPatternRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	src := testEngine()
	src.SetTempo(97)
	src.SetVolume(0.3)
	src.SetWaveform(synth.Triangle)
	src.SetEnvelope(synth.ADSR{Attack: 0.02, Decay: 0.2, Sustain: 0.5, Release: 0.4})
	src.SetMelodicSteps(8)
	src.SetStepNote(0, 60)
	src.SetStepNote(7, 72)
	src.SetStepNote(20, 40)
	src.SetDrumSteps(32)
	src.SetDrumStep(int(synth.Kick), 0, true)
	src.SetDrumStep(int(synth.Kick), 31, true)
	src.SetDrumStep(int(synth.OpenHat), 6, true)
	src.SetMute(int(synth.Clap), true)
	src.TrackVolumeDown(int(synth.Snare))

	if err := src.SavePattern("my beat"); err != nil {
		t.Fatalf("SavePattern: %v", err)
	}

	dst := testEngine()
	dst.SetDrumStep(int(synth.HighTom), 3, true)
	if err := dst.LoadPattern("my beat"); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}

	a, b := src.Snapshot(), dst.Snapshot()
	if a.Tempo != b.Tempo || a.Volume != b.Volume || a.Waveform != b.Waveform || a.Envelope != b.Envelope {
		t.Errorf("settings differ: %+v vs %+v", a, b)
	}
	if !slices.Equal(a.SeqSteps, b.SeqSteps) {
		t.Errorf("melodic grid differs:\n%v\n%v", a.SeqSteps, b.SeqSteps)
	}
	for i := range a.Tracks {
		ta, tb := a.Tracks[i], b.Tracks[i]
		if !slices.Equal(ta.Steps, tb.Steps) || ta.Muted != tb.Muted || ta.Volume != tb.Volume {
			t.Errorf("track %s differs: %+v vs %+v", ta.Kind, ta, tb)
		}
	}

	// steps hidden by the shorter melodic loop survive too
	dst.SetMelodicSteps(32)
	if st := dst.Snapshot().SeqSteps[20]; !st.Active || st.Note != 40 {
		t.Errorf("hidden step 20: %+v", st)
	}
}

func TestLoadMissingPattern(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	err := testEngine().LoadPattern("nope")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want ErrNotExist", err)
	}
}

func TestLoadInvalidPattern(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := PatternsDir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"badlen":   "tempo: 120\nwaveform: sine\nmelodic: {length: 12}\ndrums: {length: 16}\n",
		"badnote":  "tempo: 120\nwaveform: sine\nmelodic: {length: 16, notes: [200]}\ndrums: {length: 16}\n",
		"badkind":  "tempo: 120\nwaveform: sine\nmelodic: {length: 16}\ndrums: {length: 16, tracks: [{kind: cowbell}]}\n",
		"badsteps": "tempo: 120\nwaveform: sine\nmelodic: {length: 16}\ndrums: {length: 16, tracks: [{kind: kick, steps: 'x.o.'}]}\n",
		"badyaml":  "tempo: [\n",
		"nantempo": "tempo: .nan\nwaveform: sine\nmelodic: {length: 16}\ndrums: {length: 16}\n",
		"infvol":   "tempo: 120\nvolume: .inf\nwaveform: sine\nmelodic: {length: 16}\ndrums: {length: 16}\n",
		"nanvol":   "tempo: 120\nvolume: .nan\nwaveform: sine\nmelodic: {length: 16}\ndrums: {length: 16}\n",
		"nanenv":   "tempo: 120\nwaveform: sine\nenvelope: {sustain: .nan}\nmelodic: {length: 16}\ndrums: {length: 16}\n",
		"nantrack": "tempo: 120\nwaveform: sine\nmelodic: {length: 16}\ndrums: {length: 16, tracks: [{kind: kick, volume: .nan}]}\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if err := os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			e := testEngine()
			e.SetStepNote(0, 61)
			err := e.LoadPattern(name)
			if !errors.Is(err, ErrInvalidPattern) {
				t.Fatalf("got %v, want ErrInvalidPattern", err)
			}
			if st := e.Snapshot().SeqSteps[0]; !st.Active || st.Note != 61 {
				t.Error("failed load modified the engine")
			}
		})
	}
}

func TestListPatterns(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	names, err := ListPatterns()
	if err != nil || len(names) != 0 {
		t.Fatalf("empty dir: %v %v", names, err)
	}

	e := testEngine()
	for _, n := range []string{"zeta", "alpha", "mid/dle"} {
		if err := e.SavePattern(n); err != nil {
			t.Fatal(err)
		}
	}
	names, err = ListPatterns()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"alpha", "mid-dle", "zeta"}; !slices.Equal(names, want) {
		t.Errorf("ListPatterns = %v, want %v", names, want)
	}

	if err := DeletePattern("alpha"); err != nil {
		t.Fatal(err)
	}
	names, _ = ListPatterns()
	if len(names) != 2 {
		t.Errorf("after delete: %v", names)
	}
}

func TestPatternValidate(t *testing.T) {
	p := testEngine().Pattern()
	if err := p.Validate(); err != nil {
		t.Fatalf("fresh pattern invalid: %v", err)
	}
	if len(p.Melodic.Notes) != sequencer.MaxSteps || len(p.Drums.Tracks) != sequencer.NumTracks {
		t.Errorf("pattern sizes: %d notes %d tracks", len(p.Melodic.Notes), len(p.Drums.Tracks))
	}

	p.Tempo = 0
	if err := p.Validate(); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("zero tempo: %v", err)
	}
}

func TestApplyPatternRejectsNaN(t *testing.T) {
	e := testEngine()
	p := e.Pattern()
	p.Volume = math.NaN()
	p.Envelope.Sustain = math.NaN()
	if err := e.ApplyPattern(p); !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("got %v, want ErrInvalidPattern", err)
	}

	e.PlayNote(60, 1)
	e.TriggerDrum(synth.Kick)
	buf := make([]float32, 1000)
	e.Render(buf, 1)
	for i, s := range buf {
		if math.IsNaN(float64(s)) || s <= -1 || s >= 1 {
			t.Fatalf("sample %d = %f", i, s)
		}
	}
	if v := e.Snapshot().Volume; v != DefaultOptions().Volume {
		t.Errorf("volume changed to %f", v)
	}
}

func TestSavePatternEmptyName(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := testEngine().SavePattern("  "); err == nil {
		t.Error("expected error for empty name")
	}
}
