package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	before := *cfg
	cfg.Validate()
	if cfg.Synth != before.Synth || cfg.Audio != before.Audio || cfg.UI != before.UI {
		t.Errorf("Validate changed the defaults: %+v", cfg)
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.SampleRate = 7
	cfg.Audio.Channels = 6
	cfg.Audio.BufferMillis = 1000
	cfg.Synth.Tempo = 999
	cfg.Synth.MinTempo = -1
	cfg.Synth.MaxTempo = 10
	cfg.Synth.Volume = 2
	cfg.Synth.Waveform = "  Square "
	cfg.Synth.Envelope = EnvelopeConfig{Attack: -1, Decay: 0.2, Sustain: 1.5, Release: -3}
	cfg.Synth.MelodicSteps = 13
	cfg.Synth.DrumSteps = 100
	cfg.UI.BaseOctave = 12
	cfg.UI.Root = -1
	cfg.Validate()

	tests := []struct {
		name      string
		got, want any
	}{
		{"sample rate", cfg.Audio.SampleRate, 44100},
		{"channels", cfg.Audio.Channels, 2},
		{"buffer", cfg.Audio.BufferMillis, 200},
		{"min tempo", cfg.Synth.MinTempo, 30.0},
		{"max tempo", cfg.Synth.MaxTempo, 300.0},
		{"tempo", cfg.Synth.Tempo, 300.0},
		{"volume", cfg.Synth.Volume, 1.0},
		{"waveform", cfg.Synth.Waveform, "square"},
		{"attack", cfg.Synth.Envelope.Attack, 0.0},
		{"sustain", cfg.Synth.Envelope.Sustain, 1.0},
		{"release", cfg.Synth.Envelope.Release, 0.0},
		{"melodic steps", cfg.Synth.MelodicSteps, 16},
		{"drum steps", cfg.Synth.DrumSteps, 32},
		{"octave", cfg.UI.BaseOctave, 8},
		{"root", cfg.UI.Root, 11},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Synth.Tempo != 120 {
		t.Errorf("missing file should give defaults, tempo %f", cfg.Synth.Tempo)
	}
}

func TestLoadFromOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"synth": {"tempo": 90, "waveform": "saw"}, "ui": {"scale": "minor", "root": 14}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Synth.Tempo != 90 || cfg.Synth.Waveform != "saw" {
		t.Errorf("file values lost: %+v", cfg.Synth)
	}
	if cfg.Synth.Volume != 0.5 || cfg.Audio.SampleRate != 44100 {
		t.Errorf("defaults not kept: volume %f rate %d", cfg.Synth.Volume, cfg.Audio.SampleRate)
	}
	if cfg.UI.Root != 2 {
		t.Errorf("root not wrapped: %d", cfg.UI.Root)
	}
}

func TestLoadFromBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{synth"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.UI.LastProject = "groove"
	cfg.MIDI.InputPort = "Keystation"
	cfg.AddController(ControllerConfig{PortName: "MPK mini", Type: ControllerKeyboard, AutoConnect: true, InputChannel: 10})

	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.UI.LastProject != "groove" || got.MIDI.InputPort != "Keystation" {
		t.Errorf("fields lost: %+v %+v", got.UI, got.MIDI)
	}
	kb := got.FindController("MPK mini")
	if kb == nil || kb.InputChannel != 10 {
		t.Errorf("controller lost: %+v", kb)
	}
	if n := len(got.AutoConnectControllers()); n != 2 {
		t.Errorf("auto-connect controllers: %d, want 2", n)
	}
}

func TestAddControllerUpdates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AddController(ControllerConfig{PortName: "Launchpad X LPX MIDI", Type: ControllerLaunchpadX})
	if len(cfg.Controllers) != 1 {
		t.Fatalf("duplicate controller added: %d", len(cfg.Controllers))
	}
	if cfg.Controllers[0].AutoConnect {
		t.Error("existing controller not replaced")
	}
}
