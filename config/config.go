package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX    ControllerType = "launchpad-x"
	ControllerLaunchpadMini ControllerType = "launchpad-mini"
	ControllerKeyboard      ControllerType = "keyboard"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName     string         `json:"portName"`
	Type         ControllerType `json:"type"`
	AutoConnect  bool           `json:"autoConnect"`
	InputChannel int            `json:"inputChannel,omitempty"` // for keyboards, 0 = omni
}

// AudioConfig describes the output stream
type AudioConfig struct {
	SampleRate   int `json:"sampleRate"`
	Channels     int `json:"channels"`
	BufferMillis int `json:"bufferMillis"`
}

// EnvelopeConfig is the melodic ADSR in seconds, sustain 0-1
type EnvelopeConfig struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

// SynthConfig holds the startup sound and grid settings
type SynthConfig struct {
	Tempo        float64        `json:"tempo"`
	MinTempo     float64        `json:"minTempo"`
	MaxTempo     float64        `json:"maxTempo"`
	Volume       float64        `json:"volume"`
	Waveform     string         `json:"waveform"`
	Envelope     EnvelopeConfig `json:"envelope"`
	MelodicSteps int            `json:"melodicSteps"`
	DrumSteps    int            `json:"drumSteps"`
}

// MIDIConfig controls hot-plug detection
type MIDIConfig struct {
	InputPort   string `json:"inputPort,omitempty"` // substring match, empty = any keyboard
	AutoConnect bool   `json:"autoConnect"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	BaseOctave  int    `json:"baseOctave"`
	Scale       string `json:"scale"`
	Root        int    `json:"root"`
	LastProject string `json:"lastProject,omitempty"`
	Palette     string `json:"palette,omitempty"` // GIMP .gpl file, empty = built-in
}

// Config is the main configuration structure
type Config struct {
	Audio       AudioConfig        `json:"audio"`
	Synth       SynthConfig        `json:"synth"`
	MIDI        MIDIConfig         `json:"midi"`
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	UI          UIConfig           `json:"ui"`
	Debug       bool               `json:"debug,omitempty"`
}

// Allowed grid lengths
var stepCounts = []int{8, 16, 24, 32}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:   44100,
			Channels:     2,
			BufferMillis: 20,
		},
		Synth: SynthConfig{
			Tempo:    120,
			MinTempo: 30,
			MaxTempo: 300,
			Volume:   0.5,
			Waveform: "sine",
			Envelope: EnvelopeConfig{
				Attack:  0.01,
				Decay:   0.1,
				Sustain: 0.7,
				Release: 0.3,
			},
			MelodicSteps: 16,
			DrumSteps:    16,
		},
		MIDI: MIDIConfig{AutoConnect: true},
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
		UI: UIConfig{
			BaseOctave: 4,
			Scale:      "off",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-groovebox"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults and validates the result
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Validate clamps every field into its usable range
func (c *Config) Validate() {
	def := DefaultConfig()

	a := &c.Audio
	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		a.SampleRate = def.Audio.SampleRate
	}
	if a.Channels < 1 || a.Channels > 2 {
		a.Channels = def.Audio.Channels
	}
	a.BufferMillis = clampInt(a.BufferMillis, 5, 200)

	s := &c.Synth
	if !positive(s.MinTempo) {
		s.MinTempo = def.Synth.MinTempo
	}
	if !positive(s.MaxTempo) || s.MaxTempo < s.MinTempo {
		s.MaxTempo = math.Max(def.Synth.MaxTempo, s.MinTempo)
	}
	if !positive(s.Tempo) {
		s.Tempo = def.Synth.Tempo
	}
	s.Tempo = math.Min(math.Max(s.Tempo, s.MinTempo), s.MaxTempo)
	s.Volume = clamp01(s.Volume)
	s.Waveform = strings.ToLower(strings.TrimSpace(s.Waveform))
	if s.Waveform == "" {
		s.Waveform = def.Synth.Waveform
	}
	s.Envelope.Attack = math.Max(s.Envelope.Attack, 0)
	s.Envelope.Decay = math.Max(s.Envelope.Decay, 0)
	s.Envelope.Release = math.Max(s.Envelope.Release, 0)
	s.Envelope.Sustain = clamp01(s.Envelope.Sustain)
	s.MelodicSteps = snapSteps(s.MelodicSteps)
	s.DrumSteps = snapSteps(s.DrumSteps)

	c.UI.BaseOctave = clampInt(c.UI.BaseOctave, 0, 8)
	c.UI.Root = ((c.UI.Root % 12) + 12) % 12
	if c.UI.Scale == "" {
		c.UI.Scale = def.UI.Scale
	}
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}

// snapSteps returns the allowed grid length nearest to n
func snapSteps(n int) int {
	best := stepCounts[0]
	for _, c := range stepCounts {
		if abs(c-n) < abs(best-n) {
			best = c
		}
	}
	return best
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
