// Package engine owns the shared session state and produces audio one
// sample at a time. A single mutex guards everything; the render path holds
// it once per sample or buffer, control actions hold it for one small,
// bounded mutation each.
package engine

import (
	"math"
	"sync"

	"go-groovebox/sequencer"
	"go-groovebox/synth"
)

// Options configures a new engine
type Options struct {
	SampleRate   float64
	Tempo        float64
	MinTempo     float64
	MaxTempo     float64
	Volume       float64
	Waveform     synth.Waveform
	Envelope     synth.ADSR
	MelodicSteps int
	DrumSteps    int
}

// DefaultOptions matches the stock configuration
func DefaultOptions() Options {
	return Options{
		SampleRate:   44100,
		Tempo:        120,
		MinTempo:     30,
		MaxTempo:     300,
		Volume:       0.5,
		Waveform:     synth.Sine,
		Envelope:     synth.DefaultADSR(),
		MelodicSteps: 16,
		DrumSteps:    16,
	}
}

// Control step sizes
const (
	TempoStep  = 5.0
	VolumeStep = 0.05
)

// Velocity used for sequencer notes
const sequencerVelocity = 1.0

// Engine is the shared session state of the instrument
type Engine struct {
	mu sync.Mutex

	sampleRate   float64
	defaultTempo float64
	minTempo     float64
	maxTempo     float64

	tempo    float64
	volume   float64
	waveform synth.Waveform

	voices *synth.VoicePool
	seq    *sequencer.Melodic
	drums  *sequencer.DrumMachine
	fx     *synth.EffectChain

	meter LevelSource
}

// New creates an engine with stopped transports and empty grids
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.SampleRate <= 0 {
		opts.SampleRate = def.SampleRate
	}
	if opts.MinTempo <= 0 {
		opts.MinTempo = def.MinTempo
	}
	if opts.MaxTempo < opts.MinTempo {
		opts.MaxTempo = max(def.MaxTempo, opts.MinTempo)
	}
	if opts.Tempo <= 0 {
		opts.Tempo = def.Tempo
	}
	opts.Tempo = min(max(opts.Tempo, opts.MinTempo), opts.MaxTempo)

	return &Engine{
		sampleRate:   opts.SampleRate,
		defaultTempo: opts.Tempo,
		minTempo:     opts.MinTempo,
		maxTempo:     opts.MaxTempo,
		tempo:        opts.Tempo,
		volume:       min(max(opts.Volume, 0), 1),
		waveform:     opts.Waveform,
		voices:       synth.NewVoicePool(opts.SampleRate, opts.Envelope),
		seq:          sequencer.NewMelodic(opts.SampleRate, opts.MelodicSteps),
		drums:        sequencer.NewDrumMachine(opts.SampleRate, opts.DrumSteps),
		fx:           synth.NewEffectChain(),
	}
}

// SampleRate returns the fixed output rate
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// GenerateSample produces one output frame
func (e *Engine) GenerateSample() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generate()
}

// Render fills buf with interleaved frames, duplicating each sample across
// channels. The lock is taken once for the whole buffer.
func (e *Engine) Render(buf []float32, channels int) {
	if channels < 1 {
		channels = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i+channels <= len(buf); i += channels {
		s := e.generate()
		for c := 0; c < channels; c++ {
			buf[i+c] = s
		}
	}
}

// generate runs the fixed per-frame pipeline; caller holds the lock
func (e *Engine) generate() float32 {
	// one tempo read feeds both clocks
	bpm := e.tempo

	// 1. melodic sequencer → voice pool. Voices are keyed by pitch, so a
	// sequencer note-off also releases a live note of the same pitch.
	if ev, ok := e.seq.Tick(bpm); ok {
		if ev.Off.Active {
			e.voices.NoteOff(ev.Off.Note)
		}
		if ev.On.Active {
			e.voices.NoteOn(ev.On.Note, e.waveform, sequencerVelocity)
		}
	}

	// 2. melodic bus
	mel := e.voices.Render()
	if n := e.voices.Len(); n > 1 {
		mel /= math.Sqrt(float64(n))
	}
	mel = e.fx.Process(mel)

	// 3. drum bus
	e.drums.Tick(bpm)
	drum := e.drums.Render()

	// 4. master gain and soft clip
	return float32(math.Tanh((mel + drum) * e.volume))
}
