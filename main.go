package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"go-groovebox/audio"
	"go-groovebox/config"
	"go-groovebox/debug"
	"go-groovebox/engine"
	"go-groovebox/midi"
	"go-groovebox/synth"
	"go-groovebox/theme"
	"go-groovebox/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	headless := flag.Bool("headless", false, "run without a sound device")
	debugLog := flag.Bool("debug", false, "write ~/.config/go-groovebox/debug.log")
	project := flag.String("project", "", "pattern to load at startup and save to")
	noMIDI := flag.Bool("no-midi", false, "disable MIDI controller detection")
	list := flag.Bool("list", false, "list saved patterns and exit")
	flag.Parse()

	if *list {
		names, err := engine.ListPatterns()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("go-groovebox needs an interactive terminal")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *debugLog || cfg.Debug {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}
	if *project == "" {
		*project = cfg.UI.LastProject
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	if *project != "" {
		if err := eng.LoadPattern(*project); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	// Audio
	opts := audio.Options{
		SampleRate:   cfg.Audio.SampleRate,
		Channels:     cfg.Audio.Channels,
		BufferMillis: cfg.Audio.BufferMillis,
	}
	meter := audio.NewMeter(opts.SampleRate * opts.Channels / 10)
	eng.AttachMeter(meter)
	out, err := audio.Open(eng, opts, meter, *headless)
	if err != nil {
		fmt.Printf("No audio device (%v), running silent\n", err)
		debug.Log("audio", "falling back to null output: %v", err)
	}
	if err := out.Start(); err != nil {
		return err
	}
	defer out.Close()

	// MIDI controllers (hot-plug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var deviceMgr *midi.DeviceManager
	if !*noMIDI && cfg.MIDI.AutoConnect {
		deviceMgr = midi.NewDeviceManager(midiOptions(cfg))
		go deviceMgr.Run(ctx)
	}

	scale, err := synth.ParseScale(cfg.UI.Scale)
	if err != nil {
		debug.Log("ctrl", "config scale: %v", err)
	}
	th := theme.Default()
	if cfg.UI.Palette != "" {
		pal, err := theme.LoadGPL(cfg.UI.Palette)
		if err != nil {
			return err
		}
		th = theme.New(pal)
	}
	m := tui.NewModel(eng, deviceMgr, th, tui.Options{
		BaseOctave: cfg.UI.BaseOctave,
		Quantizer:  synth.Quantizer{Scale: scale, Root: cfg.UI.Root},
		Project:    *project,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())

	final, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(tui.Model); ok {
		cfg.UI.BaseOctave = fm.Octave()
		cfg.UI.LastProject = fm.Project()
		if err := cfg.Save(); err != nil {
			debug.Log("project", "save config: %v", err)
		}
	}
	return nil
}

func newEngine(cfg *config.Config) (*engine.Engine, error) {
	w, err := synth.ParseWaveform(cfg.Synth.Waveform)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	env := cfg.Synth.Envelope
	return engine.New(engine.Options{
		SampleRate: float64(cfg.Audio.SampleRate),
		Tempo:      cfg.Synth.Tempo,
		MinTempo:   cfg.Synth.MinTempo,
		MaxTempo:   cfg.Synth.MaxTempo,
		Volume:     cfg.Synth.Volume,
		Waveform:   w,
		Envelope: synth.ADSR{
			Attack:  env.Attack,
			Decay:   env.Decay,
			Sustain: env.Sustain,
			Release: env.Release,
		},
		MelodicSteps: cfg.Synth.MelodicSteps,
		DrumSteps:    cfg.Synth.DrumSteps,
	}), nil
}

func midiOptions(cfg *config.Config) midi.Options {
	opts := midi.Options{
		KeyboardPort: cfg.MIDI.InputPort,
		Keyboards:    true,
	}
	for _, c := range cfg.AutoConnectControllers() {
		if c.Type == config.ControllerKeyboard {
			opts.KeyboardPort = c.PortName
			opts.KeyboardChannel = c.InputChannel
		}
	}
	return opts
}
