package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-groovebox/debug"
	"go-groovebox/engine"
	"go-groovebox/midi"
	"go-groovebox/synth"
	"go-groovebox/theme"
)

// FrameRate is how often the view and Launchpad LEDs refresh
const FrameRate = 30

// Mode is which panel has keyboard focus
type Mode int

const (
	ModeKeyboard Mode = iota
	ModeSynthSeq
	ModeDrums
	numModes
)

func (m Mode) String() string {
	switch m {
	case ModeSynthSeq:
		return "Synth Seq"
	case ModeDrums:
		return "Drums"
	}
	return "Keyboard"
}

// Next cycles Keyboard → Synth Seq → Drums → Keyboard
func (m Mode) Next() Mode { return (m + 1) % numModes }

// Options are the UI preferences the model starts with
type Options struct {
	BaseOctave int
	Quantizer  synth.Quantizer
	Project    string
}

type heldNote struct {
	note uint8
	gen  uint64
}

type Model struct {
	Engine    *engine.Engine
	DeviceMgr *midi.DeviceManager // nil when MIDI is disabled
	Theme     *theme.Theme

	mode    Mode
	octave  int
	quant   synth.Quantizer
	project string

	// computer-keyboard notes waiting for their fallback release
	held map[string]heldNote
	gen  uint64
	// MIDI input note → note actually played after quantizing
	midiHeld map[uint8]uint8

	seqCursor int
	drumTrack int
	drumStep  int
	lpPage    int

	launchpad midi.Controller
	keyboards map[string]bool
	lastLEDs  []midi.LEDUpdate

	snap     engine.Snapshot
	status   string
	showHelp bool
	quitting bool
}

type frameMsg time.Time

type releaseMsg struct {
	key string
	gen uint64
}

type DeviceEventMsg midi.DeviceEvent

type noteMsg struct {
	ctrl midi.Controller
	ev   midi.NoteEvent
}

type padMsg struct {
	ctrl midi.Controller
	ev   midi.PadEvent
}

func NewModel(eng *engine.Engine, deviceMgr *midi.DeviceManager, th *theme.Theme, opts Options) Model {
	if opts.Project == "" {
		opts.Project = "default"
	}
	return Model{
		Engine:    eng,
		DeviceMgr: deviceMgr,
		Theme:     th,
		octave:    min(max(opts.BaseOctave, MinOctave), MaxOctave),
		quant:     opts.Quantizer,
		project:   opts.Project,
		held:      make(map[string]heldNote),
		midiHeld:  make(map[uint8]uint8),
		keyboards: make(map[string]bool),
		snap:      eng.Snapshot(),
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/FrameRate, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func listenNotes(ctrl midi.Controller) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ctrl.NoteEvents()
		if !ok {
			return nil
		}
		return noteMsg{ctrl: ctrl, ev: ev}
	}
}

func listenPads(ctrl midi.Controller) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ctrl.PadEvents()
		if !ok {
			return nil
		}
		return padMsg{ctrl: ctrl, ev: ev}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameTick()}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKey(msg.String())
		m.snap = m.Engine.Snapshot()
		return m, cmd

	case releaseMsg:
		if h, ok := m.held[msg.key]; ok && h.gen == msg.gen {
			m.Engine.StopNote(h.note)
			delete(m.held, msg.key)
		}

	case frameMsg:
		m.snap = m.Engine.Snapshot()
		m.syncLaunchpad()
		return m, frameTick()

	case tea.BlurMsg:
		m.releaseAll()

	case DeviceEventMsg:
		return m, m.handleDevice(midi.DeviceEvent(msg))

	case noteMsg:
		m.handleNote(msg.ev)
		return m, listenNotes(msg.ctrl)

	case padMsg:
		m.handlePad(msg.ev)
		m.snap = m.Engine.Snapshot()
		return m, listenPads(msg.ctrl)
	}

	return m, nil
}

// handleKey applies one key press and returns a fallback-release timer for
// note keys
func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "esc", "ctrl+c":
		m.quitting = true
		m.releaseAll()
		m.Engine.StopSequencer()
		m.Engine.StopDrums()
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return nil
	case "tab", "f2":
		m.releaseAll()
		m.mode = m.mode.Next()
		m.setStatus("Focus: %s", m.mode)
		return nil
	case "f1":
		m.setStatus("Wave: %s", m.Engine.CycleWaveform())
		return nil
	case "f3":
		m.toggleDrums()
		return nil
	case "f4":
		m.quant.Scale = m.quant.Scale.Next()
		m.setStatus("Scale: %s %s", m.quant.RootName(), m.quant.Scale)
		return nil
	case "f5":
		m.quant.CycleRoot()
		m.setStatus("Scale: %s %s", m.quant.RootName(), m.quant.Scale)
		return nil
	case "pgup":
		m.adjustTempo(engine.TempoStep)
		return nil
	case "pgdown":
		m.adjustTempo(-engine.TempoStep)
		return nil
	case "ctrl+t":
		m.Engine.ResetTempo()
		m.setStatus("BPM: %.0f", m.Engine.Tempo())
		return nil
	case "ctrl+r":
		m.Engine.RewindSequencer()
		m.Engine.RewindDrums()
		m.setStatus("Rewind")
		return nil
	case "ctrl+s":
		m.savePattern()
		return nil
	case "ctrl+o":
		m.loadPattern()
		return nil
	}

	switch m.mode {
	case ModeDrums:
		m.drumKey(key)
		return nil
	case ModeSynthSeq:
		m.seqKey(key)
		return nil
	}
	return m.keyboardKey(key)
}

func (m *Model) keyboardKey(key string) tea.Cmd {
	switch key {
	case "left":
		m.setOctave(m.octave - 1)
	case "right":
		m.setOctave(m.octave + 1)
	case "up":
		m.Engine.AdjustVolume(engine.VolumeStep)
		m.setStatus("Volume: %.0f%%", m.Engine.Snapshot().Volume*100)
	case "down":
		m.Engine.AdjustVolume(-engine.VolumeStep)
		m.setStatus("Volume: %.0f%%", m.Engine.Snapshot().Volume*100)
	default:
		return m.pressNote(key)
	}
	return nil
}

// pressNote starts a note, or extends it on auto-repeat, and arms its
// fallback release
func (m *Model) pressNote(key string) tea.Cmd {
	note, ok := m.noteFor(key)
	if !ok {
		return nil
	}
	h, down := m.held[key]
	if !down {
		m.Engine.PlayNote(note, 1)
		h.note = note
	}
	m.gen++
	h.gen = m.gen
	m.held[key] = h

	gen := h.gen
	return tea.Tick(FallbackRelease, func(time.Time) tea.Msg {
		return releaseMsg{key: key, gen: gen}
	})
}

func (m *Model) noteFor(key string) (uint8, bool) {
	note, ok := KeyToNote(key, m.octave)
	if !ok {
		return 0, false
	}
	return m.quant.Quantize(note), true
}

func (m *Model) releaseAll() {
	for key, h := range m.held {
		m.Engine.StopNote(h.note)
		delete(m.held, key)
	}
}

func (m *Model) setOctave(octave int) {
	if octave < MinOctave || octave > MaxOctave || octave == m.octave {
		return
	}
	m.releaseAll()
	m.octave = octave
	m.setStatus("Octave: %d", m.octave)
}

func (m *Model) adjustTempo(delta float64) {
	m.Engine.AdjustTempo(delta)
	m.setStatus("BPM: %.0f", m.Engine.Tempo())
}

func (m *Model) seqKey(key string) {
	n := max(1, len(m.snap.SeqSteps))
	switch key {
	case "left":
		m.seqCursor = (m.seqCursor + n - 1) % n
	case "right":
		m.seqCursor = (m.seqCursor + 1) % n
	case "up":
		m.adjustTempo(engine.TempoStep)
	case "down":
		m.adjustTempo(-engine.TempoStep)
	case " ":
		if m.Engine.ToggleSequencer() {
			m.setStatus("Seq: Playing")
		} else {
			m.setStatus("Seq: Paused")
		}
	case "backspace", "delete":
		m.Engine.ClearStep(m.seqCursor)
		m.setStatus("Step %d cleared", m.seqCursor+1)
	case "]":
		n = m.Engine.CycleMelodicSteps()
		if m.seqCursor >= n {
			m.seqCursor = 0
		}
		m.setStatus("Seq steps: %d", n)
	case "+":
		m.Engine.AdjustStepNote(m.seqCursor, 1)
	case "_":
		m.Engine.AdjustStepNote(m.seqCursor, -1)
	default:
		note, ok := m.noteFor(key)
		if !ok {
			return
		}
		m.Engine.SetStepNote(m.seqCursor, note)
		m.setStatus("Step %d: %s", m.seqCursor+1, synth.NoteName(note))
		m.seqCursor = (m.seqCursor + 1) % n
	}
}

func (m *Model) drumKey(key string) {
	n := max(1, m.snap.DrumLen)
	switch key {
	case "up":
		m.drumTrack = (m.drumTrack + synth.NumDrumKinds - 1) % synth.NumDrumKinds
	case "down":
		m.drumTrack = (m.drumTrack + 1) % synth.NumDrumKinds
	case "left":
		m.drumStep = (m.drumStep + n - 1) % n
	case "right":
		m.drumStep = (m.drumStep + 1) % n
	case "enter":
		m.toggleDrums()
	case " ":
		m.Engine.ToggleDrumStep(m.drumTrack, m.drumStep)
	case "backspace", "delete":
		m.Engine.ClearDrumStep(m.drumTrack, m.drumStep)
	case "ctrl+x":
		m.Engine.ClearDrumTrack(m.drumTrack)
		m.setStatus("%s cleared", synth.DrumKind(m.drumTrack))
	case "]":
		n = m.Engine.CycleDrumSteps()
		if m.drumStep >= n {
			m.drumStep = 0
		}
		m.setStatus("Drum steps: %d", n)
	case "\\":
		m.Engine.ToggleMute(m.drumTrack)
		m.reportTrack()
	case "=":
		m.Engine.TrackVolumeUp(m.drumTrack)
		m.reportTrack()
	case "-":
		m.Engine.TrackVolumeDown(m.drumTrack)
		m.reportTrack()
	default:
		if kind, ok := DrumKey(key); ok {
			m.Engine.TriggerDrum(kind)
		}
	}
}

func (m *Model) reportTrack() {
	t := m.Engine.Snapshot().Tracks[m.drumTrack]
	if t.Muted {
		m.setStatus("%s muted, vol: %.0f%%", t.Kind, t.Volume*100)
		return
	}
	m.setStatus("%s vol: %.0f%%", t.Kind, t.Volume*100)
}

func (m *Model) toggleDrums() {
	if m.Engine.ToggleDrums() {
		m.setStatus("Drums: Playing")
	} else {
		m.setStatus("Drums: Stopped")
	}
}

func (m *Model) savePattern() {
	if err := m.Engine.SavePattern(m.project); err != nil {
		debug.Log("project", "save %s: %v", m.project, err)
		m.setStatus("Save failed: %v", err)
		return
	}
	debug.Log("project", "saved %s", m.project)
	m.setStatus("Saved %s", m.project)
}

func (m *Model) loadPattern() {
	m.releaseAll()
	if err := m.Engine.LoadPattern(m.project); err != nil {
		debug.Log("project", "load %s: %v", m.project, err)
		m.setStatus("Load failed: %v", err)
		return
	}
	debug.Log("project", "loaded %s", m.project)
	m.seqCursor, m.drumStep = 0, 0
	m.setStatus("Loaded %s", m.project)
}

func (m *Model) handleDevice(ev midi.DeviceEvent) tea.Cmd {
	next := ListenForDevices(m.DeviceMgr)
	switch ev.Type {
	case midi.DeviceConnected:
		switch ev.Controller.Type() {
		case midi.ControllerLaunchpad:
			m.launchpad = ev.Controller
			m.lastLEDs = nil
			m.lpPage = 0
			m.setStatus("Launchpad connected")
			return tea.Batch(next, listenPads(ev.Controller))
		case midi.ControllerKeyboard:
			m.keyboards[ev.ID] = true
			m.setStatus("Keyboard: %s", ev.ID)
			return tea.Batch(next, listenNotes(ev.Controller))
		}
	case midi.DeviceDisconnected:
		if m.launchpad != nil && m.launchpad.ID() == ev.ID {
			m.launchpad = nil
			m.lastLEDs = nil
			m.setStatus("Launchpad disconnected")
		}
		if m.keyboards[ev.ID] {
			delete(m.keyboards, ev.ID)
			for in, out := range m.midiHeld {
				m.Engine.StopNote(out)
				delete(m.midiHeld, in)
			}
			m.setStatus("Keyboard disconnected")
		}
	}
	return next
}

// handleNote plays MIDI keyboard input; note offs release whatever the
// quantizer turned the note into
func (m *Model) handleNote(ev midi.NoteEvent) {
	if ev.On {
		note := m.quant.Quantize(ev.Note)
		if prev, ok := m.midiHeld[ev.Note]; ok && prev != note {
			m.Engine.StopNote(prev)
		}
		m.midiHeld[ev.Note] = note
		m.Engine.PlayNote(note, ev.Gain())
		return
	}
	if note, ok := m.midiHeld[ev.Note]; ok {
		m.Engine.StopNote(note)
		delete(m.midiHeld, ev.Note)
	}
}

func (m *Model) gridState() midi.GridState {
	st := midi.GridState{
		Length:  m.snap.DrumLen,
		Current: m.snap.DrumCurrent,
		Playing: m.snap.DrumPlaying,
		Page:    min(m.lpPage, midi.Pages(m.snap.DrumLen)-1),
	}
	for i := range m.snap.Tracks {
		if i >= midi.GridTracks {
			break
		}
		st.Steps[i] = m.snap.Tracks[i].Steps
		st.Muted[i] = m.snap.Tracks[i].Muted
	}
	return st
}

func (m *Model) handlePad(ev midi.PadEvent) {
	action, track, step := midi.ResolvePad(ev.Row, ev.Col, m.gridState())
	switch action {
	case midi.PadToggleStep:
		m.Engine.ToggleDrumStep(track, step)
	case midi.PadToggleMute:
		m.Engine.ToggleMute(track)
	case midi.PadSelectPage:
		m.lpPage = step
	case midi.PadTransport:
		m.toggleDrums()
	}
}

// syncLaunchpad sends only the pads that changed since the last frame
func (m *Model) syncLaunchpad() {
	if m.launchpad == nil {
		return
	}
	next := midi.GridUpdates(m.gridState())
	diff := midi.DiffUpdates(m.lastLEDs, next)
	if len(diff) == 0 {
		return
	}
	if err := m.launchpad.SetLEDBatch(diff); err != nil {
		debug.Log("midi", "launchpad leds: %v", err)
	}
	m.lastLEDs = next
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	debug.Log("ctrl", "%s", m.status)
}

// Octave returns the computer keyboard's base octave
func (m Model) Octave() int { return m.octave }

// Project returns the pattern name used by save and load
func (m Model) Project() string { return m.project }

// Mode returns the focused panel
func (m Model) Mode() Mode { return m.mode }
