package engine

import (
	"math"
	"sync"
	"testing"

	"go-groovebox/sequencer"
	"go-groovebox/synth"
)

func testEngine() *Engine {
	opts := DefaultOptions()
	opts.SampleRate = 8000
	return New(opts)
}

func TestNewSanitizesOptions(t *testing.T) {
	e := New(Options{Tempo: 1000, Volume: 3})
	if e.SampleRate() != 44100 {
		t.Errorf("sample rate: %f", e.SampleRate())
	}
	s := e.Snapshot()
	if s.Tempo != 300 {
		t.Errorf("tempo not clamped: %f", s.Tempo)
	}
	if s.Volume != 1 {
		t.Errorf("volume not clamped: %f", s.Volume)
	}
	if len(s.SeqSteps) != 16 || s.DrumLen != 16 {
		t.Errorf("invalid step counts not defaulted: %d %d", len(s.SeqSteps), s.DrumLen)
	}
}

func TestSilentWhenIdle(t *testing.T) {
	e := testEngine()
	for i := 0; i < 1000; i++ {
		if s := e.GenerateSample(); s != 0 {
			t.Fatalf("idle engine produced %f at %d", s, i)
		}
	}
}

func TestZeroVolumeIsSilent(t *testing.T) {
	e := testEngine()
	e.SetVolume(0)
	e.PlayNote(60, 1)
	e.TriggerDrum(synth.Kick)
	for i := 0; i < 2000; i++ {
		if s := e.GenerateSample(); s != 0 {
			t.Fatalf("zero volume produced %f", s)
		}
	}
}

func TestOutputBounded(t *testing.T) {
	e := testEngine()
	e.SetVolume(1)
	e.SetWaveform(synth.Square)
	for n := uint8(48); n < 64; n++ {
		e.PlayNote(n, 1)
	}
	for k := synth.DrumKind(0); k < synth.NumDrumKinds; k++ {
		e.TriggerDrum(k)
	}

	buf := make([]float32, 4000)
	e.Render(buf, 1)
	var peak float64
	for i, s := range buf {
		if math.IsNaN(float64(s)) || math.Abs(float64(s)) > 1 {
			t.Fatalf("sample %d out of range: %f", i, s)
		}
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	if peak == 0 {
		t.Error("loaded engine was silent")
	}
}

func TestRenderDuplicatesChannels(t *testing.T) {
	e := testEngine()
	e.PlayNote(69, 1)

	buf := make([]float32, 2*500+1)
	e.Render(buf, 2)
	for i := 0; i+1 < len(buf)-1; i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: left %f right %f", i/2, buf[i], buf[i+1])
		}
	}
	if buf[len(buf)-1] != 0 {
		t.Error("partial trailing frame was written")
	}
}

func TestSequencerDrivesVoices(t *testing.T) {
	e := testEngine()
	e.SetStepNote(0, 60)
	e.SetStepNote(1, 64)
	e.StartSequencer()

	sps := sequencer.SamplesPerStep(e.Tempo(), e.SampleRate())
	for i := 0; i < sps/2; i++ {
		e.GenerateSample()
	}
	s := e.Snapshot()
	if len(s.ActiveNotes) != 1 || s.ActiveNotes[0] != 60 {
		t.Fatalf("step 0 notes: %v", s.ActiveNotes)
	}

	for i := 0; i < sps; i++ {
		e.GenerateSample()
	}
	if v := e.voices.Voice(60); v == nil || v.Envelope().Stage() != synth.StageRelease {
		t.Error("step 0 note not released at step 1")
	}
	if e.voices.Voice(64) == nil {
		t.Error("step 1 note not playing")
	}

	e.StopSequencer()
	if v := e.voices.Voice(64); v == nil || v.Envelope().Stage() != synth.StageRelease {
		t.Error("stop did not release the held note")
	}
}

func TestSequencerSharesVoiceWithLiveNote(t *testing.T) {
	e := testEngine()
	e.SetStepNote(0, 60)
	e.PlayNote(60, 1)
	e.StartSequencer()

	sps := sequencer.SamplesPerStep(e.Tempo(), e.SampleRate())
	for i := 0; i < sps/2; i++ {
		e.GenerateSample()
	}
	if n := e.Snapshot().MelodicVoices; n != 1 {
		t.Fatalf("voices: %d, want one per pitch", n)
	}

	for i := 0; i < sps; i++ {
		e.GenerateSample()
	}
	if v := e.voices.Voice(60); v == nil || v.Envelope().Stage() != synth.StageRelease {
		t.Error("step note-off did not release the shared pitch")
	}
}

func TestTempoControls(t *testing.T) {
	e := testEngine()
	e.AdjustTempo(TempoStep)
	if e.Tempo() != 125 {
		t.Errorf("tempo up: %f", e.Tempo())
	}
	e.SetTempo(5)
	if e.Tempo() != 30 {
		t.Errorf("tempo low clamp: %f", e.Tempo())
	}
	e.SetTempo(math.NaN())
	if e.Tempo() != 30 {
		t.Errorf("NaN tempo accepted: %f", e.Tempo())
	}
	e.ResetTempo()
	if e.Tempo() != 120 {
		t.Errorf("reset tempo: %f", e.Tempo())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := testEngine()
	e.SetStepNote(2, 67)
	e.SetDrumStep(int(synth.Kick), 0, true)
	e.ToggleMute(int(synth.Snare))

	s := e.Snapshot()
	if st := s.SeqSteps[2]; !st.Active || st.Note != 67 {
		t.Errorf("seq step 2: %+v", st)
	}
	if !s.Tracks[synth.Kick].Steps[0] || !s.Tracks[synth.Snare].Muted {
		t.Error("drum state missing from snapshot")
	}

	s.SeqSteps[2] = sequencer.Step{}
	s.Tracks[synth.Kick].Steps[0] = false
	again := e.Snapshot()
	if !again.SeqSteps[2].Active || !again.Tracks[synth.Kick].Steps[0] {
		t.Error("snapshot shares memory with the engine")
	}
}

type fixedLevel struct{ rms, peak float64 }

func (f fixedLevel) Level() (float64, float64) { return f.rms, f.peak }

func TestSnapshotReadsMeter(t *testing.T) {
	e := testEngine()
	e.AttachMeter(fixedLevel{0.25, 0.5})
	s := e.Snapshot()
	if s.LevelRMS != 0.25 || s.LevelPeak != 0.5 {
		t.Errorf("levels: %f %f", s.LevelRMS, s.LevelPeak)
	}
}

func TestCycleControls(t *testing.T) {
	e := testEngine()
	if w := e.CycleWaveform(); w != synth.Square {
		t.Errorf("waveform: %s", w)
	}
	if n := e.CycleMelodicSteps(); n != 24 {
		t.Errorf("melodic steps: %d", n)
	}
	if n := e.CycleDrumSteps(); n != 24 {
		t.Errorf("drum steps: %d", n)
	}
	if !e.ToggleDrums() || e.ToggleDrums() {
		t.Error("ToggleDrums should report start then stop")
	}
	if !e.ToggleSequencer() {
		t.Error("ToggleSequencer should start")
	}
}

func TestConcurrentControlAndRender(t *testing.T) {
	e := testEngine()
	e.StartSequencer()
	e.StartDrums()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]float32, 256)
		for i := 0; i < 200; i++ {
			e.Render(buf, 2)
		}
	}()

	for i := 0; i < 500; i++ {
		e.SetStepNote(i%16, uint8(48+i%24))
		e.ToggleDrumStep(i%sequencer.NumTracks, i%16)
		e.AdjustTempo(float64(i%3 - 1))
		e.PlayNote(uint8(60+i%12), 0.8)
		e.StopNote(uint8(60 + (i+6)%12))
		if i%50 == 0 {
			e.CycleDrumSteps()
			e.CycleMelodicSteps()
		}
		_ = e.Snapshot()
	}
	wg.Wait()

	s := e.Snapshot()
	if s.SeqCurrent >= len(s.SeqSteps) || s.DrumCurrent >= s.DrumLen {
		t.Errorf("position out of range: seq %d/%d drum %d/%d",
			s.SeqCurrent, len(s.SeqSteps), s.DrumCurrent, s.DrumLen)
	}
}
