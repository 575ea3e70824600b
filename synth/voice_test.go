package synth

import (
	"slices"
	"testing"
)

func TestVoicePoolNoteOffRemovesVoice(t *testing.T) {
	adsr := DefaultADSR()
	p := NewVoicePool(testRate, adsr)
	p.NoteOn(60, Sine, 1)

	for i := 0; i < 1000; i++ {
		p.Render()
	}
	if p.Len() != 1 {
		t.Fatalf("voices after note on: got %d, want 1", p.Len())
	}

	p.NoteOff(60)
	if p.Len() != 1 {
		t.Fatal("voice removed before its release finished")
	}
	for i := 0; i < int(adsr.Release*testRate)+2; i++ {
		p.Render()
	}
	if p.Len() != 0 {
		t.Errorf("voices after release: got %d, want 0", p.Len())
	}
	if p.Voice(60) != nil {
		t.Error("released voice still addressable")
	}
}

func TestVoicePoolUnknownNoteOff(t *testing.T) {
	p := NewVoicePool(testRate, DefaultADSR())
	p.NoteOn(64, Square, 1)
	p.NoteOff(65)
	p.NoteOff(200)
	if p.Len() != 1 {
		t.Errorf("unknown note off changed pool: %d voices", p.Len())
	}
	if v := p.Voice(64); v == nil || v.Envelope().Stage() != StageAttack {
		t.Error("note 64 should still be in attack")
	}
}

func TestVoicePoolOneVoicePerNote(t *testing.T) {
	p := NewVoicePool(testRate, DefaultADSR())
	p.NoteOn(60, Sine, 1)
	p.Render()
	p.NoteOn(60, Sawtooth, 0.5)
	if p.Len() != 1 {
		t.Fatalf("retrigger added a voice: %d", p.Len())
	}
	v := p.Voice(60)
	if v.Waveform != Sawtooth || v.Velocity != 0.5 {
		t.Errorf("retrigger did not update voice: %+v", *v)
	}
}

func TestVoicePoolActiveNotesSorted(t *testing.T) {
	p := NewVoicePool(testRate, DefaultADSR())
	for _, n := range []uint8{67, 60, 64} {
		p.NoteOn(n, Sine, 1)
	}
	got := p.ActiveNotes(nil)
	if !slices.Equal(got, []uint8{60, 64, 67}) {
		t.Errorf("ActiveNotes = %v", got)
	}
}

func TestVoicePoolReleaseAll(t *testing.T) {
	adsr := DefaultADSR()
	p := NewVoicePool(testRate, adsr)
	for n := uint8(48); n < 56; n++ {
		p.NoteOn(n, Triangle, 1)
	}
	p.ReleaseAll()
	for i := 0; i < int(adsr.Release*testRate)+2; i++ {
		p.Render()
	}
	if p.Len() != 0 {
		t.Errorf("voices after ReleaseAll: %d", p.Len())
	}
}

func TestVoicePoolSilentWhenEmpty(t *testing.T) {
	p := NewVoicePool(testRate, DefaultADSR())
	for i := 0; i < 100; i++ {
		if v := p.Render(); v != 0 {
			t.Fatalf("empty pool rendered %f", v)
		}
	}
}
