package synth

// MaxNotes is the number of addressable MIDI notes
const MaxNotes = 128

// MelodicVoice is one sounding note
type MelodicVoice struct {
	Note     uint8
	Waveform Waveform
	Velocity float64

	osc  Oscillator
	freq float64
	env  Envelope
}

// Envelope exposes the voice's envelope for inspection
func (v *MelodicVoice) Envelope() *Envelope { return &v.env }

// VoicePool holds at most one voice per note number. Slots live in a fixed
// arena indexed by note; the active list is preallocated so note on/off and
// rendering never allocate.
type VoicePool struct {
	sampleRate float64
	adsr       ADSR

	slots  [MaxNotes]MelodicVoice
	live   [MaxNotes]bool
	active []uint8
}

// NewVoicePool creates an empty pool
func NewVoicePool(sampleRate float64, adsr ADSR) *VoicePool {
	return &VoicePool{
		sampleRate: sampleRate,
		adsr:       adsr.Clamped(),
		active:     make([]uint8, 0, MaxNotes),
	}
}

// SetEnvelope changes the envelope of new and sounding voices
func (p *VoicePool) SetEnvelope(adsr ADSR) {
	p.adsr = adsr.Clamped()
	for _, n := range p.active {
		p.slots[n].env.SetParams(p.adsr)
	}
}

// Envelope returns the pool's envelope settings
func (p *VoicePool) Envelope() ADSR { return p.adsr }

// NoteOn starts the voice for note, or retriggers it from its current level
func (p *VoicePool) NoteOn(note uint8, w Waveform, velocity float64) {
	if note >= MaxNotes {
		return
	}
	v := &p.slots[note]
	if !p.live[note] {
		*v = MelodicVoice{
			Note: note,
			freq: NoteToFreq(note),
			env:  NewEnvelope(p.adsr, p.sampleRate),
		}
		p.live[note] = true
		p.active = append(p.active, note)
	}
	v.Waveform = w
	v.Velocity = min(max(velocity, 0), 1)
	v.env.Trigger()
}

// NoteOff releases note; unknown notes are ignored
func (p *VoicePool) NoteOff(note uint8) {
	if note >= MaxNotes || !p.live[note] {
		return
	}
	p.slots[note].env.Release()
}

// ReleaseAll releases every sounding voice
func (p *VoicePool) ReleaseAll() {
	for _, n := range p.active {
		p.slots[n].env.Release()
	}
}

// Render advances every voice one sample, returns the sum and frees voices
// whose envelope went idle
func (p *VoicePool) Render() float64 {
	var sum float64
	for i := 0; i < len(p.active); {
		n := p.active[i]
		v := &p.slots[n]
		amp := v.env.Next()
		sum += v.osc.Next(v.Waveform, v.freq, p.sampleRate) * amp * v.Velocity

		if !v.env.Active() {
			// swap-remove keeps the list dense
			p.live[n] = false
			last := len(p.active) - 1
			p.active[i] = p.active[last]
			p.active = p.active[:last]
			continue
		}
		i++
	}
	return sum
}

// Len returns the number of sounding voices
func (p *VoicePool) Len() int { return len(p.active) }

// Voice returns the voice for note, or nil
func (p *VoicePool) Voice(note uint8) *MelodicVoice {
	if note >= MaxNotes || !p.live[note] {
		return nil
	}
	return &p.slots[note]
}

// ActiveNotes appends the sounding notes in ascending order to dst
func (p *VoicePool) ActiveNotes(dst []uint8) []uint8 {
	for n := 0; n < MaxNotes; n++ {
		if p.live[n] {
			dst = append(dst, uint8(n))
		}
	}
	return dst
}
