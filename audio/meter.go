package audio

import (
	"math"
	"sync/atomic"

	"github.com/viterin/vek/vek32"
)

// Meter tracks the RMS and peak of the most recent buffer. Update runs on
// the audio goroutine, Level on any other.
type Meter struct {
	rms  atomic.Uint64
	peak atomic.Uint64
	tmp  []float32
}

// NewMeter preallocates scratch space for buffers up to size samples
func NewMeter(size int) *Meter {
	return &Meter{tmp: make([]float32, size)}
}

// Update measures buf
func (m *Meter) Update(buf []float32) {
	if len(buf) == 0 {
		return
	}
	if len(m.tmp) < len(buf) {
		m.tmp = make([]float32, len(buf))
	}
	tmp := m.tmp[:len(buf)]

	sq := vek32.Mul_Into(tmp, buf, buf)
	rms := math.Sqrt(float64(vek32.Mean(sq)))

	abs := vek32.Abs_Into(tmp, buf)
	peak := float64(vek32.Max(abs))

	m.rms.Store(math.Float64bits(rms))
	m.peak.Store(math.Float64bits(peak))
}

// Level returns the last measured RMS and peak
func (m *Meter) Level() (rms, peak float64) {
	return math.Float64frombits(m.rms.Load()), math.Float64frombits(m.peak.Load())
}

// Reset zeroes the readings
func (m *Meter) Reset() {
	m.rms.Store(0)
	m.peak.Store(0)
}
