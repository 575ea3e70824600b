// Package audio pulls frames from the engine and hands them to an output
// device. The engine is only ever touched through Source.
package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// Source renders interleaved frames, one value duplicated across channels
type Source interface {
	Render(buf []float32, channels int)
}

// Options describes the output stream
type Options struct {
	SampleRate   int
	Channels     int
	BufferMillis int
}

// DefaultOptions is 44.1 kHz stereo with a 20 ms device buffer
func DefaultOptions() Options {
	return Options{SampleRate: 44100, Channels: 2, BufferMillis: 20}
}

// ErrNoDevice is returned when the binary was built without an output device
var ErrNoDevice = errors.New("audio output not available in this build")

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.SampleRate <= 0 {
		o.SampleRate = def.SampleRate
	}
	if o.Channels <= 0 {
		o.Channels = def.Channels
	}
	if o.BufferMillis <= 0 {
		o.BufferMillis = def.BufferMillis
	}
	return o
}

// bufferFrames is the number of frames in one device buffer
func (o Options) bufferFrames() int {
	return max(1, o.SampleRate*o.BufferMillis/1000)
}

func (o Options) bufferDuration() time.Duration {
	return time.Duration(o.BufferMillis) * time.Millisecond
}

// renderFrames fills b with float32LE frames from src, rendering through buf
// in as many passes as needed so buf is never reallocated. It returns the
// number of Render calls.
func renderFrames(b []byte, buf []float32, src Source, channels int, meter *Meter) int {
	chunk := len(buf) - len(buf)%channels
	samples := len(b) / 4
	calls := 0
	for off := 0; off < samples; off += chunk {
		part := buf[:min(chunk, samples-off)]
		src.Render(part, channels)
		out := b[off*4:]
		for i, s := range part {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
		}
		if meter != nil {
			meter.Update(part)
		}
		calls++
	}
	return calls
}
