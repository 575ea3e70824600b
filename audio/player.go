//go:build !headless

package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"

	"go-groovebox/debug"
)

// Player streams the engine to the default sound device through oto
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	opts   Options
	meter  *Meter

	src   atomic.Pointer[sourceRef] // cleared on Close without blocking Read
	buf   []float32                 // preallocated frame buffer, never grown
	split atomic.Uint64

	mu      sync.Mutex // setup and transport only
	started bool
}

type sourceRef struct{ Source }

// NewPlayer opens the sound device. It blocks until the device is ready.
func NewPlayer(src Source, opts Options, meter *Meter) (*Player, error) {
	opts = opts.normalized()
	op := &oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: opts.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   opts.bufferDuration(),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	p := &Player{
		ctx:   ctx,
		opts:  opts,
		meter: meter,
		buf:   make([]float32, opts.bufferFrames()*opts.Channels*2),
	}
	p.src.Store(&sourceRef{src})
	p.player = ctx.NewPlayer(p)
	debug.Log("audio", "device open, %d Hz, %d ch, buffer %v", opts.SampleRate, opts.Channels, op.BufferSize)
	return p, nil
}

// Read implements io.Reader for oto; it renders whole frames only
func (p *Player) Read(b []byte) (int, error) {
	ref := p.src.Load()
	frameBytes := 4 * p.opts.Channels
	frames := len(b) / frameBytes
	n := frames * frameBytes
	if ref == nil || frames == 0 {
		clear(b[:n])
		return n, nil
	}

	calls := renderFrames(b[:n], p.buf, ref, p.opts.Channels, p.meter)
	if calls > 1 {
		p.split.Add(1)
	}

	debug.LogEvery(500, "audio", "read %d frames, %d split reads", frames, p.split.Load())
	return n, nil
}

// Start begins playback
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
		debug.Log("audio", "playback started")
	}
	return nil
}

// Close stops playback and releases the player
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil {
		return nil
	}
	p.src.Store(nil)
	err := p.player.Close()
	p.player = nil
	p.started = false
	debug.Log("audio", "playback closed")
	if err != nil {
		return fmt.Errorf("close audio player: %w", err)
	}
	return nil
}

func (p *Player) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}
