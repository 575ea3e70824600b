package audio

import (
	"sync"
	"time"

	"go-groovebox/debug"
)

// NullPlayer pulls buffers at the real-time rate and discards them. It keeps
// the sequencers running when there is no sound device.
type NullPlayer struct {
	src   Source
	opts  Options
	meter *Meter
	buf   []float32

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewNullPlayer creates a stopped null output
func NewNullPlayer(src Source, opts Options, meter *Meter) *NullPlayer {
	opts = opts.normalized()
	return &NullPlayer{
		src:   src,
		opts:  opts,
		meter: meter,
		buf:   make([]float32, opts.bufferFrames()*opts.Channels),
	}
}

// Start begins pulling in a goroutine
func (p *NullPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.started = true
	go p.loop(p.stop, p.done)
	debug.Log("audio", "null output started, %d Hz, %d frames per buffer", p.opts.SampleRate, p.opts.bufferFrames())
	return nil
}

func (p *NullPlayer) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.opts.bufferDuration())
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.Pull()
		}
	}
}

// Pull renders one buffer synchronously
func (p *NullPlayer) Pull() {
	p.src.Render(p.buf, p.opts.Channels)
	if p.meter != nil {
		p.meter.Update(p.buf)
	}
}

// Close stops the pull loop and waits for it to exit
func (p *NullPlayer) Close() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()
	<-done
	debug.Log("audio", "null output stopped")
	return nil
}

func (p *NullPlayer) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}
