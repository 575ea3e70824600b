package audio

// Output is a running sink for the engine
type Output interface {
	Start() error
	Close() error
	IsStarted() bool
}

// Open returns the sound device, or a NullPlayer when headless is set or no
// device can be opened. The error reports why the device was skipped.
func Open(src Source, opts Options, meter *Meter, headless bool) (Output, error) {
	if headless {
		return NewNullPlayer(src, opts, meter), nil
	}
	p, err := NewPlayer(src, opts, meter)
	if err != nil {
		return NewNullPlayer(src, opts, meter), err
	}
	return p, nil
}
