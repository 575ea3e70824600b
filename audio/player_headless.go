//go:build headless

package audio

// Player is unavailable in headless builds
type Player struct{}

// NewPlayer always fails; callers fall back to NullPlayer
func NewPlayer(src Source, opts Options, meter *Meter) (*Player, error) {
	return nil, ErrNoDevice
}

func (p *Player) Read(b []byte) (int, error) { return len(b), nil }
func (p *Player) Start() error               { return nil }
func (p *Player) Close() error               { return nil }
func (p *Player) IsStarted() bool            { return false }
