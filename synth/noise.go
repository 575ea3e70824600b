package synth

// Noise is a xorshift32 white noise source. It is a plain value so every
// drum voice carries its own generator without allocating.
type Noise struct {
	state uint32
}

// NewNoise seeds a generator; a zero seed is replaced since xorshift would stick at 0
func NewNoise(seed uint32) Noise {
	if seed == 0 {
		seed = 0x9E3779B9
	}
	return Noise{state: seed}
}

// Next returns a sample uniformly distributed in [-1, 1)
func (n *Noise) Next() float64 {
	if n.state == 0 {
		n.state = 0x9E3779B9
	}
	x := n.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	n.state = x
	return float64(x)/(1<<31) - 1
}
