package synth

// Effect is a mono single-sample processor
type Effect interface {
	Process(sample float64) float64
	// Reset clears internal state such as delay lines or filter memory
	Reset()
	Name() string
}

// EffectChain runs effects in registration order. Every bus and every drum
// track owns one, and mixing always goes through Process, so inserting an
// effect needs no other change.
type EffectChain struct {
	effects []Effect
}

// NewEffectChain creates a chain holding effects in order
func NewEffectChain(effects ...Effect) *EffectChain {
	c := &EffectChain{}
	for _, fx := range effects {
		c.Add(fx)
	}
	return c
}

// Add appends an effect to the end of the chain
func (c *EffectChain) Add(fx Effect) *EffectChain {
	if fx != nil {
		c.effects = append(c.effects, fx)
	}
	return c
}

// Process feeds sample through every effect, left to right
func (c *EffectChain) Process(sample float64) float64 {
	if len(c.effects) == 0 {
		return sample
	}
	for _, fx := range c.effects {
		sample = fx.Process(sample)
	}
	return sample
}

// Reset clears every effect's state; the effect list is unchanged
func (c *EffectChain) Reset() {
	for _, fx := range c.effects {
		fx.Reset()
	}
}

// IsEmpty returns true if the chain has no effects
func (c *EffectChain) IsEmpty() bool {
	return len(c.effects) == 0
}

// Len returns the number of effects
func (c *EffectChain) Len() int {
	return len(c.effects)
}

// Names lists effect names in processing order
func (c *EffectChain) Names() []string {
	names := make([]string, len(c.effects))
	for i, fx := range c.effects {
		names[i] = fx.Name()
	}
	return names
}
