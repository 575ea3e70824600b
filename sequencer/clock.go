package sequencer

import "math"

// Allowed step counts, cycled in this order
var StepCounts = [...]int{8, 16, 24, 32}

// MaxSteps is the largest grid length
const MaxSteps = 32

// SamplesPerStep converts tempo to sixteenth-note length in samples.
// Rounded to whole samples and never below one.
func SamplesPerStep(bpm, sampleRate float64) int {
	if bpm <= 0 || sampleRate <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return 1
	}
	sps := math.Round(sampleRate * 60 / (bpm * 4))
	if sps < 1 || math.IsInf(sps, 0) {
		return 1
	}
	return int(sps)
}

// ValidStepCount reports whether n is one of StepCounts
func ValidStepCount(n int) bool {
	for _, c := range StepCounts {
		if c == n {
			return true
		}
	}
	return false
}

// NextStepCount returns the count after n in the 8 → 16 → 24 → 32 → 8 cycle
func NextStepCount(n int) int {
	for i, c := range StepCounts {
		if c == n {
			return StepCounts[(i+1)%len(StepCounts)]
		}
	}
	return StepCounts[0]
}

// Clock is a sample-accurate sixteenth-note step counter. Tempo is passed
// to every Tick instead of being stored, so two clocks fed the same tempo
// stay phase-locked.
type Clock struct {
	sampleRate float64
	steps      int
	step       int
	counter    int // samples into the current step
	running    bool
}

// NewClock creates a stopped clock at step 0
func NewClock(sampleRate float64, steps int) Clock {
	if !ValidStepCount(steps) {
		steps = 16
	}
	return Clock{sampleRate: sampleRate, steps: steps}
}

// Tick advances one sample. onset is true on the first sample of a step,
// which is the step being returned; the counter wraps to zero and the
// index moves on once samples-per-step have elapsed.
func (c *Clock) Tick(bpm float64) (step int, onset bool) {
	if !c.running {
		return c.step, false
	}
	step = c.step
	onset = c.counter == 0

	sps := SamplesPerStep(bpm, c.sampleRate)
	c.counter++
	if c.counter >= sps {
		c.counter = 0
		c.step = (c.step + 1) % c.steps
	}
	return step, onset
}

// Start runs the clock from the beginning of the current step
func (c *Clock) Start() {
	c.running = true
	c.counter = 0
}

// Stop pauses the clock, keeping the step position
func (c *Clock) Stop() {
	c.running = false
}

// Rewind returns to step 0
func (c *Clock) Rewind() {
	c.step = 0
	c.counter = 0
}

// SetSteps changes the loop length; the current index wraps into range
// and the counter is left alone so timing is not disturbed
func (c *Clock) SetSteps(n int) {
	if !ValidStepCount(n) {
		return
	}
	c.steps = n
	c.step %= n
}

// Step returns the current step index
func (c *Clock) Step() int { return c.step }

// Steps returns the loop length
func (c *Clock) Steps() int { return c.steps }

// Counter returns samples elapsed in the current step
func (c *Clock) Counter() int { return c.counter }

// Running reports whether the clock advances on Tick
func (c *Clock) Running() bool { return c.running }
