package sequencer

import "testing"

func TestSamplesPerStep(t *testing.T) {
	tests := []struct {
		bpm, rate float64
		want      int
	}{
		{120, 48000, 6000},
		{120, 44100, 5513},
		{300, 44100, 2205},
		{30, 44100, 22050},
		{0, 44100, 1},
		{-10, 44100, 1},
		{1e12, 44100, 1},
	}
	for _, tt := range tests {
		if got := SamplesPerStep(tt.bpm, tt.rate); got != tt.want {
			t.Errorf("SamplesPerStep(%v, %v) = %d, want %d", tt.bpm, tt.rate, got, tt.want)
		}
	}
}

func TestNextStepCount(t *testing.T) {
	n := 8
	for _, want := range []int{16, 24, 32, 8} {
		n = NextStepCount(n)
		if n != want {
			t.Fatalf("got %d, want %d", n, want)
		}
	}
	if NextStepCount(5) != 8 {
		t.Error("invalid count should restart the cycle")
	}
}

func TestClockAdvancesOneStep(t *testing.T) {
	c := NewClock(48000, 16)
	c.Start()

	onsets := 0
	for i := 0; i < 6000; i++ {
		step, onset := c.Tick(120)
		if onset {
			onsets++
			if step != 0 {
				t.Errorf("onset reported step %d", step)
			}
		}
	}
	if onsets != 1 {
		t.Errorf("onsets: got %d, want 1", onsets)
	}
	if c.Step() != 1 || c.Counter() != 0 {
		t.Errorf("after one step: step %d counter %d", c.Step(), c.Counter())
	}
}

func TestClockStoppedDoesNotAdvance(t *testing.T) {
	c := NewClock(48000, 16)
	for i := 0; i < 10000; i++ {
		if _, onset := c.Tick(120); onset {
			t.Fatal("stopped clock reported an onset")
		}
	}
	if c.Step() != 0 || c.Counter() != 0 {
		t.Errorf("stopped clock moved: step %d counter %d", c.Step(), c.Counter())
	}
}

func TestClocksStayPhaseLocked(t *testing.T) {
	a := NewClock(44100, 16)
	b := NewClock(44100, 16)
	a.Start()
	b.Start()

	bpm := 120.0
	for i := 0; i < 200000; i++ {
		if i == 50000 {
			bpm = 173
		}
		if i == 120000 {
			bpm = 61
		}
		sa, oa := a.Tick(bpm)
		sb, ob := b.Tick(bpm)
		if sa != sb || oa != ob {
			t.Fatalf("clocks drifted at sample %d", i)
		}
	}
	if a.Counter() != b.Counter() {
		t.Errorf("counters differ: %d vs %d", a.Counter(), b.Counter())
	}
}

func TestClockLoops(t *testing.T) {
	c := NewClock(1000, 8)
	c.Start()
	sps := SamplesPerStep(120, 1000)
	for i := 0; i < sps*8; i++ {
		c.Tick(120)
	}
	if c.Step() != 0 {
		t.Errorf("after 8 steps of an 8-step loop: step %d", c.Step())
	}
}

func TestClockSetStepsWrapsIndex(t *testing.T) {
	c := NewClock(1000, 32)
	c.Start()
	sps := SamplesPerStep(120, 1000)
	for i := 0; i < sps*20; i++ {
		c.Tick(120)
	}
	if c.Step() != 20 {
		t.Fatalf("setup: step %d", c.Step())
	}

	c.SetSteps(8)
	if c.Step() >= 8 {
		t.Errorf("step %d out of range after shrinking to 8", c.Step())
	}
	c.SetSteps(12)
	if c.Steps() != 8 {
		t.Errorf("invalid length accepted: %d", c.Steps())
	}
	for _, n := range StepCounts {
		c.SetSteps(n)
		for i := 0; i < sps*40; i++ {
			step, _ := c.Tick(120)
			if step >= n {
				t.Fatalf("step %d outside %d-step loop", step, n)
			}
		}
	}
}

func TestClockRewind(t *testing.T) {
	c := NewClock(1000, 16)
	c.Start()
	for i := 0; i < 777; i++ {
		c.Tick(120)
	}
	c.Rewind()
	if c.Step() != 0 || c.Counter() != 0 {
		t.Errorf("rewind: step %d counter %d", c.Step(), c.Counter())
	}
	if _, onset := c.Tick(120); !onset {
		t.Error("first tick after rewind should be an onset")
	}
}
