package midi

// Drum grid layout on an 8x8 Launchpad: one row per drum track with track 0
// on the top row, eight steps per page. The right column mutes the row's
// track; the top row picks the page (cols 0-3) and starts/stops (col 7).

const (
	GridSteps    = 8
	GridTracks   = 8
	TopRow       = 8
	SideCol      = 8
	TransportCol = 7
)

// GridState is what the pads display
type GridState struct {
	Steps   [GridTracks][]bool
	Muted   [GridTracks]bool
	Length  int
	Current int
	Playing bool
	Page    int
}

// PadAction is what a pad press means for the drum grid
type PadAction int

const (
	PadNone PadAction = iota
	PadToggleStep
	PadToggleMute
	PadSelectPage
	PadTransport
)

// Pad colours
var (
	padOff      = [3]uint8{0, 0, 0}
	padPlayhead = [3]uint8{255, 255, 255}
	padMuted    = [3]uint8{180, 60, 60}
	padUnmuted  = [3]uint8{0, 100, 0}
	padPage     = [3]uint8{40, 60, 120}
	padPageSel  = [3]uint8{0, 100, 255}

	trackColors = [GridTracks][3]uint8{
		{255, 0, 0},    // kick
		{255, 100, 0},  // snare
		{255, 200, 0},  // closed hat
		{180, 180, 60}, // open hat
		{255, 80, 180}, // clap
		{150, 0, 200},  // low tom
		{0, 100, 255},  // mid tom
		{0, 200, 200},  // high tom
	}
)

// Pages returns how many pages a grid of length steps has
func Pages(length int) int {
	if length <= 0 {
		return 1
	}
	return (length + GridSteps - 1) / GridSteps
}

// TrackRow maps a track to its pad row (track 0 on top)
func TrackRow(track int) int { return GridTracks - 1 - track }

// ResolvePad interprets a press. For steps it returns the track and absolute
// step index; for pages the page number in step.
func ResolvePad(row, col int, st GridState) (action PadAction, track, step int) {
	switch {
	case row == TopRow && col == TransportCol:
		return PadTransport, 0, 0
	case row == TopRow && col < Pages(st.Length):
		return PadSelectPage, 0, col
	case row >= 0 && row < GridTracks && col == SideCol:
		return PadToggleMute, GridTracks - 1 - row, 0
	case row >= 0 && row < GridTracks && col >= 0 && col < GridSteps:
		step = st.Page*GridSteps + col
		if step >= st.Length {
			return PadNone, 0, 0
		}
		return PadToggleStep, GridTracks - 1 - row, step
	}
	return PadNone, 0, 0
}

// GridUpdates renders st to a full set of pad colours
func GridUpdates(st GridState) []LEDUpdate {
	updates := make([]LEDUpdate, 0, GridTracks*(GridSteps+1)+GridSteps)
	base := st.Page * GridSteps

	for t := 0; t < GridTracks; t++ {
		row := TrackRow(t)
		for c := 0; c < GridSteps; c++ {
			step := base + c
			color := padOff
			switch {
			case step >= st.Length:
				color = padOff
			case st.Playing && step == st.Current:
				color = padPlayhead
			case step < len(st.Steps[t]) && st.Steps[t][step]:
				color = trackColors[t]
				if st.Muted[t] {
					color = dim(color)
				}
			}
			updates = append(updates, LEDUpdate{Row: row, Col: c, Color: color})
		}
		mute := padUnmuted
		if st.Muted[t] {
			mute = padMuted
		}
		updates = append(updates, LEDUpdate{Row: row, Col: SideCol, Color: mute})
	}

	pages := Pages(st.Length)
	for c := 0; c < GridSteps; c++ {
		color := padOff
		switch {
		case c == TransportCol:
			color = padUnmuted
			if st.Playing {
				color = padPlayhead
			}
		case c < pages && c == st.Page:
			color = padPageSel
		case c < pages:
			color = padPage
		}
		updates = append(updates, LEDUpdate{Row: TopRow, Col: c, Color: color})
	}
	return updates
}

// DiffUpdates returns the entries of next that differ from prev, so only
// changed pads are sent
func DiffUpdates(prev, next []LEDUpdate) []LEDUpdate {
	if len(prev) != len(next) {
		return next
	}
	var out []LEDUpdate
	for i := range next {
		if prev[i] != next[i] {
			out = append(out, next[i])
		}
	}
	return out
}

func dim(c [3]uint8) [3]uint8 {
	return [3]uint8{c[0] / 3, c[1] / 3, c[2] / 3}
}
