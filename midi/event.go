package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// NoteEvent is a key going down (On) or up on a keyboard. Channel is 0-15.
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
	On       bool
}

// Gain maps velocity to a 0-1 voice gain
func (e NoteEvent) Gain() float64 {
	return float64(e.Velocity) / 127
}

// ParseNote decodes note on/off messages. A note on with velocity 0 is a
// note off, as most keyboards send it that way.
func ParseNote(msg gomidi.Message) (NoteEvent, bool) {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		return NoteEvent{Note: note, Velocity: velocity, Channel: channel, On: true}, true
	case msg.GetNoteEnd(&channel, &note):
		return NoteEvent{Note: note, Channel: channel}, true
	}
	return NoteEvent{}, false
}
