package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-groovebox/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// Options selects which ports become controllers
type Options struct {
	// KeyboardPort is matched as a case-insensitive substring; empty accepts
	// any port that is not a Launchpad
	KeyboardPort string
	// KeyboardChannel is 1-16, or 0 for omni
	KeyboardChannel int
	// Keyboards disables keyboard detection when false
	Keyboards bool
	PollRate  time.Duration
}

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	opts        Options
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts Options) *DeviceManager {
	rate := opts.PollRate
	if rate <= 0 {
		rate = time.Second
	}
	return &DeviceManager{
		opts:        opts,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    rate,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	// CoreMIDI can hang on port enumeration
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		debug.Log("midi", "port scan timed out")
		return
	case <-ctx.Done():
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		kind := dm.classify(id)
		if kind == ControllerUnknown {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		ctrl, err := dm.open(kind, inPort, outPorts)
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = ctrl
		dm.mu.Unlock()

		debug.Log("midi", "connected %s (%s)", id, kind)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: ctrl, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			gone = append(gone, id)
		}
	}
	for _, id := range gone {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
	}
	dm.mu.Unlock()

	for _, id := range gone {
		debug.Log("midi", "disconnected %s", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) open(kind ControllerType, in drivers.In, outPorts []drivers.Out) (Controller, error) {
	if kind == ControllerKeyboard {
		return NewKeyboardController(in.String(), in, dm.opts.KeyboardChannel)
	}

	// Launchpads need the output with the same name for LEDs
	name := strings.ToLower(in.String())
	var outPort drivers.Out
	for _, op := range outPorts {
		if strings.ToLower(op.String()) == name {
			outPort = op
			break
		}
	}
	return NewLaunchpadController(in.String(), in, outPort)
}

// classify decides what a port name is used for
func (dm *DeviceManager) classify(name string) ControllerType {
	if isLaunchpad(name) {
		return ControllerLaunchpad
	}
	if !dm.opts.Keyboards || isLaunchpadAux(name) || isSystemPort(name) {
		return ControllerUnknown
	}
	if dm.opts.KeyboardPort != "" &&
		!strings.Contains(strings.ToLower(name), strings.ToLower(dm.opts.KeyboardPort)) {
		return ControllerUnknown
	}
	return ControllerKeyboard
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

// isLaunchpadAux matches the DAW/DIN ports a Launchpad also exposes
func isLaunchpadAux(name string) bool {
	return strings.Contains(strings.ToLower(name), "launchpad")
}

// isSystemPort matches ALSA and CoreMIDI pseudo ports
func isSystemPort(name string) bool {
	name = strings.ToLower(name)
	for _, s := range []string{"midi through", "through port", "rtmidi", "iac driver"} {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}
