package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-groovebox/midi"
	"go-groovebox/synth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "monitor":
		filter := ""
		if len(os.Args) > 2 {
			filter = os.Args[2]
		}
		err = monitor(filter)
	case "grid":
		err = gridDemo()
	case "poll":
		pollDevices()
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI diagnostics for go-groovebox")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list             - List all MIDI ports")
	fmt.Println("  monitor [port]   - Print notes from a keyboard (substring match)")
	fmt.Println("  grid             - Show a demo drum pattern on a Launchpad")
	fmt.Println("  poll             - Watch controllers connect and disconnect")
}

type ports struct {
	ins  []drivers.In
	outs []drivers.Out
}

// getPorts enumerates with a timeout; CoreMIDI can hang
func getPorts() (ports, error) {
	ch := make(chan ports, 1)
	go func() {
		ch <- ports{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()
	select {
	case p := <-ch:
		return p, nil
	case <-time.After(3 * time.Second):
		return ports{}, fmt.Errorf("port scan timed out (try: sudo killall coreaudiod midiserver)")
	}
}

func listPorts() error {
	p, err := getPorts()
	if err != nil {
		return err
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, in := range p.ins {
		fmt.Printf("  %d: %s\n", i, in.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, out := range p.outs {
		fmt.Printf("  %d: %s\n", i, out.String())
	}
	return nil
}

func monitor(filter string) error {
	p, err := getPorts()
	if err != nil {
		return err
	}
	var in drivers.In
	for _, port := range p.ins {
		if strings.Contains(strings.ToLower(port.String()), strings.ToLower(filter)) {
			in = port
			break
		}
	}
	if in == nil {
		return fmt.Errorf("no input port matching %q", filter)
	}

	kb, err := midi.NewKeyboardController(in.String(), in, 0)
	if err != nil {
		return err
	}
	defer kb.Close()

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.String())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	for {
		select {
		case ev := <-kb.NoteEvents():
			state := "off"
			if ev.On {
				state = "on "
			}
			fmt.Printf("  ch%-2d %s %-4s vel %3d\n", ev.Channel+1, state, synth.NoteName(ev.Note), ev.Velocity)
		case <-sig:
			return nil
		}
	}
}

func gridDemo() error {
	p, err := getPorts()
	if err != nil {
		return err
	}
	var in drivers.In
	var out drivers.Out
	for _, port := range p.ins {
		if strings.Contains(strings.ToLower(port.String()), "launchpad") {
			in = port
			break
		}
	}
	for _, port := range p.outs {
		if in != nil && strings.EqualFold(port.String(), in.String()) {
			out = port
			break
		}
	}
	if in == nil || out == nil {
		return fmt.Errorf("no Launchpad found")
	}

	lp, err := midi.NewLaunchpadController(in.String(), in, out)
	if err != nil {
		return err
	}
	defer lp.Close()

	st := midi.GridState{Length: 16, Playing: true}
	st.Steps[synth.Kick] = pattern("x...x...x...x...")
	st.Steps[synth.Snare] = pattern("....x.......x...")
	st.Steps[synth.ClosedHat] = pattern("x.x.x.x.x.x.x.x.")
	st.Muted[synth.Clap] = true

	fmt.Println("Running playhead over a demo pattern. Press Enter to stop...")
	done := make(chan struct{})
	go func() {
		fmt.Scanln()
		close(done)
	}()

	var last []midi.LEDUpdate
	ticker := time.NewTicker(125 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return nil
		case pad := <-lp.PadEvents():
			fmt.Printf("  pad row %d col %d\n", pad.Row, pad.Col)
		case <-ticker.C:
			st.Current = (st.Current + 1) % st.Length
			st.Page = st.Current / midi.GridSteps
			next := midi.GridUpdates(st)
			if err := lp.SetLEDBatch(midi.DiffUpdates(last, next)); err != nil {
				return err
			}
			last = next
		}
	}
}

func pattern(s string) []bool {
	steps := make([]bool, len(s))
	for i, c := range s {
		steps[i] = c == 'x'
	}
	return steps
}

func pollDevices() {
	fmt.Println("Watching for controllers. Ctrl+C to exit.")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	dm := midi.NewDeviceManager(midi.Options{Keyboards: true, PollRate: 2 * time.Second})
	go dm.Run(ctx)

	for ev := range dm.Events() {
		ts := time.Now().Format("15:04:05")
		switch ev.Type {
		case midi.DeviceConnected:
			fmt.Printf("[%s] + %s (%s)\n", ts, ev.ID, ev.Controller.Type())
		case midi.DeviceDisconnected:
			fmt.Printf("[%s] - %s\n", ts, ev.ID)
		}
	}
}
