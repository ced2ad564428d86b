//go:build !headless

// input_pump.go - host input wiring: the raw-mode terminal host runs
// under one cancelable goroutine group and a clipboard paster sits
// alongside it, grounded on SPEC_FULL.md's ambient-stack table entry
// for golang.org/x/sync (errgroup supersedes a hand-rolled sync.WaitGroup
// + error channel, the pattern the teacher's own host glue lacks but the
// rest of the ecosystem reaches for when fanning in multiple readers).

package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// InputPump owns the host-side input sources: the terminal host, whose
// stdin bytes go into a TerminalMMIO, and a clipboard paster that pushes
// key bytes straight into the Machine's DeviceADB. Neither source sends
// InputEvent values on the Machine's Input channel. The emulate loop itself never
// blocks on these sources — drainInput only ever does a non-blocking
// channel read.
type InputPump struct {
	machine  *Machine
	paster   *ClipboardPaster
	termHost *TerminalHost
	termMMIO *TerminalMMIO

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewInputPump wires a pump for the given machine. termMMIO may be nil
// if no terminal keyboard bridge is configured.
func NewInputPump(m *Machine, termMMIO *TerminalMMIO) *InputPump {
	p := &InputPump{
		machine:  m,
		paster:   NewClipboardPaster(m.ADB),
		termMMIO: termMMIO,
	}
	if termMMIO != nil {
		p.termHost = NewTerminalHost(termMMIO)
	}
	return p
}

// Start launches the terminal reader (if configured) and returns
// immediately; the errgroup's goroutine waits for Stop and then stops the
// terminal host. No byte read from the terminal is forwarded to the ADB.
func (p *InputPump) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	g, ctx := errgroup.WithContext(ctx)
	p.group = g

	if p.termHost != nil {
		p.termHost.Start()
		g.Go(func() error {
			<-ctx.Done()
			p.termHost.Stop()
			return nil
		})
	}
}

// PasteClipboard injects the host clipboard's text contents as ADB key
// presses. Safe to call from any goroutine; ClipboardPaster serializes
// its own lazy Init via sync.Once.
func (p *InputPump) PasteClipboard() {
	p.paster.Paste()
}

// Stop cancels every pump goroutine and waits for them to exit.
func (p *InputPump) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	_ = p.group.Wait()
}
