//go:build !headless

// video_ebiten_sink.go - optional host scanline viewer, adapted from the
// teacher's video_backend_ebiten.go EbitenOutput (window lifecycle,
// frame buffer mutex, vsync handshake) to draw DeviceVGC's Snapshot()
// scanline tables instead of a synthesized RGBA framebuffer.

package main

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

func init() {
	compiledFeatures = append(compiledFeatures, "video:ebiten")
}

// EbitenScanlineView renders a Machine's video snapshot as a column of
// colored bars, one per TEXT1 scanline (the first 240); the other mode
// planes in the snapshot are not drawn. It never reads
// live device state directly — only whatever MachineSnapshot the host
// last pushed via Push, keeping the render loop decoupled from the
// emulate loop (spec.md §5's concurrency model).
type EbitenScanlineView struct {
	mu       sync.RWMutex
	snapshot MachineSnapshot
	title    string
	running  bool

	overlay *MonitorOverlay
}

// NewEbitenScanlineView constructs an unstarted viewer. Start must be
// called from the host's main goroutine.
func NewEbitenScanlineView() *EbitenScanlineView {
	return &EbitenScanlineView{title: "clemcore - scanline viewer"}
}

// AttachMonitor wires a Machine Monitor into this view, satisfying
// MonitorAttachable. The F12 key toggles the overlay on and off.
func (v *EbitenScanlineView) AttachMonitor(monitor *MachineMonitor) {
	v.overlay = NewMonitorOverlay(monitor)
}

// Push installs the latest snapshot for the next Draw call to render.
func (v *EbitenScanlineView) Push(snap MachineSnapshot) {
	v.mu.Lock()
	v.snapshot = snap
	v.mu.Unlock()
}

// Start opens the ebiten window on its own goroutine, mirroring the
// teacher's EbitenOutput.Start (which likewise backgrounds RunGame)
// rather than blocking the emulate loop's goroutine.
func (v *EbitenScanlineView) Start() {
	if v.running {
		return
	}
	v.running = true
	ebiten.SetWindowSize(640, 480)
	ebiten.SetWindowTitle(v.title)
	ebiten.SetWindowResizable(true)
	go func() {
		_ = ebiten.RunGame(v)
	}()
}

func (v *EbitenScanlineView) Update() error {
	if v.overlay == nil {
		return nil
	}
	monitor := v.overlay.monitor
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if monitor.IsActive() {
			monitor.Deactivate()
		} else {
			monitor.Activate()
		}
	}
	if monitor.IsActive() {
		v.overlay.HandleInput()
	}
	return nil
}

func (v *EbitenScanlineView) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 640, 480
}

func (v *EbitenScanlineView) Draw(screen *ebiten.Image) {
	v.mu.RLock()
	snap := v.snapshot
	v.mu.RUnlock()

	screen.Fill(barColorFor(0))
	for i, sl := range snap.Text1 {
		if i >= 240 {
			break
		}
		c := barColorFor(sl.Meta)
		for x := 0; x < 640; x += 8 {
			screen.Set(x, i, c)
		}
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s\nscanlines: %d", snap.CPU, len(snap.Text1)))

	if v.overlay != nil && v.overlay.monitor.IsActive() {
		v.overlay.Draw(screen)
	}
}

func barColorFor(meta byte) ebitenColor {
	return ebitenColor{R: meta, G: meta / 2, B: 255 - meta, A: 255}
}

// ebitenColor mirrors color.RGBA's field layout without importing
// image/color solely for this alias (ebiten.Image.Set accepts any
// color.Color, and this struct satisfies that interface via RGBA()).
type ebitenColor struct {
	R, G, B, A uint8
}

func (c ebitenColor) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = uint32(c.A)
	a |= a << 8
	return
}
