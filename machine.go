// machine.go - top-level machine wiring and emulate() loop, grounded on
// clem_types.h's ClemensMachine and the teacher's main.go component
// construction/MapIO wiring sketch.

package main

import (
	"fmt"
)

// InputEvent is a host-originated event pushed onto Machine's input
// channel: a key press, mouse delta, or disk insert/eject request.
// Emulate applies key presses and mouse moves; the disk insert/eject kinds
// carry no image and are ignored.
type InputEvent struct {
	Kind    InputKind
	KeyCode byte
	DX, DY  int8
	Button  bool
}

type InputKind int

const (
	InputKeyPress InputKind = iota
	InputMouseMove
	InputDiskInsert525
	InputDiskInsert35
	InputDiskEject525
	InputDiskEject35
)

// Machine is the top-level Apple IIGS core: CPU, MMC/memory, IWM/drive
// bay, and every register-level device, wired together the way the
// teacher's commented-out target main() sketches its own CPU/bus/device
// construction order.
type Machine struct {
	CPU   *CPU65C816
	Mem   *BankMemory
	MMC   *MMC
	IWM   *IWM
	Timer *DeviceTimer
	VGC   *DeviceVGC
	Audio *DeviceAudio
	ADB   *DeviceADB
	RTC   *DeviceRTC
	SCC   *DeviceSCC

	Drive525A, Drive525B *Drive525
	Drive35A, Drive35B   *Drive35
	SmartPort            *SmartPortBus

	Monitor *MachineMonitor

	Input chan InputEvent
	debug DebugSink

	cyclesPerScanline uint32
	scanlineAccum     uint32

	lastMega2 uint64 // MMC.Clock.Mega2Ticks() as of the previous emulate() step, for delta_mega2
	nmiLine   bool    // host-settable NMI pin level; edge-detected against the CPU's last sample
}

// NewMachine constructs and wires every component. audioSink may be nil
// for headless operation (tests, the counting debug sink path).
func NewMachine(cfg *Config, debug DebugSink, audioSink AudioSink) *Machine {
	mem := NewBankMemory()

	timer := NewDeviceTimer()
	vgc := NewDeviceVGC(timer)
	audio := NewDeviceAudio(audioSink)
	adb := NewDeviceADB()
	rtc := NewDeviceRTC(nil)
	scc := NewDeviceSCC()

	d525a, d525b := NewDrive525(), NewDrive525()
	d35a, d35b := NewDrive35(), NewDrive35()
	sp := NewSmartPortBus()
	iwm := NewIWM(d525a, d525b, d35a, d35b, sp)

	mmc := NewMMC(mem, rtc, adb, timer, scc, audio, vgc, iwm, debug)
	cpu := NewCPU65C816(mmc, debug)

	monitor := NewMachineMonitor(audio)
	monitor.RegisterCPU("65C816", NewDebug65C816(cpu))
	monitor.StartBreakpointListener()

	m := &Machine{
		CPU: cpu, Mem: mem, MMC: mmc, IWM: iwm,
		Timer: timer, VGC: vgc, Audio: audio, ADB: adb, RTC: rtc, SCC: scc,
		Drive525A: d525a, Drive525B: d525b, Drive35A: d35a, Drive35B: d35b,
		SmartPort: sp,
		Monitor:   monitor,
		Input:     make(chan InputEvent, 64),
		debug:     debug,
		cyclesPerScanline: 2000,
	}
	return m
}

// Boot loads the ROM image and any configured disk images, then resets
// the CPU to begin execution at the reset vector.
func (m *Machine) Boot(rom []byte) error {
	if len(rom) == 0 {
		return fmt.Errorf("machine: empty ROM image")
	}
	m.Mem.LoadROM(rom)
	m.CPU.Reset()
	return nil
}

// InsertWOZ525 parses and inserts a WOZ image into the 5.25" drive bay.
func (m *Machine) InsertWOZ525(unit int, data []byte) error {
	img, err := ParseWOZ(data)
	if err != nil {
		return err
	}
	if unit == 0 {
		m.Drive525A.InsertDisk(img)
	} else {
		m.Drive525B.InsertDisk(img)
	}
	return nil
}

// InsertWOZ35 parses and inserts a WOZ image into the 3.5" drive bay.
func (m *Machine) InsertWOZ35(unit int, data []byte) error {
	img, err := ParseWOZ(data)
	if err != nil {
		return err
	}
	if unit == 0 {
		m.Drive35A.InsertDisk(img)
	} else {
		m.Drive35B.InsertDisk(img)
	}
	return nil
}

// drainInput applies every queued host input event at the top of an
// Emulate call, per spec.md §5's concurrency model: the emulate loop
// owns all mutation, the host only ever enqueues.
func (m *Machine) drainInput() {
	for {
		select {
		case ev := <-m.Input:
			m.applyInput(ev)
		default:
			return
		}
	}
}

func (m *Machine) applyInput(ev InputEvent) {
	switch ev.Kind {
	case InputKeyPress:
		m.ADB.PushKey(ev.KeyCode)
	case InputMouseMove:
		m.ADB.SetMouseDelta(ev.DX, ev.DY, ev.Button)
	}
}

// RequestNMI sets the host-visible NMI pin level, mirroring a front-panel
// NMI line. The CPU only takes the interrupt on a low-to-high transition
// (spec.md §4.3's edge-triggered rule), sampled before each CPU step in
// Emulate.
func (m *Machine) RequestNMI(level bool) { m.nmiLine = level }

// Emulate runs approximately one video frame's worth of instructions,
// ticking the timer/VGC/IWM alongside the CPU the way clem_types.h's
// ClemensMachine.tspec-driven step loop interleaves bus-synchronous
// devices with CPU cycles. Per spec.md §4.7, each CPU step advances the
// shared Clock; after the step, delta_mega2 (elapsed whole Mega II cycles)
// drives MMIO device ticking instead of the CPU's own raw cycle count.
func (m *Machine) Emulate() {
	m.drainInput()

	// ~262 scanlines of Mega II-equivalent clock budget per frame, the
	// same frame-length approximation the old flat-cycle loop used, now
	// expressed in real clock units so clocks_spent stays authoritative.
	const mega2CyclesPerFrame = 17030
	frameDeadline := m.MMC.Clock.Spent + mega2CyclesPerFrame*ClockStepMega2

	for m.MMC.Clock.Spent < frameDeadline {
		if m.CPU.stopped.Load() || m.CPU.debugHalt.Load() {
			break
		}
		if m.CPU.NMIEdge(m.nmiLine) {
			m.CPU.NMI()
		} else if m.Timer.IRQAsserted() {
			m.CPU.IRQ()
		}

		cyc := m.CPU.Step()
		m.scanlineAccum += uint32(cyc)
		if m.scanlineAccum >= m.cyclesPerScanline {
			m.scanlineAccum -= m.cyclesPerScanline
			m.VGC.AdvanceScanline()
		}
		m.VGC.SetHBlank(m.scanlineAccum*4 >= m.cyclesPerScanline*3)

		mega2Now := m.MMC.Clock.Mega2Ticks()
		deltaMega2 := mega2Now - m.lastMega2
		m.lastMega2 = mega2Now
		if deltaMega2 > 0 {
			m.Timer.Tick(uint32(deltaMega2))
			m.IWM.step(int64(mega2Now))
		}
	}
	m.Audio.Drain()
}

// Snapshot returns a read-only view suitable for a host renderer/debugger,
// never the live device structs (spec.md §5).
func (m *Machine) Snapshot() MachineSnapshot {
	text1, text2, hires1, hires2, shr := m.VGC.Snapshot()
	return MachineSnapshot{
		CPU:        m.CPU.String(),
		Text1:      text1,
		Text2:      text2,
		Hires1:     hires1,
		Hires2:     hires2,
		SuperHires: shr,
	}
}
