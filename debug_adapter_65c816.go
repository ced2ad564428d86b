// debug_adapter_65c816.go - DebuggableCPU adapter wrapping CPU65C816 for
// Machine Monitor, grounded on the teacher's debug_cpu_6502.go (Debug6502):
// same bpMu/breakpoints/watchpoints/trapRunning/trapStop/trapLoop shape,
// adapted for a CPU that has no background runner goroutine of its own -
// Machine.Emulate drives CPU65C816.Step() directly each frame, so Freeze/
// Resume here toggle the CPU's debugHalt flag instead of stopping a worker.

package main

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Debug65C816 adapts CPU65C816 to the DebuggableCPU interface consumed by
// MachineMonitor and its ebiten overlay.
type Debug65C816 struct {
	cpu *CPU65C816

	bpMu        sync.RWMutex
	breakpoints map[uint64]*ConditionalBreakpoint
	watchpoints map[uint64]*Watchpoint
	bpChan      chan<- BreakpointEvent
	cpuID       int
	trapRunning atomic.Bool
	trapStop    chan struct{}
}

func NewDebug65C816(cpu *CPU65C816) *Debug65C816 {
	return &Debug65C816{
		cpu:         cpu,
		breakpoints: make(map[uint64]*ConditionalBreakpoint),
		watchpoints: make(map[uint64]*Watchpoint),
	}
}

func (d *Debug65C816) CPUName() string   { return "65C816" }
func (d *Debug65C816) AddressWidth() int { return 24 }

// pcLong folds PB:PC into the same 24-bit bank:offset encoding GetPC,
// ReadMemory, and breakpoint addresses all share.
func (d *Debug65C816) pcLong() uint64 { return uint64(d.cpu.PB)<<16 | uint64(d.cpu.PC) }

func (d *Debug65C816) GetRegisters() []RegisterInfo {
	c := d.cpu
	return []RegisterInfo{
		{Name: "A", BitWidth: 16, Value: uint64(c.A), Group: "general"},
		{Name: "X", BitWidth: 16, Value: uint64(c.X), Group: "general"},
		{Name: "Y", BitWidth: 16, Value: uint64(c.Y), Group: "general"},
		{Name: "S", BitWidth: 16, Value: uint64(c.S), Group: "general"},
		{Name: "D", BitWidth: 16, Value: uint64(c.D), Group: "general"},
		{Name: "PC", BitWidth: 16, Value: uint64(c.PC), Group: "general"},
		{Name: "PB", BitWidth: 8, Value: uint64(c.PB), Group: "general"},
		{Name: "DB", BitWidth: 8, Value: uint64(c.DB), Group: "general"},
		{Name: "P", BitWidth: 8, Value: uint64(c.P), Group: "flags"},
		{Name: "E", BitWidth: 1, Value: b2u(c.emulationMode.Load()), Group: "flags"},
	}
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (d *Debug65C816) GetRegister(name string) (uint64, bool) {
	c := d.cpu
	switch strings.ToUpper(name) {
	case "A":
		return uint64(c.A), true
	case "X":
		return uint64(c.X), true
	case "Y":
		return uint64(c.Y), true
	case "S", "SP":
		return uint64(c.S), true
	case "D":
		return uint64(c.D), true
	case "PC":
		return uint64(c.PC), true
	case "PB":
		return uint64(c.PB), true
	case "DB":
		return uint64(c.DB), true
	case "P", "SR":
		return uint64(c.P), true
	case "E":
		return b2u(c.emulationMode.Load()), true
	}
	return 0, false
}

func (d *Debug65C816) SetRegister(name string, value uint64) bool {
	c := d.cpu
	switch strings.ToUpper(name) {
	case "A":
		c.A = uint16(value)
	case "X":
		c.X = uint16(value)
	case "Y":
		c.Y = uint16(value)
	case "S", "SP":
		c.S = uint16(value)
	case "D":
		c.D = uint16(value)
	case "PC":
		c.PC = uint16(value)
	case "PB":
		c.PB = byte(value)
	case "DB":
		c.DB = byte(value)
	case "P", "SR":
		c.P = byte(value)
	case "E":
		c.emulationMode.Store(value != 0)
	default:
		return false
	}
	return true
}

func (d *Debug65C816) GetPC() uint64 { return d.pcLong() }
func (d *Debug65C816) SetPC(addr uint64) {
	d.cpu.PB = byte(addr >> 16)
	d.cpu.PC = uint16(addr)
}

// IsRunning reports whether the main emulate loop is actively driving this
// CPU. The trap loop halts the main loop via debugHalt while it single
// steps, so it also counts as "running" from the monitor's perspective.
func (d *Debug65C816) IsRunning() bool {
	return (!d.cpu.stopped.Load() && !d.cpu.debugHalt.Load()) || d.trapRunning.Load()
}

// Freeze stops whichever loop is currently driving the CPU: the trap loop
// if breakpoints/watchpoints are live, otherwise Machine.Emulate via
// debugHalt.
func (d *Debug65C816) Freeze() {
	if d.trapRunning.Load() {
		close(d.trapStop)
		for d.trapRunning.Load() {
		}
		return
	}
	d.cpu.debugHalt.Store(true)
}

// Resume restarts execution. With breakpoints/watchpoints set, a trap loop
// single-steps the CPU directly (Emulate stays halted via debugHalt so the
// two never step the CPU concurrently); otherwise it simply clears
// debugHalt and lets Emulate resume driving the CPU itself.
func (d *Debug65C816) Resume() {
	d.bpMu.RLock()
	hasBP := len(d.breakpoints) > 0 || len(d.watchpoints) > 0
	d.bpMu.RUnlock()
	if hasBP {
		d.cpu.debugHalt.Store(true)
		d.trapStop = make(chan struct{})
		d.trapRunning.Store(true)
		go d.trapLoop()
		return
	}
	d.cpu.debugHalt.Store(false)
}

func (d *Debug65C816) trapLoop() {
	defer d.trapRunning.Store(false)
	for {
		select {
		case <-d.trapStop:
			return
		default:
		}
		d.bpMu.RLock()
		bp := d.breakpoints[d.pcLong()]
		d.bpMu.RUnlock()
		if bp != nil {
			bp.HitCount++
			if evaluateConditionWithHitCount(bp.Condition, d, bp.HitCount) {
				if d.bpChan != nil {
					select {
					case d.bpChan <- BreakpointEvent{CPUID: d.cpuID, Address: d.pcLong()}:
					default:
					}
				}
				return
			}
		}
		if d.cpu.stopped.Load() {
			return
		}
		d.cpu.Step()

		d.bpMu.RLock()
		for _, wp := range d.watchpoints {
			bank := byte(wp.Address >> 16)
			off := uint16(wp.Address)
			cur := d.cpu.bus.Read24(bank, off)
			if cur != wp.LastValue {
				old := wp.LastValue
				wp.LastValue = cur
				d.bpMu.RUnlock()
				if d.bpChan != nil {
					select {
					case d.bpChan <- BreakpointEvent{
						CPUID: d.cpuID, Address: d.pcLong(),
						IsWatch: true, WatchAddr: wp.Address,
						WatchOldValue: old, WatchNewValue: cur,
					}:
					default:
					}
				}
				return
			}
		}
		d.bpMu.RUnlock()
	}
}

func (d *Debug65C816) Step() int { return d.cpu.Step() }

func (d *Debug65C816) Disassemble(addr uint64, count int) []DisassembledLine {
	lines := disassemble65C816(d.cpu, addr, count)
	pc := d.pcLong()
	for i := range lines {
		if lines[i].Address == pc {
			lines[i].IsPC = true
		}
	}
	return lines
}

// SetBreakpoint/SetConditionalBreakpoint/ClearBreakpoint etc. manage only
// the adapter's own map, exactly like the teacher's Debug6502: CPU65C816's
// native breakpoints map keeps whatever the CPU itself was constructed
// with (empty, here) and is never written to by the monitor, so the
// trapLoop below is the sole source of breakpoint events while it runs.
func (d *Debug65C816) SetBreakpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints[addr] = &ConditionalBreakpoint{Address: addr}
	return true
}

func (d *Debug65C816) SetConditionalBreakpoint(addr uint64, cond *BreakpointCondition) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints[addr] = &ConditionalBreakpoint{Address: addr, Condition: cond}
	return true
}

func (d *Debug65C816) ClearBreakpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	if _, ok := d.breakpoints[addr]; ok {
		delete(d.breakpoints, addr)
		return true
	}
	return false
}

func (d *Debug65C816) ClearAllBreakpoints() {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints = make(map[uint64]*ConditionalBreakpoint)
}

func (d *Debug65C816) ListBreakpoints() []uint64 {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	result := make([]uint64, 0, len(d.breakpoints))
	for addr := range d.breakpoints {
		result = append(result, addr)
	}
	return result
}

func (d *Debug65C816) ListConditionalBreakpoints() []*ConditionalBreakpoint {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	result := make([]*ConditionalBreakpoint, 0, len(d.breakpoints))
	for _, bp := range d.breakpoints {
		result = append(result, bp)
	}
	return result
}

func (d *Debug65C816) HasBreakpoint(addr uint64) bool {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	_, ok := d.breakpoints[addr]
	return ok
}

func (d *Debug65C816) GetConditionalBreakpoint(addr uint64) *ConditionalBreakpoint {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	return d.breakpoints[addr]
}

func (d *Debug65C816) SetWatchpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	val := d.cpu.bus.Read24(byte(addr>>16), uint16(addr))
	d.watchpoints[addr] = &Watchpoint{Address: addr, LastValue: val}
	return true
}

func (d *Debug65C816) ClearWatchpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	if _, ok := d.watchpoints[addr]; ok {
		delete(d.watchpoints, addr)
		return true
	}
	return false
}

func (d *Debug65C816) ClearAllWatchpoints() {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.watchpoints = make(map[uint64]*Watchpoint)
}

func (d *Debug65C816) ListWatchpoints() []uint64 {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	result := make([]uint64, 0, len(d.watchpoints))
	for addr := range d.watchpoints {
		result = append(result, addr)
	}
	return result
}

func (d *Debug65C816) ReadMemory(addr uint64, size int) []byte {
	result := make([]byte, size)
	for i := range size {
		a := addr + uint64(i)
		result[i] = d.cpu.bus.Read24(byte(a>>16), uint16(a))
	}
	return result
}

func (d *Debug65C816) WriteMemory(addr uint64, data []byte) {
	for i, b := range data {
		a := addr + uint64(i)
		d.cpu.bus.Write24(byte(a>>16), uint16(a), b)
	}
}

func (d *Debug65C816) SetBreakpointChannel(ch chan<- BreakpointEvent, cpuID int) {
	d.bpChan = ch
	d.cpuID = cpuID
	d.cpu.cpuID = cpuID
	d.cpu.breakpointCh = ch
}
