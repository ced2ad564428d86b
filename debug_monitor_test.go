// debug_monitor_test.go - MachineMonitor/Debug65C816 integration tests,
// replacing the teacher's multi-architecture debug_monitor_test.go (which
// exercised CPU_6502/CPU_Z80/M68K/X86 scaffolding this module doesn't have).

package main

import "testing"

func newTestMonitor() (*MachineMonitor, *Debug65C816, *CPU65C816) {
	cpu, _ := newTestCPU()
	adapter := NewDebug65C816(cpu)
	monitor := NewMachineMonitor(nil)
	monitor.RegisterCPU("65C816", adapter)
	return monitor, adapter, cpu
}

func TestRegisterCPU_AssignsStableID(t *testing.T) {
	monitor, _, _ := newTestMonitor()
	entry := monitor.FocusedCPU()
	if entry == nil {
		t.Fatal("expected a focused CPU after registration")
	}
	if entry.Label != "65C816" {
		t.Fatalf("Label = %q, want 65C816", entry.Label)
	}
}

func TestDebug65C816_RegisterRoundTrip(t *testing.T) {
	_, adapter, _ := newTestMonitor()
	adapter.SetRegister("A", 0x1234)
	adapter.SetRegister("X", 0x5678)
	v, ok := adapter.GetRegister("A")
	if !ok || v != 0x1234 {
		t.Fatalf("GetRegister(A) = %#x, %v", v, ok)
	}
	v, ok = adapter.GetRegister("sp") // case-insensitive SP alias for S
	if !ok {
		t.Fatalf("expected SP alias to resolve")
	}
	if _, ok := adapter.GetRegister("nope"); ok {
		t.Fatalf("expected unknown register name to fail")
	}
}

func TestDebug65C816_GetPCFoldsBankOffset(t *testing.T) {
	_, adapter, cpu := newTestMonitor()
	cpu.PB = 0x01
	cpu.PC = 0x2000
	if got, want := adapter.GetPC(), uint64(0x012000); got != want {
		t.Fatalf("GetPC() = %#x, want %#x", got, want)
	}
	adapter.SetPC(0x03ABCD)
	if cpu.PB != 0x03 || cpu.PC != 0xABCD {
		t.Fatalf("SetPC split PB=%#x PC=%#x, want PB=03 PC=ABCD", cpu.PB, cpu.PC)
	}
}

func TestDebug65C816_ReadWriteMemory(t *testing.T) {
	_, adapter, _ := newTestMonitor()
	adapter.WriteMemory(0x001000, []byte{0x11, 0x22, 0x33})
	got := adapter.ReadMemory(0x001000, 3)
	want := []byte{0x11, 0x22, 0x33}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReadMemory[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestDebug65C816_BreakpointLifecycle(t *testing.T) {
	_, adapter, _ := newTestMonitor()
	addr := uint64(0x002000)
	if adapter.HasBreakpoint(addr) {
		t.Fatal("expected no breakpoint before SetBreakpoint")
	}
	adapter.SetBreakpoint(addr)
	if !adapter.HasBreakpoint(addr) {
		t.Fatal("expected breakpoint to be set")
	}
	list := adapter.ListBreakpoints()
	if len(list) != 1 || list[0] != addr {
		t.Fatalf("ListBreakpoints() = %v, want [%#x]", list, addr)
	}
	if !adapter.ClearBreakpoint(addr) {
		t.Fatal("expected ClearBreakpoint to report success")
	}
	if adapter.HasBreakpoint(addr) {
		t.Fatal("expected breakpoint cleared")
	}
}

func TestDebug65C816_ConditionalBreakpoint(t *testing.T) {
	_, adapter, _ := newTestMonitor()
	addr := uint64(0x003000)
	cond := &BreakpointCondition{Source: CondSourceRegister, RegName: "A", Op: CondOpEqual, Value: 0x42}
	adapter.SetConditionalBreakpoint(addr, cond)
	bp := adapter.GetConditionalBreakpoint(addr)
	if bp == nil || bp.Condition == nil || bp.Condition.Value != 0x42 {
		t.Fatalf("GetConditionalBreakpoint() = %+v", bp)
	}
}

func TestDebug65C816_WatchpointLifecycle(t *testing.T) {
	_, adapter, _ := newTestMonitor()
	addr := uint64(0x004000)
	adapter.SetWatchpoint(addr)
	list := adapter.ListWatchpoints()
	if len(list) != 1 || list[0] != addr {
		t.Fatalf("ListWatchpoints() = %v, want [%#x]", list, addr)
	}
	if !adapter.ClearWatchpoint(addr) {
		t.Fatal("expected ClearWatchpoint to report success")
	}
	if len(adapter.ListWatchpoints()) != 0 {
		t.Fatal("expected watchpoint list empty after clear")
	}
}

func TestDebug65C816_FreezeResumeTogglesDebugHalt(t *testing.T) {
	_, adapter, cpu := newTestMonitor()
	adapter.Freeze()
	if !cpu.debugHalt.Load() {
		t.Fatal("expected Freeze to set debugHalt with no breakpoints registered")
	}
	adapter.Resume()
	if cpu.debugHalt.Load() {
		t.Fatal("expected Resume to clear debugHalt with no breakpoints registered")
	}
}

func TestDebug65C816_Disassemble_MarksCurrentPC(t *testing.T) {
	_, adapter, cpu := newTestMonitor()
	lines := adapter.Disassemble(adapter.GetPC(), 1)
	if len(lines) != 1 {
		t.Fatalf("expected 1 disassembled line, got %d", len(lines))
	}
	if lines[0].Address != uint64(cpu.PB)<<16|uint64(cpu.PC) {
		t.Fatalf("Disassemble address = %#x, want current PC", lines[0].Address)
	}
	if !lines[0].IsPC {
		t.Fatal("expected first disassembled line to be marked as current PC")
	}
}

func TestMonitor_ActivateDeactivate(t *testing.T) {
	monitor, _, _ := newTestMonitor()
	if monitor.IsActive() {
		t.Fatal("expected monitor inactive initially")
	}
	monitor.Activate()
	if !monitor.IsActive() {
		t.Fatal("expected monitor active after Activate")
	}
	monitor.Deactivate()
	if monitor.IsActive() {
		t.Fatal("expected monitor inactive after Deactivate")
	}
}

func TestMonitor_HandleBreakpointHitActivatesAndFreezes(t *testing.T) {
	monitor, adapter, cpu := newTestMonitor()
	addr := adapter.GetPC()
	adapter.SetBreakpoint(addr)

	monitor.handleBreakpointHit(BreakpointEvent{CPUID: 0, Address: addr})

	if !monitor.IsActive() {
		t.Fatal("expected monitor to activate on breakpoint hit")
	}
	if entry := monitor.FocusedCPU(); entry == nil || entry.ID != 0 {
		t.Fatalf("expected focus on CPU 0, got %+v", entry)
	}
	if !cpu.debugHalt.Load() {
		t.Fatal("expected the hitting CPU's debugHalt to be set after the freeze-all pass")
	}
}
