// cpu65c816_test.go - CPU register/addressing/arithmetic tests, in the
// teacher's flat-table testing.T style (cpu_six5go2_test.go equivalents
// elsewhere in the pack use a similar fake-bus + step-and-assert shape).

package main

import "testing"

// flatBus is a minimal 256-bank x 64KiB Bus implementation for isolated
// CPU tests, independent of the full MMC/Machine wiring.
type flatBus struct {
	mem [256][65536]byte
}

func newFlatBus() *flatBus { return &flatBus{} }

func (b *flatBus) Read24(bank byte, offset uint16) byte  { return b.mem[bank][offset] }
func (b *flatBus) Write24(bank byte, offset uint16, v byte) { b.mem[bank][offset] = v }

func (b *flatBus) loadAt(bank byte, offset uint16, bytes ...byte) {
	for i, v := range bytes {
		b.mem[bank][int(offset)+i] = v
	}
}

func newTestCPU() (*CPU65C816, *flatBus) {
	bus := newFlatBus()
	cpu := NewCPU65C816(bus, nil)
	bus.loadAt(0x00, 0xFFFC, 0x00, 0x10) // reset vector -> $001000
	cpu.Reset()
	return cpu, bus
}

func TestReset_EmulationModeDefaults(t *testing.T) {
	cpu, _ := newTestCPU()
	if !cpu.emulationMode.Load() {
		t.Fatalf("expected emulation mode after reset")
	}
	if cpu.PC != 0x1000 {
		t.Fatalf("PC = %#04x, want $1000", cpu.PC)
	}
	if !cpu.flag(flagI) || !cpu.flag(flagM) || !cpu.flag(flagX) {
		t.Fatalf("expected I/M/X flags set after reset, P=%#02x", cpu.P)
	}
}

func TestLDA_Immediate_SetsZeroAndNegativeFlags(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000, 0xA9, 0x00) // LDA #$00
	cpu.Step()
	if cpu.A&0xFF != 0 {
		t.Fatalf("A = %#02x, want 0", cpu.A)
	}
	if !cpu.flag(flagZ) {
		t.Fatalf("expected Z flag set for LDA #$00")
	}

	cpu.PC = 0x1000
	bus.loadAt(0x00, 0x1000, 0xA9, 0x80) // LDA #$80
	cpu.Step()
	if !cpu.flag(flagN) {
		t.Fatalf("expected N flag set for LDA #$80")
	}
}

func TestLDA_STA_Absolute_RoundTrip(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0xA9, 0x42, // LDA #$42
		0x8D, 0x00, 0x20, // STA $2000
	)
	cpu.Step()
	cpu.Step()
	if got := bus.Read24(0x00, 0x2000); got != 0x42 {
		t.Fatalf("mem[$2000] = %#02x, want $42", got)
	}
}

func TestADC_BinaryMode_CarryOut(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0xA9, 0xFF, // LDA #$FF
		0x69, 0x02, // ADC #$02
	)
	cpu.Step()
	cpu.Step()
	if cpu.A&0xFF != 0x01 {
		t.Fatalf("A = %#02x, want $01", cpu.A&0xFF)
	}
	if !cpu.flag(flagC) {
		t.Fatalf("expected carry out of ADC $FF+$02")
	}
}

func TestADC_DecimalMode_BCDCarry(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0xF8,       // SED
		0xA9, 0x99, // LDA #$99 (BCD 99)
		0x69, 0x01, // ADC #$01 (BCD 01) -> should roll to 00 with carry
	)
	cpu.Step() // SED
	if !cpu.flag(flagD) {
		t.Fatalf("expected decimal flag set after SED")
	}
	cpu.Step() // LDA
	cpu.Step() // ADC
	if cpu.A&0xFF != 0x00 {
		t.Fatalf("BCD 99+01 = %#02x, want $00", cpu.A&0xFF)
	}
	if !cpu.flag(flagC) {
		t.Fatalf("expected carry out of BCD 99+01")
	}
}

func TestSBC_DecimalMode_BCDBorrow(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0xF8,       // SED
		0x38,       // SEC (no borrow going in)
		0xA9, 0x00, // LDA #$00
		0xE9, 0x01, // SBC #$01 -> BCD 00-01 = 99 with borrow
	)
	cpu.Step()
	cpu.Step()
	cpu.Step()
	cpu.Step()
	if cpu.A&0xFF != 0x99 {
		t.Fatalf("BCD 00-01 = %#02x, want $99", cpu.A&0xFF)
	}
	if cpu.flag(flagC) {
		t.Fatalf("expected carry clear (borrow) after BCD 00-01")
	}
}

func TestXCE_SwitchesToNativeMode(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0x18, // CLC
		0xFB, // XCE
	)
	cpu.Step() // CLC -> carry clear
	cpu.Step() // XCE swaps carry with emulation bit
	if cpu.emulationMode.Load() {
		t.Fatalf("expected native mode after XCE with carry clear")
	}
}

func TestREP_SEP_WidenRegisters(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0x18,       // CLC
		0xFB,       // XCE -> native mode
		0xC2, 0x30, // REP #$30 -> clear M and X (16-bit A/X/Y)
		0xE2, 0x30, // SEP #$30 -> set M and X again (8-bit A/X/Y)
	)
	cpu.Step()
	cpu.Step()
	cpu.Step()
	if cpu.flag(flagM) || cpu.flag(flagX) {
		t.Fatalf("expected M and X flags clear after REP #$30, P=%#02x", cpu.P)
	}
	if !cpu.wideA() || !cpu.wideXY() {
		t.Fatalf("expected 16-bit A/X/Y after REP #$30 in native mode")
	}
	cpu.Step()
	if !cpu.flag(flagM) || !cpu.flag(flagX) {
		t.Fatalf("expected M and X flags set after SEP #$30, P=%#02x", cpu.P)
	}
	if cpu.wideA() || cpu.wideXY() {
		t.Fatalf("expected 8-bit A/X/Y after SEP #$30")
	}
}

func TestBranch_BEQ_TakenAndNotTaken(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0xA9, 0x00, // LDA #$00 -> Z set
		0xF0, 0x02, // BEQ +2
		0xA9, 0xFF, // (skipped) LDA #$FF
		0xA9, 0x11, // LDA #$11
	)
	cpu.Step() // LDA #$00
	cpu.Step() // BEQ taken
	cpu.Step() // LDA #$11
	if cpu.A&0xFF != 0x11 {
		t.Fatalf("A = %#02x, want $11 (branch should have skipped LDA #$FF)", cpu.A&0xFF)
	}
}

func TestJSR_RTS_RoundTrip(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0x20, 0x00, 0x20, // JSR $2000
		0xEA, // NOP (return lands here)
	)
	bus.loadAt(0x00, 0x2000,
		0x60, // RTS
	)
	cpu.Step() // JSR
	if cpu.PC != 0x2000 {
		t.Fatalf("PC = %#04x after JSR, want $2000", cpu.PC)
	}
	cpu.Step() // RTS
	if cpu.PC != 0x1003 {
		t.Fatalf("PC = %#04x after RTS, want $1003", cpu.PC)
	}
}

func TestSTP_StopsExecution(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000, 0xDB) // STP
	cpu.Step()
	if !cpu.stopped.Load() {
		t.Fatalf("expected CPU stopped after STP")
	}
}

func TestIRQ_IgnoredWhenIFlagSet(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0xFFFE, 0x00, 0x30) // emulation-mode IRQ/BRK vector -> $3000
	pc := cpu.PC
	cpu.IRQ()
	if cpu.PC != pc {
		t.Fatalf("IRQ should be masked while I flag is set")
	}
	cpu.setFlag(flagI, false)
	cpu.IRQ()
	if cpu.PC != 0x3000 {
		t.Fatalf("PC = %#04x after unmasked IRQ, want $3000", cpu.PC)
	}
	if !cpu.flag(flagI) {
		t.Fatalf("expected I flag set by IRQ entry")
	}
}

func TestNMI_IgnoresIFlagAndEdgeTriggers(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0xFFFA, 0x00, 0x40) // emulation-mode NMI vector -> $4000
	cpu.setFlag(flagI, true)
	if cpu.NMIEdge(false) {
		t.Fatalf("NMIEdge should not fire on a low level")
	}
	if !cpu.NMIEdge(true) {
		t.Fatalf("expected NMIEdge to report a low-to-high transition")
	}
	if cpu.NMIEdge(true) {
		t.Fatalf("NMIEdge should not re-fire while the level stays high")
	}
	cpu.NMI()
	if cpu.PC != 0x4000 {
		t.Fatalf("PC = %#04x after NMI, want $4000 (NMI must ignore I flag)", cpu.PC)
	}
}

func TestASL_ROL_ShiftAndCarry(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0xA9, 0x81, // LDA #$81
		0x0A,       // ASL A -> $02, C=1
		0x2A,       // ROL A -> $05 (carry in from ASL rotates into bit 0)
	)
	cpu.Step()
	cpu.Step()
	if cpu.A&0xFF != 0x02 || !cpu.flag(flagC) {
		t.Fatalf("after ASL A: A=%#02x C=%v, want A=$02 C=true", cpu.A&0xFF, cpu.flag(flagC))
	}
	cpu.Step()
	if cpu.A&0xFF != 0x05 {
		t.Fatalf("after ROL A: A=%#02x, want $05", cpu.A&0xFF)
	}
}

func TestLSR_ROR_MemoryOperand(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x2000, 0x03)
	bus.loadAt(0x00, 0x1000,
		0x4E, 0x00, 0x20, // LSR $2000 -> $01, C=1
		0x6E, 0x00, 0x20, // ROR $2000 -> $80 (carry in), C=1 (bit 0 out)
	)
	cpu.Step()
	if got := bus.Read24(0x00, 0x2000); got != 0x01 {
		t.Fatalf("mem[$2000] = %#02x after LSR, want $01", got)
	}
	if !cpu.flag(flagC) {
		t.Fatalf("expected carry out of LSR $03")
	}
	cpu.Step()
	if got := bus.Read24(0x00, 0x2000); got != 0x80 {
		t.Fatalf("mem[$2000] = %#02x after ROR, want $80", got)
	}
	if !cpu.flag(flagC) {
		t.Fatalf("expected carry out of ROR $01")
	}
}

func TestBIT_ImmediateSkipsNAndV(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x1000,
		0xA9, 0x0F, // LDA #$0F
		0x89, 0xF0, // BIT #$F0 -> Z set, N/V untouched
	)
	cpu.Step()
	// Set N/V after the LDA, which itself updates N from the loaded value.
	cpu.setFlag(flagN, true)
	cpu.setFlag(flagV, true)
	cpu.Step()
	if !cpu.flag(flagZ) {
		t.Fatalf("expected Z set for BIT #$F0 against A=$0F")
	}
	if !cpu.flag(flagN) || !cpu.flag(flagV) {
		t.Fatalf("BIT immediate must not touch N/V")
	}
}

func TestBIT_Absolute_SetsNAndVFromOperand(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x2000, 0xC0) // bits 7 and 6 set
	bus.loadAt(0x00, 0x1000,
		0xA9, 0xFF, // LDA #$FF
		0x2C, 0x00, 0x20, // BIT $2000
	)
	cpu.Step()
	cpu.Step()
	if !cpu.flag(flagN) || !cpu.flag(flagV) {
		t.Fatalf("expected N and V set from operand bits 7/6, P=%#02x", cpu.P)
	}
	if cpu.flag(flagZ) {
		t.Fatalf("expected Z clear since A&mem != 0")
	}
}

func TestTSB_SetsZFromOverlapAndOrsBits(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0x2000, 0x0F)
	bus.loadAt(0x00, 0x1000,
		0xA9, 0xF0, // LDA #$F0 (no overlap with mem)
		0x0C, 0x00, 0x20, // TSB $2000
	)
	cpu.Step()
	cpu.Step()
	if !cpu.flag(flagZ) {
		t.Fatalf("expected Z set: A&mem was 0 before the OR")
	}
	if got := bus.Read24(0x00, 0x2000); got != 0xFF {
		t.Fatalf("mem[$2000] = %#02x after TSB, want $FF", got)
	}
}

func TestPHD_PLD_CrossPageWithoutWrap(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.S = 0x0101 // one push from wrapping off page $01 if PHD wrapped like PHA
	cpu.D = 0x1234
	bus.loadAt(0x00, 0x1000, 0x0B) // PHD
	cpu.Step()
	if cpu.S != 0x00FF {
		t.Fatalf("S = %#04x after PHD crossing $01FF, want $00FF (no page wrap)", cpu.S)
	}
	cpu.PC = 0x1001
	bus.loadAt(0x00, 0x1001, 0x2B) // PLD
	cpu.Step()
	if cpu.D != 0x1234 {
		t.Fatalf("D = %#04x after PLD round-trip, want $1234", cpu.D)
	}
}

func TestPush_WrapsWithinPageOneInEmulationMode(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.S = 0x0100
	bus.loadAt(0x00, 0x1000, 0x48) // PHA
	cpu.Step()
	if cpu.S != 0x01FF {
		t.Fatalf("S = %#04x after PHA from $0100, want $01FF (wrapped within page 1)", cpu.S)
	}
}

func TestMVN_CopiesBlockAndSetsDataBank(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x01, 0x4000, 0xAA, 0xBB, 0xCC)
	cpu.A = 0x0002 // 3 bytes to move
	cpu.X = 0x4000
	cpu.Y = 0x5000
	bus.loadAt(0x00, 0x1000, 0x54, 0x02, 0x01) // MVN destBank=$02, srcBank=$01
	cpu.Step()
	for i := uint16(0); i < 3; i++ {
		if got := bus.Read24(0x02, 0x5000+i); got != bus.Read24(0x01, 0x4000+i) {
			t.Fatalf("mem[$02:%#04x] = %#02x, want copy of mem[$01:%#04x]", 0x5000+i, got, 0x4000+i)
		}
	}
	if cpu.DB != 0x02 {
		t.Fatalf("DB = %#02x after MVN, want $02 (destination bank)", cpu.DB)
	}
	if cpu.A != 0xFFFF {
		t.Fatalf("A = %#04x after MVN exhausts its count, want $FFFF", cpu.A)
	}
}

func TestCOP_MirrorsBRKWithoutBFlagForcing(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0x00, 0xFFF4, 0x00, 0x50) // emulation-mode COP vector -> $5000
	bus.loadAt(0x00, 0x1000, 0x02, 0x00) // COP #$00
	cpu.Step()
	if cpu.PC != 0x5000 {
		t.Fatalf("PC = %#04x after COP, want $5000", cpu.PC)
	}
	if !cpu.flag(flagI) {
		t.Fatalf("expected I flag set by COP entry")
	}
}
