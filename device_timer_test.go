// device_timer_test.go - VBL/quarter-second timer interrupt tests.

package main

import "testing"

func TestDeviceTimer_TickRaisesQtrSecFlag(t *testing.T) {
	tm := NewDeviceTimer()
	tm.Tick(defaultCyclesPerQtrSec)
	if !tm.qtrSecFlag {
		t.Fatalf("expected qtrSecFlag set after ticking a full quarter-second")
	}
}

func TestDeviceTimer_VBLPulse(t *testing.T) {
	tm := NewDeviceTimer()
	tm.VBLPulse()
	if !tm.vblFlag {
		t.Fatalf("expected vblFlag set after VBLPulse")
	}
}

func TestDeviceTimer_IRQAssertedRequiresEnable(t *testing.T) {
	tm := NewDeviceTimer()
	tm.vblFlag = true
	if tm.IRQAsserted() {
		t.Fatalf("expected no IRQ with VBL interrupt disabled")
	}
	tm.WriteRegister(0x41, 0x02) // enable VBL IRQ
	if !tm.IRQAsserted() {
		t.Fatalf("expected IRQ asserted once VBL IRQ is enabled and flag is set")
	}
}

func TestDeviceTimer_ClearFlagsViaC046C047(t *testing.T) {
	tm := NewDeviceTimer()
	tm.vblFlag = true
	tm.qtrSecFlag = true
	tm.WriteRegister(0x46, 0)
	if tm.vblFlag {
		t.Fatalf("expected vblFlag cleared by C046 write")
	}
	tm.WriteRegister(0x47, 0)
	if tm.qtrSecFlag {
		t.Fatalf("expected qtrSecFlag cleared by C047 write")
	}
}

func TestDeviceTimer_C032ClearsBothFlags(t *testing.T) {
	tm := NewDeviceTimer()
	tm.vblFlag = true
	tm.qtrSecFlag = true
	tm.WriteRegister(0x32, 0)
	if tm.vblFlag || tm.qtrSecFlag {
		t.Fatalf("expected both flags cleared by C032 write")
	}
}
