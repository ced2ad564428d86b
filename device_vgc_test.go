// device_vgc_test.go - VGC scanline offset and mode softswitch tests.

package main

import "testing"

func TestDeviceVGC_ModeSwitchesViaRegisterAccess(t *testing.T) {
	v := NewDeviceVGC(nil)
	v.ReadRegister(0x57) // HIRES on
	if !v.modeHires {
		t.Fatalf("expected modeHires set after accessing $C057")
	}
	v.ReadRegister(0x56) // HIRES off
	if v.modeHires {
		t.Fatalf("expected modeHires cleared after accessing $C056")
	}
}

func TestDeviceVGC_ScanlineOffset_TextVsHires(t *testing.T) {
	v := NewDeviceVGC(nil)
	textOffset := v.ScanlineOffset()
	if textOffset != v.text1[0].Offset {
		t.Fatalf("default mode should read text1 offsets")
	}

	v.ReadRegister(0x57) // HIRES on
	hiresOffset := v.ScanlineOffset()
	if hiresOffset != v.hires1[0].Offset {
		t.Fatalf("HIRES mode should read hires1 offsets")
	}
}

func TestDeviceVGC_AdvanceScanline_WrapsAndPulsesVBL(t *testing.T) {
	timer := NewDeviceTimer()
	v := NewDeviceVGC(timer)
	for i := 0; i < scanlineCount; i++ {
		v.AdvanceScanline()
	}
	if v.currentScanline != 0 {
		t.Fatalf("expected scanline counter to wrap to 0 after a full frame")
	}
	if !timer.vblFlag {
		t.Fatalf("expected a VBL pulse to reach the timer on wraparound")
	}
	if v.vblCounter != 1 {
		t.Fatalf("vblCounter = %d, want 1 after one full frame", v.vblCounter)
	}
}

func TestDeviceVGC_WriteRegister_TextColor(t *testing.T) {
	v := NewDeviceVGC(nil)
	v.WriteRegister(0x22, 0xF3)
	if v.textFGColor != 0xF || v.textBGColor != 0x3 {
		t.Fatalf("fg=%x bg=%x, want fg=f bg=3", v.textFGColor, v.textBGColor)
	}
}

func TestDeviceVGC_Snapshot_ReturnsCopies(t *testing.T) {
	v := NewDeviceVGC(nil)
	text1, _, _, _, _ := v.Snapshot()
	text1[0].Offset = 0xFFFF
	if v.text1[0].Offset == 0xFFFF {
		t.Fatalf("Snapshot should return copies, not live arrays")
	}
}
