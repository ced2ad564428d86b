// drive_525_test.go - Disk II stepper/head-model tests.

package main

import "testing"

func testImage525() *WozImage {
	img := &WozImage{DiskType: 1, BitTimingNs: 4000}
	for i := range img.TrackMap {
		img.TrackMap[i] = -1
	}
	img.TrackMap[0] = 0
	img.Tracks = []WozTrack{
		{Data: []byte{0xAA, 0x00, 0x00}, BitCount: 24},
	}
	return img
}

func TestDrive525_InsertAndEject(t *testing.T) {
	d := NewDrive525()
	img := testImage525()
	d.InsertDisk(img)
	if d.currentTrack() == nil {
		t.Fatalf("expected track 0 mapped after insert")
	}
	d.EjectDisk()
	if d.currentTrack() != nil {
		t.Fatalf("expected no track after eject")
	}
}

func TestDrive525_StartsAtTrackZero(t *testing.T) {
	d := NewDrive525()
	if !d.AtTrackZero() {
		t.Fatalf("expected drive to start at track zero")
	}
}

func TestDrive525_PhaseTableLookupMovesHead(t *testing.T) {
	d := NewDrive525()
	d.qtrTrack = 5 // column index into the cog table, same-package field access
	d.SetPhase(0, false) // row 0 (no phase magnets energized), col 5 -> +1 per s_disk2_phase_states
	if d.QuarterTrack() != 6 {
		t.Fatalf("QuarterTrack = %d, want 6 (row0/col5 delta of +1)", d.QuarterTrack())
	}
}

func TestDrive525_HeadPositionClampedToRange(t *testing.T) {
	d := NewDrive525()
	for i := 0; i < 4000; i++ {
		d.SetPhase(i%4, true)
		d.SetPhase((i+2)%4, false)
	}
	if d.QuarterTrack() < 0 || d.QuarterTrack() >= maxQtrTrack525 {
		t.Fatalf("head position %d out of range [0,%d)", d.QuarterTrack(), maxQtrTrack525)
	}
}

func TestDrive525_ReadBitFromRealTrackData(t *testing.T) {
	d := NewDrive525()
	d.InsertDisk(testImage525())
	bit, isFake := d.ReadBit(false)
	if isFake {
		t.Fatalf("expected a real bit from formatted track data")
	}
	if bit != 1 {
		t.Fatalf("first bit of 0xAA should be 1, got %d", bit)
	}
}

func TestDrive525_ReadBitFakeWhenNoImage(t *testing.T) {
	d := NewDrive525()
	_, isFake := d.ReadBit(false)
	if !isFake {
		t.Fatalf("expected fake bit substitution with no disk inserted")
	}
}

func TestDrive525_ReadBitFakeOnWeakRegion(t *testing.T) {
	d := NewDrive525()
	d.InsertDisk(testImage525())
	_, isFake := d.ReadBit(true)
	if !isFake {
		t.Fatalf("expected fake bit substitution when last four bits were zero")
	}
}

func TestDrive525_MotorOnOff(t *testing.T) {
	d := NewDrive525()
	if d.MotorOn() {
		t.Fatalf("expected motor off initially")
	}
	d.SetMotor(true)
	if !d.MotorOn() {
		t.Fatalf("expected motor on after SetMotor(true)")
	}
}

func TestDrive525_WriteProtectFollowsImage(t *testing.T) {
	d := NewDrive525()
	img := testImage525()
	img.WriteProtect = true
	d.InsertDisk(img)
	if !d.WriteProtected() {
		t.Fatalf("expected write-protect to follow inserted image")
	}
}
