// drive_35_test.go - 3.5" drive control/query protocol tests.

package main

import "testing"

func TestDrive35_InsertClearsEjectedStatus(t *testing.T) {
	d := NewDrive35()
	d.status |= disk35StatusEjected
	d.InsertDisk(&WozImage{DiskType: 2})
	if d.Query(Disk35QueryDiskInDrive) != true {
		t.Fatalf("expected disk-in-drive query true after insert")
	}
	if d.Query(Disk35QueryEjected) {
		t.Fatalf("expected ejected status cleared after insert")
	}
}

func TestDrive35_StepMovesTrackAndStartsTimer(t *testing.T) {
	d := NewDrive35()
	d.Control(Disk35CtlStepIn)
	if d.track != 1 {
		t.Fatalf("track = %d, want 1 after one step-in", d.track)
	}
	if !d.Query(Disk35QueryIsStepping) {
		t.Fatalf("expected is-stepping true immediately after a step")
	}
}

func TestDrive35_StepClampedToRange(t *testing.T) {
	d := NewDrive35()
	for i := 0; i < 200; i++ {
		d.Control(Disk35CtlStepOut)
	}
	if !d.Query(Disk35QueryTrack0) {
		t.Fatalf("expected track0 true after stepping out past zero")
	}
	for i := 0; i < 300; i++ {
		d.Control(Disk35CtlStepIn)
	}
	if d.track != 159 {
		t.Fatalf("track = %d, want clamped to 159", d.track)
	}
}

func TestDrive35_MotorOnOff(t *testing.T) {
	d := NewDrive35()
	d.Control(Disk35CtlMotorOn)
	if !d.Query(Disk35QueryMotorOn) {
		t.Fatalf("expected motor on")
	}
	d.Control(Disk35CtlMotorOff)
	if d.Query(Disk35QueryMotorOn) {
		t.Fatalf("expected motor off")
	}
}

func TestDrive35_EjectTakesTimeToComplete(t *testing.T) {
	d := NewDrive35()
	d.InsertDisk(&WozImage{DiskType: 2})
	d.Control(Disk35CtlEject)
	if d.Query(Disk35QueryEjected) {
		t.Fatalf("eject should not be immediate")
	}
	d.Tick(disk35EjectTimeNs + 1)
	if !d.Query(Disk35QueryEjected) {
		t.Fatalf("expected ejected true once eject timer elapses")
	}
	if d.Query(Disk35QueryDiskInDrive) {
		t.Fatalf("expected image cleared after eject completes")
	}
}

func TestDrive35_StepTimerCountsDownViaTick(t *testing.T) {
	d := NewDrive35()
	d.Control(Disk35CtlStepOne)
	if !d.Query(Disk35QueryIsStepping) {
		t.Fatalf("expected stepping true right after CtlStepOne")
	}
	d.Tick(disk35StepTimeNs + 1)
	if d.Query(Disk35QueryIsStepping) {
		t.Fatalf("expected stepping false after step timer elapses")
	}
}

func TestDrive35_Query60HzRotationAlwaysFalse(t *testing.T) {
	d := NewDrive35()
	if d.Query(Disk35Query60HzRotation) {
		t.Fatalf("60Hz rotation query should always be false (no hardware signal backs it)")
	}
}

func TestDrive35_SetCtlSwitchBitPacking(t *testing.T) {
	d := NewDrive35()
	d.SetCtlSwitch(true, true, true, true)
	if !d.Query(Disk35QueryIOHeadUpper) {
		t.Fatalf("expected IOHeadUpper true when headSel set")
	}
	if d.Query(Disk35QueryIOHeadLower) {
		t.Fatalf("expected IOHeadLower false when headSel set")
	}
}
