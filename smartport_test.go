// smartport_test.go - SmartPort bus fan-out and block-device tests.

package main

import "testing"

func TestSmartPortBus_NoUnitsAttached(t *testing.T) {
	b := NewSmartPortBus()
	_, active := b.Tick(true, false, false, false)
	if active {
		t.Fatalf("expected bus inactive with no units attached")
	}
}

func TestSmartPortBus_UnitClaimsBusOnPhase0(t *testing.T) {
	b := NewSmartPortBus()
	dev := NewSmartPortBlockDevice(1, 0, make([]byte, smartPortBlockSize*4))
	b.Attach(0, dev)

	_, active := b.Tick(true, false, false, false)
	if !active {
		t.Fatalf("expected bus active once a unit claims it on phase0")
	}
	if !b.active {
		t.Fatalf("expected SmartPortBus.active updated after Tick")
	}

	_, active = b.Tick(false, false, false, false)
	if active {
		t.Fatalf("expected bus inactive when phase0 is not asserted")
	}
	if b.active {
		t.Fatalf("expected SmartPortBus.active cleared when no unit claims the bus")
	}
}

func TestSmartPortBlockDevice_2IMGHeaderSkipped(t *testing.T) {
	image := make([]byte, 64+smartPortBlockSize*2)
	copy(image[0:4], []byte("2IMG"))
	image[64] = 0xAB
	dev := NewSmartPortBlockDevice(1, 0, image)
	if dev.BlockCount() != 2 {
		t.Fatalf("BlockCount = %d, want 2 after skipping the 64-byte 2IMG header", dev.BlockCount())
	}
	block := dev.ReadBlock(0)
	if block[0] != 0xAB {
		t.Fatalf("ReadBlock(0)[0] = %#02x, want $AB (first byte past header)", block[0])
	}
}

func TestSmartPortBlockDevice_RawImageNoHeader(t *testing.T) {
	image := make([]byte, smartPortBlockSize*2)
	image[0] = 0x11
	dev := NewSmartPortBlockDevice(1, 0, image)
	if dev.BlockCount() != 2 {
		t.Fatalf("BlockCount = %d, want 2 for a raw headerless image", dev.BlockCount())
	}
}

func TestSmartPortBlockDevice_WriteThenReadRoundTrip(t *testing.T) {
	image := make([]byte, smartPortBlockSize*2)
	dev := NewSmartPortBlockDevice(1, 0, image)
	payload := make([]byte, smartPortBlockSize)
	payload[0] = 0x77
	dev.WriteBlock(1, payload)
	got := dev.ReadBlock(1)
	if got[0] != 0x77 {
		t.Fatalf("ReadBlock(1)[0] = %#02x after WriteBlock, want $77", got[0])
	}
}

func TestSmartPortBlockDevice_OutOfRangeReadReturnsNil(t *testing.T) {
	dev := NewSmartPortBlockDevice(1, 0, make([]byte, smartPortBlockSize))
	if dev.ReadBlock(5) != nil {
		t.Fatalf("expected nil for an out-of-range block read")
	}
}
