// mmc.go - Memory Mapping Controller: softswitch state machine and C0xx
// register dispatch, grounded on spec.md §4.4, clem_mmio.c's switch
// dispatch table, and clem_mem.c's shadow-write mechanism.

package main

import "sync"

// softswitch bit positions within MMC.switches, named after the C0xx
// registers a read/write to them toggles.
type softswitch uint32

const (
	swALTZP softswitch = 1 << iota
	swIntCXROM
	swSlotC3ROM
	sw80Store
	swRamRD
	swRamWRT
	swLCBank2
	swLCRead
	swLCWrite
	swIOUDisable
	sw80Col
	swAltCharSet
	swPage2
	swHires
	swTextMode
	swMixed
	swVidEx
	swShadowText
	swShadowHires1
	swShadowHires2
	swShadowSuperHires
	swShadowAux
	swShadowIOLC
)

// MMC is the Memory Mapping Controller. It owns the softswitch bits, the
// logical page tables, and dispatches C000-C0FF accesses to the device
// that owns each register, per spec.md §4.4's register-to-device map.
type MMC struct {
	mu       sync.Mutex
	switches softswitch
	pages    *PageTables
	mem      *BankMemory

	rtc    *DeviceRTC
	adb    *DeviceADB
	timer  *DeviceTimer
	scc    *DeviceSCC
	audio  *DeviceAudio
	vgc    *DeviceVGC
	iwm    *IWM
	debug  DebugSink

	// Clock is the shared clocks_spent/clocks_step counter spec.md §4.1
	// describes; every CPU memory cycle through Read24/Write24 advances it.
	Clock *Clock
}

// NewMMC wires a Memory Mapping Controller to its backing memory and
// device set. Devices are constructed by Machine and handed in so MMC
// never owns their lifecycle, only their register dispatch.
func NewMMC(mem *BankMemory, rtc *DeviceRTC, adb *DeviceADB, timer *DeviceTimer, scc *DeviceSCC, audio *DeviceAudio, vgc *DeviceVGC, iwm *IWM, debug DebugSink) *MMC {
	m := &MMC{
		pages: NewPageTables(),
		mem:   mem,
		rtc:   rtc,
		adb:   adb,
		timer: timer,
		scc:   scc,
		audio: audio,
		vgc:   vgc,
		iwm:   iwm,
		debug: debug,
		Clock: NewClock(),
	}
	m.rebuildPageMap()
	return m
}

func (m *MMC) set(bit softswitch, on bool) {
	if on {
		m.switches |= bit
	} else {
		m.switches &^= bit
	}
}

func (m *MMC) isSet(bit softswitch) bool { return m.switches&bit != 0 }

// rebuildPageMap recomputes bank 00/01 page redirection from the current
// softswitch state: RAMRD/RAMWRT pick main vs aux RAM for data pages,
// 80STORE+PAGE2 override them for the text/hires display pages, and the
// language-card switches remap D000-FFFF onto the LC banks. This mirrors
// clem_mem.c's page-table rebuild, done eagerly on every softswitch write
// rather than lazily per access.
func (m *MMC) rebuildPageMap() {
	m.mu.Lock()
	defer m.mu.Unlock()

	auxRead := m.isSet(swRamRD)
	auxWrite := m.isSet(swRamWRT)
	store80 := m.isSet(sw80Store)
	page2 := m.isSet(swPage2)
	hires := m.isSet(swHires)
	lcRead := m.isSet(swLCRead)

	for page := 0; page < pagesPerBank; page++ {
		readBank00 := byte(0x00)
		writeBank00 := byte(0x00)
		if auxRead {
			readBank00 = 0x01
		}
		if auxWrite {
			writeBank00 = 0x01
		}

		// 80STORE overrides RAMRD/RAMWRT for the text page (0x04-0x07) and,
		// when HIRES is also set, the hires page (0x20-0x3F) — selecting
		// main vs aux by PAGE2 instead.
		inTextPage := page >= 0x04 && page <= 0x07
		inHiresPage := page >= 0x20 && page <= 0x3F
		if store80 && (inTextPage || (hires && inHiresPage)) {
			if page2 {
				readBank00, writeBank00 = 0x01, 0x01
			} else {
				readBank00, writeBank00 = 0x00, 0x00
			}
		}

		// D0-FF defaults to ROM-visible whenever the language card isn't
		// switched to read RAM, matching clem_mem.c's reset-time mapping
		// (ROM must be reachable at $FFFC/$FFFD before any LC switch is
		// ever touched). rebuildLanguageCard then overrides this when
		// swLCRead/swLCWrite select the LC RAM halves instead.
		if page >= 0xD0 && !lcRead {
			readBank00 = 0xFF
		}

		m.pages.bank00[page].readBank = readBank00
		m.pages.bank00[page].writeBank = writeBank00
		m.pages.bank01[page].readBank = 0x01
		m.pages.bank01[page].writeBank = 0x01

		m.pages.shadow00[page] = m.shadowsPage(page)
	}

	m.rebuildLanguageCard()
}

// shadowsPage reports whether writes to this page of bank 00 also shadow
// into bank E0, following the SHADOW_TEXT/HIRES1/HIRES2/SUPERHIRES bits.
func (m *MMC) shadowsPage(page int) bool {
	switch {
	case page >= 0x04 && page <= 0x07:
		return m.isSet(swShadowText)
	case page >= 0x20 && page <= 0x3F:
		return m.isSet(swShadowHires1)
	case page >= 0x40 && page <= 0x5F:
		return m.isSet(swShadowHires2)
	case page >= 0x60 && page <= 0x9F:
		return m.isSet(swShadowSuperHires)
	default:
		return false
	}
}

// rebuildLanguageCard points bank 00's $D000-$DFFF pages at bank 0x01 when
// LCBank2 is selected (for reads if LCRead is set, for writes if LCWrite is
// set), using bank 0x01's upper half as backing storage for bank-2 the way
// clem_mem.c does. $E000-$FFFF stays on bank 00, bank 01's page map is not
// changed, and a clear LCWrite does not block writes to $D000-$FFFF.
func (m *MMC) rebuildLanguageCard() {
	if !m.isSet(swLCRead) && !m.isSet(swLCWrite) {
		return
	}
	// Pages 0xD0-0xFF of bank 00 redirect to language-card RAM; which
	// physical half backs $D000-$DFFF depends on LCBank2. Implemented as a
	// read/write bank flag rather than a full separate bank, consistent
	// with how bank00/bank01 already serve as the two LC bank halves.
	for page := 0xD0; page <= 0xFF; page++ {
		if m.isSet(swLCRead) {
			if page <= 0xDF && m.isSet(swLCBank2) {
				m.pages.bank00[page].readBank = 0x01
			}
		}
		if m.isSet(swLCWrite) {
			if page <= 0xDF && m.isSet(swLCBank2) {
				m.pages.bank00[page].writeBank = 0x01
			}
		}
	}
}

// ReadIO dispatches a C000-C0FF read to the owning device, per spec.md
// §4.4's register map. Unmapped registers return the floating-bus byte
// (floatingBusByte) and are reported to the debug sink rather than panicking.
func (m *MMC) ReadIO(reg byte) byte {
	switch {
	case reg == 0x00 || reg == 0x01 || reg == 0x02 || reg == 0x03:
		return m.readKeyboardState(reg)
	case reg >= 0x10 && reg <= 0x1F:
		return m.readStatusSwitch(reg)
	case reg >= 0x24 && reg <= 0x27:
		return m.adb.ReadRegister(reg)
	case reg == 0x33 || reg == 0x34:
		return m.rtc.ReadRegister(reg)
	case reg >= 0x38 && reg <= 0x3B:
		return m.scc.ReadRegister(reg)
	case reg >= 0x3C && reg <= 0x3F:
		return m.audio.ReadRegister(reg)
	case reg == 0x19 || reg == 0x23 || reg == 0x32 || reg == 0x41 || reg == 0x46 || reg == 0x47:
		return m.timer.ReadRegister(reg)
	case reg >= 0x50 && reg <= 0x5F:
		return m.vgc.ReadRegister(reg)
	case reg >= 0xE0 && reg <= 0xEF:
		return m.iwm.readSwitch(reg)
	case reg == 0x71, reg >= 0x80 && reg <= 0x8F:
		return m.readBankSelectSwitch(reg)
	default:
		if m.debug != nil {
			m.debug.IOUnmapped(reg, false)
		}
		return m.floatingBusByte()
	}
}

// floatingBusByte returns the byte currently "under the CRT beam" for an
// I/O register with no backing handler, per spec.md §4.2's floating-bus
// rule: derive horizontal/vertical position from the VGC's scanline state,
// map to the active video page's offset table, and index into the Mega II
// bank it lives in. Blanking periods read as 0.
func (m *MMC) floatingBusByte() byte {
	if m.vgc.IsVBlank() || m.vgc.IsHBlank() {
		return 0
	}
	offset := m.vgc.ScanlineOffset()
	return m.mem.ReadByte(m.vgc.ScanlineBank(), offset)
}

// WriteIO dispatches a C000-C0FF write, toggling softswitches directly for
// registers that are pure state bits and routing the rest to devices.
func (m *MMC) WriteIO(reg byte, value byte) {
	switch {
	case reg == 0x00:
		m.set(sw80Store, false)
		m.rebuildPageMap()
	case reg == 0x01:
		m.set(sw80Store, true)
		m.rebuildPageMap()
	case reg == 0x02:
		m.set(swRamRD, false)
		m.rebuildPageMap()
	case reg == 0x03:
		m.set(swRamRD, true)
		m.rebuildPageMap()
	case reg == 0x04:
		m.set(swRamWRT, false)
		m.rebuildPageMap()
	case reg == 0x05:
		m.set(swRamWRT, true)
		m.rebuildPageMap()
	case reg == 0x06:
		m.set(swIntCXROM, false)
	case reg == 0x07:
		m.set(swIntCXROM, true)
	case reg == 0x08:
		m.set(swAltCharSet, false)
	case reg == 0x09:
		m.set(swAltCharSet, true)
	case reg == 0x0A:
		m.set(sw80Col, false)
	case reg == 0x0B:
		m.set(sw80Col, true)
	case reg >= 0x24 && reg <= 0x27:
		m.adb.WriteRegister(reg, value)
	case reg == 0x33 || reg == 0x34:
		m.rtc.WriteRegister(reg, value)
	case reg >= 0x38 && reg <= 0x3B:
		m.scc.WriteRegister(reg, value)
	case reg >= 0x3C && reg <= 0x3F:
		m.audio.WriteRegister(reg, value)
	case reg == 0x32 || reg == 0x41 || reg == 0x46 || reg == 0x47:
		m.timer.WriteRegister(reg, value)
	case reg == 0x22 || reg >= 0x50 && reg <= 0x5F:
		m.vgc.WriteRegister(reg, value)
	case reg >= 0xE0 && reg <= 0xEF:
		m.iwm.data = value
		m.iwm.writeSwitch(reg)
	case reg == 0x68:
		m.writeLanguageCardSwitch(value)
		m.rebuildPageMap()
	case reg >= 0x80 && reg <= 0x8F:
		m.writeLanguageCardSwitchLegacy(reg)
		m.rebuildPageMap()
	default:
		if m.debug != nil {
			m.debug.IOUnmapped(reg, true)
		}
	}
}

func (m *MMC) readKeyboardState(reg byte) byte {
	return m.adb.ReadRegister(reg)
}

func (m *MMC) readStatusSwitch(reg byte) byte {
	// C010-C01F: read-only status bits reporting current softswitch state
	// in bit 7, clearing the keyboard-strobe latch as a side effect for C010.
	switch reg {
	case 0x10:
		return m.adb.ClearKeyStrobe()
	case 0x13:
		return boolBit(m.isSet(swRamRD))
	case 0x14:
		return boolBit(m.isSet(swRamWRT))
	case 0x15:
		return boolBit(m.isSet(swIntCXROM))
	case 0x16:
		return boolBit(m.isSet(swAltCharSet))
	case 0x17:
		return boolBit(m.isSet(sw80Store))
	case 0x18:
		return boolBit(m.isSet(swPage2))
	case 0x19:
		return m.timer.ReadRegister(reg)
	case 0x1A:
		return boolBit(m.isSet(swTextMode))
	case 0x1B:
		return boolBit(m.isSet(swMixed))
	case 0x1E:
		return boolBit(m.isSet(swVidEx))
	case 0x1F:
		return boolBit(m.isSet(sw80Col))
	default:
		return 0
	}
}

func boolBit(b bool) byte {
	if b {
		return 0x80
	}
	return 0x00
}

func (m *MMC) readBankSelectSwitch(reg byte) byte {
	status := byte(0)
	if m.isSet(swLCRead) {
		status |= 0x80
	}
	if !m.isSet(swLCWrite) {
		status |= 0x02
	}
	if m.isSet(swLCBank2) {
		status |= 0x01
	}
	return status
}

func (m *MMC) writeLanguageCardSwitch(value byte) {
	m.set(swLCBank2, value&0x01 != 0)
	m.set(swLCRead, value&0x02 != 0)
	m.set(swLCWrite, value&0x04 != 0)
}

// writeLanguageCardSwitchLegacy decodes the classic Apple II C080-C08F
// language-card switch encoding, preserved for ROM routines that still use
// it. A single write to an odd address enables writes; reads of C080-C08F
// only return status (readBankSelectSwitch) and do not switch anything.
func (m *MMC) writeLanguageCardSwitchLegacy(reg byte) {
	bank2 := reg&0x08 == 0
	// Classic Apple II encoding: bit0 set selects write-enable, and the LC
	// RAM bank is read back only when bit0 and bit1 agree ($C081/$C083 read
	// RAM, $C080/$C082 read ROM).
	readFromRAM := (reg&0x01 != 0) == (reg&0x02 != 0)
	writeEnable := reg&0x01 != 0
	m.set(swLCBank2, bank2)
	m.set(swLCRead, readFromRAM)
	m.set(swLCWrite, writeEnable)
}

// Read24 performs a full bank/offset read through the page map, routing
// I/O pages to ReadIO and RAM pages to BankMemory. Every call advances the
// shared Clock by one CPU memory cycle (spec.md §4.1), using the Mega II
// step whenever the access lands in a Mega II region (E0/E1, or any I/O
// page in bank 00/01).
func (m *MMC) Read24(bank byte, offset uint16) byte {
	if bank != 0x00 && bank != 0x01 {
		mega2 := bank == 0xE0 || bank == 0xE1
		m.Clock.Advance(mega2)
		return m.mem.ReadByte(bank, offset)
	}
	page := byte(offset >> 8)
	physBank, isIO := m.pages.resolveRead(bank, page)
	if isIO {
		m.Clock.Advance(true)
		return m.ReadIO(byte(offset))
	}
	m.Clock.Advance(false)
	return m.mem.ReadByte(physBank, offset)
}

// Write24 performs a full bank/offset write through the page map, applying
// the Mega II shadow-write rule: a write that lands on a shadowed page is
// mirrored into bank E0/E1 in addition to its primary target, per
// clem_mem.c's clem_write().
func (m *MMC) Write24(bank byte, offset uint16, value byte) {
	if bank != 0x00 && bank != 0x01 {
		mega2 := bank == 0xE0 || bank == 0xE1
		m.Clock.Advance(mega2)
		m.mem.WriteByte(bank, offset, value)
		return
	}
	page := byte(offset >> 8)
	physBank, isIO, shadows := m.pages.resolveWrite(bank, page)
	if isIO {
		m.Clock.Advance(true)
		m.WriteIO(byte(offset), value)
		return
	}
	m.Clock.Advance(false)
	m.mem.WriteByte(physBank, offset, value)
	if shadows {
		shadowBank := byte(0xE0 | (bank & 1))
		m.mem.WriteByte(shadowBank, offset, value)
	}
}
