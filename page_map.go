// page_map.go - per-256-byte page bank/shadow mapping, grounded on
// clem_mem.c's clem_mem_create_page_mapping()/clem_read()/clem_write() and
// clem_types.h's ClemensMMIOPageInfo/ClemensMMIOPageMap/ClemensMMIOShadowMap.

package main

const (
	pagesPerBank = 256 // 65536 / 256
)

// pageFlags mirror the read/write/no-op bits clem_mem.c checks before
// resolving a page's target bank.
type pageFlags uint8

const (
	pageReadOK pageFlags = 1 << iota
	pageWriteOK
	pageIOAddr  // page falls in the C000-C0FF I/O window
	pageCardMem // page is owned by a peripheral card ROM/RAM
	pageDirect  // bank/offset used as-is, no aux/main redirection
)

// pageInfo is the per-page entry clem_mem_create_page_mapping fills in:
// which physical bank a logical (bank, page) resolves to for reads and for
// writes, independently — aux/main bank switching can make them diverge.
type pageInfo struct {
	readBank  byte
	writeBank byte
	flags     pageFlags
}

// pageMap holds one pageInfo per page for a single 64KiB logical bank.
type pageMap [pagesPerBank]pageInfo

// shadowMap tracks, per page, whether writes to main-bank RAM also shadow
// into the corresponding E0/E1 bank — the mechanism clem_write() uses after
// its primary write to keep the Mega II's view of RAM coherent.
type shadowMap [pagesPerBank]bool

// PageTables owns the logical-to-physical page maps for banks 0x00 and 0x01
// (the only banks subject to aux/main and language-card redirection) plus
// their shadow maps. All other banks map directly onto themselves.
type PageTables struct {
	bank00 pageMap
	bank01 pageMap
	shadow00 shadowMap
	shadow01 shadowMap
}

// NewPageTables builds the identity mapping: every page reads and writes
// its own bank, nothing shadows, nothing is I/O. MMC.rebuildPageMap then
// punches in the actual softswitch-dependent redirections.
func NewPageTables() *PageTables {
	pt := &PageTables{}
	for i := 0; i < pagesPerBank; i++ {
		pt.bank00[i] = pageInfo{readBank: 0x00, writeBank: 0x00, flags: pageDirect}
		pt.bank01[i] = pageInfo{readBank: 0x01, writeBank: 0x01, flags: pageDirect}
	}
	// C0 page is always I/O regardless of aux/main state.
	pt.bank00[0xC0].flags |= pageIOAddr
	pt.bank01[0xC0].flags |= pageIOAddr
	return pt
}

// resolveRead returns the physical (bank, page) a logical page resolves to
// for a read, and whether it is an I/O page that must route through MMC
// device dispatch instead of BankMemory.
func (pt *PageTables) resolveRead(bank byte, page byte) (physBank byte, isIO bool) {
	pm := pt.pageMapFor(bank)
	if pm == nil {
		return bank, false
	}
	info := pm[page]
	return info.readBank, info.flags&pageIOAddr != 0
}

func (pt *PageTables) resolveWrite(bank byte, page byte) (physBank byte, isIO bool, shadows bool) {
	pm := pt.pageMapFor(bank)
	sm := pt.shadowMapFor(bank)
	if pm == nil {
		return bank, false, false
	}
	info := pm[page]
	shadow := false
	if sm != nil {
		shadow = sm[page]
	}
	return info.writeBank, info.flags&pageIOAddr != 0, shadow
}

func (pt *PageTables) pageMapFor(bank byte) *pageMap {
	switch bank {
	case 0x00:
		return &pt.bank00
	case 0x01:
		return &pt.bank01
	default:
		return nil
	}
}

func (pt *PageTables) shadowMapFor(bank byte) *shadowMap {
	switch bank {
	case 0x00:
		return &pt.shadow00
	case 0x01:
		return &pt.shadow01
	default:
		return nil
	}
}
