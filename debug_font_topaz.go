// debug_font_topaz.go - Topaz bitmap font loader for Machine Monitor's
// ebiten overlay, adapted from the teacher's video_terminal.go (whose
// VideoTerminal ANSI-terminal video chip this machine has no use for —
// see DESIGN.md). The teacher embeds its Topaz glyph ROM via go:embed;
// that binary asset isn't present in this retrieval pack, so this port
// loads it from an optional on-disk path instead of a compile-time embed,
// falling back to a blank glyph table (the overlay still renders, just
// without legible text) rather than fail to build over a missing asset.

package main

import "os"

const glyphWidth = 8
const glyphHeightBytes = 16

// topazFontPath is where loadTopazFont looks for the raw glyph ROM dump
// (256 glyphs * 16 bytes each, one bit per pixel per row, matching the
// Amiga Topaz font layout the teacher's overlay was built against).
var topazFontPath = "TopazPlus_a1200_v1.0.raw"

func loadTopazFont() [256][16]byte {
	var glyphs [256][16]byte
	data, err := os.ReadFile(topazFontPath)
	if err != nil || len(data) < len(glyphs)*glyphHeightBytes {
		return glyphs
	}
	offset := 0
	for g := 0; g < len(glyphs); g++ {
		copy(glyphs[g][:], data[offset:offset+glyphHeightBytes])
		offset += glyphHeightBytes
	}
	return glyphs
}
