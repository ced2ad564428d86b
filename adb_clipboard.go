//go:build !headless

// adb_clipboard.go - host clipboard-paste-as-keystrokes injection,
// adapted from video_backend_ebiten.go's handleClipboardPaste (lazy
// clipboard.Init via sync.Once, text normalization, paste-length cap)
// to push ASCII bytes into DeviceADB's key queue instead of emitting
// bytes to a CPU-specific keyboard port.

package main

import (
	"sync"

	"golang.design/x/clipboard"
)

func init() {
	compiledFeatures = append(compiledFeatures, "adb:clipboard")
}

// ClipboardPaster injects the host clipboard's text contents into an
// ADB device as a sequence of ASCII key bytes, letting a user paste
// text into the emulated machine instead of typing it key by key.
type ClipboardPaster struct {
	once sync.Once
	ok   bool
	adb  *DeviceADB
}

// NewClipboardPaster returns a paster bound to the given ADB device.
// clipboard.Init is deferred to the first Paste call since it touches
// host OS clipboard services that a headless test run never needs.
func NewClipboardPaster(adb *DeviceADB) *ClipboardPaster {
	return &ClipboardPaster{adb: adb}
}

// Paste reads the host clipboard and pushes each translatable byte
// into the ADB key queue. Non-ASCII bytes and control codes other than
// newline/tab are dropped; this is a convenience for pasting plain
// text, not a full host-IME bridge.
func (p *ClipboardPaster) Paste() {
	p.once.Do(func() {
		p.ok = clipboard.Init() == nil
	})
	if !p.ok {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	data = normalizeClipboardText(data)
	data = capClipboardText(data, 4096)
	for _, b := range data {
		p.adb.PushKey(b)
	}
}

func normalizeClipboardText(raw []byte) []byte {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\r':
			continue
		case '\n', '\t':
			norm = append(norm, raw[i])
		default:
			if raw[i] >= 0x20 && raw[i] < 0x7f {
				norm = append(norm, raw[i])
			}
		}
	}
	return norm
}

func capClipboardText(raw []byte, max int) []byte {
	if len(raw) <= max {
		return raw
	}
	return raw[:max]
}
