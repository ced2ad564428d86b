// snapshot.go - narrow snapshot contract. Snapshot serialization framing
// ("CLEMSNAP"/MessagePack) is explicitly out of scope (spec.md §1,
// SPEC_FULL.md §6.5): no msgpack library appears anywhere in the example
// corpus, so this defines only a plain-struct contract a host can encode
// however it chooses (gob, JSON, or its own msgpack choice).

package main

// MachineSnapshot is a read-only, serialization-agnostic view of machine
// state for a host renderer or debugger. It is never the live struct —
// Machine.Snapshot() always returns copies.
type MachineSnapshot struct {
	CPU        string
	Text1      [scanlineCount]Scanline
	Text2      [scanlineCount]Scanline
	Hires1     [scanlineCount]Scanline
	Hires2     [scanlineCount]Scanline
	SuperHires [scanlineCount]Scanline
}

// Snapshotter is implemented by any component that can externalize and
// restore its own state independently — per-component serializers, never
// a whole-struct memcpy-style blit (spec.md §9 design notes).
type Snapshotter interface {
	Snapshot() any
	Restore(state any) error
}
