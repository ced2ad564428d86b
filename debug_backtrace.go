// debug_backtrace.go - 65C816 stack backtrace for Machine Monitor

package main

import "encoding/binary"

// backtrace walks the 65C816 stack and returns up to depth JSR return
// addresses, generalizing the teacher's 6502 backtrace technique (add 1
// to each popped address since JSR pushes return-1) to the 816's 16-bit
// stack pointer, which isn't pinned to page 1 once native mode is entered.
// Every frame is read as a 2-byte JSR frame: the extra bank byte a JSL
// pushes is not skipped, so frames above a JSL are misaligned.
func backtrace(cpu DebuggableCPU, depth int) []uint64 {
	sp, _ := cpu.GetRegister("S")
	var result []uint64
	for range depth {
		data := cpu.ReadMemory(sp+1, 2)
		if len(data) < 2 {
			break
		}
		addr := uint64(binary.LittleEndian.Uint16(data)) + 1
		result = append(result, addr)
		sp += 2
	}
	return result
}
