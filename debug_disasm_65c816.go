// debug_disasm_65c816.go - 65C816 disassembler for Machine Monitor, built
// from CPU65C816's own opcodeTable (name + addressing mode per opcode)
// since none of the teacher's per-architecture disassembler files (all
// deleted, see DESIGN.md) apply to this CPU.

package main

import "fmt"

// operandSize returns the number of operand bytes (excluding the opcode
// byte itself) for an instruction, given the live M/X width flags since
// immediate-mode operands on this CPU are 8 or 16 bits depending on them.
func operandSize(name string, mode AddrMode, wideA, wideXY bool) int {
	switch mode {
	case AddrNone, AddrImplied, AddrAccumulator:
		return 0
	case AddrImmediate:
		switch name {
		case "REP", "SEP":
			return 1
		case "LDX", "LDY", "CPX", "CPY":
			if wideXY {
				return 2
			}
			return 1
		default:
			if wideA {
				return 2
			}
			return 1
		}
	case AddrAbsolute, AddrAbsoluteIndexedX, AddrAbsoluteIndexedY,
		AddrAbsoluteIndirect, AddrAbsoluteIndirectLong, AddrAbsoluteIndexedIndirect,
		AddrRelativeLong16, AddrBlockMove:
		return 2
	case AddrAbsoluteLong, AddrAbsoluteLongIndexedX:
		return 3
	case AddrRelative8:
		return 1
	default: // DP and all its indexed/indirect variants, stack-relative variants
		return 1
	}
}

// disassemble65C816 walks count instructions starting at addr (a 24-bit
// bank:offset value, per CPU65C816's PB:PC encoding), reading bytes
// through the CPU's bus the same way Step's fetch does.
func disassemble65C816(cpu *CPU65C816, addr uint64, count int) []DisassembledLine {
	wideA, wideXY := cpu.wideA(), cpu.wideXY()
	lines := make([]DisassembledLine, 0, count)
	a := addr
	for i := 0; i < count; i++ {
		bank := byte(a >> 16)
		off := uint16(a)
		op := cpu.bus.Read24(bank, off)
		entry := cpu.opcodeTable[op]
		if entry.fn == nil {
			lines = append(lines, DisassembledLine{
				Address: a, HexBytes: fmt.Sprintf("%02X", op),
				Mnemonic: ".byte $" + fmt.Sprintf("%02X", op), Size: 1,
			})
			a++
			continue
		}
		nOperand := operandSize(entry.name, entry.mode, wideA, wideXY)
		size := 1 + nOperand
		hex := fmt.Sprintf("%02X", op)
		operandBytes := make([]byte, nOperand)
		for j := 0; j < nOperand; j++ {
			operandBytes[j] = cpu.bus.Read24(bank, off+1+uint16(j))
			hex += fmt.Sprintf(" %02X", operandBytes[j])
		}

		isBranch := entry.mode == AddrRelative8 || entry.mode == AddrRelativeLong16 ||
			entry.name == "JMP" || entry.name == "JSR" || entry.name == "JSL" ||
			entry.name == "BRA" || entry.name == "BRL"
		var target uint64
		switch entry.mode {
		case AddrRelative8:
			disp := int8(operandBytes[0])
			target = uint64(bank)<<16 | uint64(uint16(int32(off)+int32(size)+int32(disp)))
		case AddrRelativeLong16:
			disp := int16(uint16(operandBytes[0]) | uint16(operandBytes[1])<<8)
			target = uint64(bank)<<16 | uint64(uint16(int32(off)+int32(size)+int32(disp)))
		case AddrAbsolute:
			if entry.name == "JMP" || entry.name == "JSR" {
				target = uint64(bank)<<16 | uint64(operandBytes[0]) | uint64(operandBytes[1])<<8
			}
		case AddrAbsoluteLong:
			if entry.name == "JMP" || entry.name == "JSL" {
				target = uint64(operandBytes[2])<<16 | uint64(operandBytes[0]) | uint64(operandBytes[1])<<8
			}
		}

		lines = append(lines, DisassembledLine{
			Address:      a,
			HexBytes:     hex,
			Mnemonic:     formatMnemonic(entry.name, entry.mode, operandBytes),
			Size:         size,
			IsBranch:     isBranch,
			BranchTarget: target,
		})
		a += uint64(size)
	}
	return lines
}

// formatMnemonic renders an opcode name plus its operand in a syntax
// matching the 65816 assemblers this machine's guest software was written
// against: $-prefixed hex, ",X"/",Y" indexing, parens for indirection.
func formatMnemonic(name string, mode AddrMode, operand []byte) string {
	switch mode {
	case AddrNone, AddrImplied:
		return name
	case AddrAccumulator:
		return name + " A"
	case AddrImmediate:
		if len(operand) == 2 {
			return fmt.Sprintf("%s #$%02X%02X", name, operand[1], operand[0])
		}
		return fmt.Sprintf("%s #$%02X", name, operand[0])
	case AddrAbsolute:
		return fmt.Sprintf("%s $%02X%02X", name, operand[1], operand[0])
	case AddrAbsoluteLong:
		return fmt.Sprintf("%s $%02X%02X%02X", name, operand[2], operand[1], operand[0])
	case AddrDP:
		return fmt.Sprintf("%s $%02X", name, operand[0])
	case AddrDPIndirect:
		return fmt.Sprintf("%s ($%02X)", name, operand[0])
	case AddrDPIndirectLong:
		return fmt.Sprintf("%s [$%02X]", name, operand[0])
	case AddrAbsoluteIndexedX:
		return fmt.Sprintf("%s $%02X%02X,X", name, operand[1], operand[0])
	case AddrAbsoluteIndexedY:
		return fmt.Sprintf("%s $%02X%02X,Y", name, operand[1], operand[0])
	case AddrAbsoluteLongIndexedX:
		return fmt.Sprintf("%s $%02X%02X%02X,X", name, operand[2], operand[1], operand[0])
	case AddrDPIndexedX:
		return fmt.Sprintf("%s $%02X,X", name, operand[0])
	case AddrDPIndexedY:
		return fmt.Sprintf("%s $%02X,Y", name, operand[0])
	case AddrDPIndirectIndexedY:
		return fmt.Sprintf("%s ($%02X),Y", name, operand[0])
	case AddrDPIndirectLongIndexedY:
		return fmt.Sprintf("%s [$%02X],Y", name, operand[0])
	case AddrDPIndexedIndirectX:
		return fmt.Sprintf("%s ($%02X,X)", name, operand[0])
	case AddrStackRelative:
		return fmt.Sprintf("%s $%02X,S", name, operand[0])
	case AddrStackRelativeIndirectIndexedY:
		return fmt.Sprintf("%s ($%02X,S),Y", name, operand[0])
	case AddrAbsoluteIndirect:
		return fmt.Sprintf("%s ($%02X%02X)", name, operand[1], operand[0])
	case AddrAbsoluteIndirectLong:
		return fmt.Sprintf("%s [$%02X%02X]", name, operand[1], operand[0])
	case AddrAbsoluteIndexedIndirect:
		return fmt.Sprintf("%s ($%02X%02X,X)", name, operand[1], operand[0])
	case AddrRelative8, AddrRelativeLong16:
		return fmt.Sprintf("%s $%02X", name, operand[0])
	case AddrBlockMove:
		return fmt.Sprintf("%s $%02X,$%02X", name, operand[0], operand[1])
	default:
		return name
	}
}
