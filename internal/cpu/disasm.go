package cpu

import (
	"fmt"
	"strconv"
)

// DefaultMode is the addressing mode an operand defaults to in the absence
// of an explicit '=' or '@' prefix (spec §4.1: STORE, JUMP and all
// conditional jumps, and CALL subtract one from the usual direct default).
// The compiler's encoder and this disassembler share this rule so that
// compile → disassemble → compile round-trips (spec §8).
func DefaultMode(op Opcode) Mode {
	if NoIndirect(op) {
		return ModeImmediate
	}
	return ModeDirect
}

func defaultMode(op Opcode) Mode { return DefaultMode(op) }

// prefixForOffset renders the '=' / '@' / '' prefix that shifts the default
// mode by off ∈ {-1, 0, +1}; ok is false for an offset outside that range.
func prefixForOffset(off int) (prefix string, ok bool) {
	switch off {
	case -1:
		return "=", true
	case 0:
		return "", true
	case 1:
		return "@", true
	default:
		return "", false
	}
}

// Disassemble decodes a single instruction word into TTK-91 symbolic text,
// using the same operand grammar (§4.1) the compiler accepts, so that
// compile → disassemble → compile reproduces the original word (spec §8).
func Disassemble(w Word) string {
	ir := Instruction(w)
	op := ir.Opcode()
	mode := ir.Mode()
	ri := ir.Ri()
	addr := ir.Addr()

	mnemonic, known := mnemonics[op]
	if !known {
		return fmt.Sprintf("DATA %d", w)
	}

	if JumpOnly(op) {
		return fmt.Sprintf("%s %s", mnemonic, operandText(op, mode, ri, addr))
	}

	return fmt.Sprintf("%s %s, %s", mnemonic, ir.Rj(), operandText(op, mode, ri, addr))
}

func operandText(op Opcode, mode Mode, ri Register, addr int32) string {
	def := defaultMode(op)

	if ri != R0 && addr == 0 {
		if prefix, ok := prefixForOffset(int(mode) - int(def) + 1); ok {
			return prefix + ri.String()
		}
	}

	prefix, ok := prefixForOffset(int(mode) - int(def))
	if !ok {
		// Outside the grammar our own compiler emits; render explicitly so
		// the text is still informative even if it cannot be recompiled.
		return fmt.Sprintf("/*mode=%d*/%d(%s)", mode, addr, ri)
	}

	text := prefix + strconv.Itoa(int(addr))
	if ri != R0 {
		text += "(" + ri.String() + ")"
	}

	return text
}
