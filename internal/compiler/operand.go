package compiler

import (
	"strconv"
	"strings"

	"github.com/ttk91/ttk91/internal/cpu"
)

// operand is a parsed second-operand token: "[prefix] atom ['(' register ')']"
// (spec §4.1).
type operand struct {
	offset  int  // -1, 0, +1 relative to the instruction's default mode
	isReg   bool // atom itself was a bare register name
	reg     cpu.Register
	atom    string // non-register atom text, sign included
	indexed bool
	index   cpu.Register
}

// parseOperand splits a token into its prefix, atom, and optional index
// register, without resolving the atom to a value yet.
func parseOperand(tok string, line int) (operand, error) {
	var op operand

	neg := false
	if strings.HasPrefix(tok, "-") {
		neg = true
		tok = tok[1:]
	}

	switch {
	case strings.HasPrefix(tok, "="):
		op.offset = -1
		tok = tok[1:]
	case strings.HasPrefix(tok, "@"):
		op.offset = 1
		tok = tok[1:]
	default:
		op.offset = 0
	}

	if idx := strings.IndexByte(tok, '('); idx >= 0 {
		if !strings.HasSuffix(tok, ")") {
			return op, errf(line, "malformed index suffix in operand %q", tok)
		}

		reg, ok := parseRegister(tok[idx+1 : len(tok)-1])
		if !ok {
			return op, errf(line, "unknown index register in operand %q", tok)
		}

		op.indexed = true
		op.index = reg
		tok = tok[:idx]
	}

	if reg, ok := parseRegister(tok); ok && !op.indexed {
		if neg {
			return op, errf(line, "register operand %q cannot be negated", tok)
		}

		op.isReg = true
		op.reg = reg

		return op, nil
	}

	if neg {
		tok = "-" + tok
	}

	op.atom = tok

	return op, nil
}

// parseNumericLiteral parses an optionally-signed, optionally base-prefixed
// (0b|0o|0x) integer literal (spec §4.1): parsed as unsigned then
// reinterpreted as signed 32 bits.
func parseNumericLiteral(tok string) (int32, bool) {
	neg := false
	if strings.HasPrefix(tok, "-") {
		neg = true
		tok = tok[1:]
	}

	base := 10

	switch {
	case strings.HasPrefix(tok, "0b"):
		base, tok = 2, tok[2:]
	case strings.HasPrefix(tok, "0o"):
		base, tok = 8, tok[2:]
	case strings.HasPrefix(tok, "0x"):
		base, tok = 16, tok[2:]
	}

	if tok == "" {
		return 0, false
	}

	u, err := strconv.ParseUint(tok, base, 32)
	if err != nil {
		return 0, false
	}

	v := int32(uint32(u))
	if neg {
		v = -v
	}

	return v, true
}

// fits16 reports whether v fits in a signed or unsigned 16-bit field (spec
// §4.1: "Out-of-range addr ... is an error").
func fits16(v int32) bool {
	return (v >= -1<<15 && v <= 1<<15-1) || (v >= 0 && v <= 1<<16-1)
}
