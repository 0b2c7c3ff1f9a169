package compiler

import (
	"github.com/ttk91/ttk91/internal/cpu"
)

// symbolTables bundles the three namespaces an operand atom may resolve
// against, in spec §4.1's priority order (after numeric literals and
// built-ins): constants, then data labels, then code labels.
type symbolTables struct {
	consts     map[string]int32
	dataLabels map[string]int32
	codeLabels map[string]int32
}

func (st symbolTables) resolve(atom string) (int32, bool) {
	if v, ok := parseNumericLiteral(atom); ok {
		return v, true
	}
	if v, ok := builtins[atom]; ok {
		return v, true
	}
	if v, ok := st.consts[atom]; ok {
		return v, true
	}
	if v, ok := st.dataLabels[atom]; ok {
		return v, true
	}
	if v, ok := st.codeLabels[atom]; ok {
		return v, true
	}

	return 0, false
}

// encodeCode implements pass 7: resolve (opcode, Rj, mode, Ri, addr) for
// each code statement and emit a 32-bit word.
func encodeCode(stmts []statement, st symbolTables) ([]cpu.Word, error) {
	var words []cpu.Word

	for _, s := range stmts {
		if s.kind != kindCode {
			continue
		}

		op, _ := cpu.Mnemonic(s.mnemonic)

		// NOP, HLT and HCF may be written with no operands at all.
		if len(s.operands) == 0 && (op == cpu.NOP || op == cpu.HLT || op == cpu.HCF) {
			words = append(words, cpu.Word(cpu.Encode(op, cpu.R0, cpu.ModeImmediate, cpu.R0, 0)))
			continue
		}

		var (
			rj       cpu.Register
			operandTok string
		)

		if cpu.JumpOnly(op) {
			rj = cpu.R0

			if len(s.operands) != 1 {
				return nil, errf(s.line, "%s takes exactly one operand", s.mnemonic)
			}

			operandTok = s.operands[0]
		} else {
			if len(s.operands) != 2 {
				return nil, errf(s.line, "%s takes exactly two operands", s.mnemonic)
			}

			reg, ok := parseRegister(s.operands[0])
			if !ok {
				return nil, errf(s.line, "first operand of %s must be a register, got %q", s.mnemonic, s.operands[0])
			}

			rj = reg
			operandTok = s.operands[1]
		}

		parsed, err := parseOperand(operandTok, s.line)
		if err != nil {
			return nil, err
		}

		mode, ri, addr, err := resolveEncodedOperand(op, parsed, st, s.line)
		if err != nil {
			return nil, err
		}

		words = append(words, cpu.Word(cpu.Encode(op, rj, mode, ri, addr)))
	}

	return words, nil
}

// resolveEncodedOperand turns a parsed operand into the (mode, Ri, addr)
// triple an instruction word encodes, per spec §4.1's prefix/bare-register
// rules and cpu.DefaultMode's instruction-specific default.
func resolveEncodedOperand(op cpu.Opcode, parsed operand, st symbolTables, line int) (cpu.Mode, cpu.Register, int16, error) {
	def := int(cpu.DefaultMode(op))

	if parsed.isReg {
		mode := def + parsed.offset - 1
		if mode < 0 || mode > 2 {
			return 0, 0, 0, errf(line, "addressing mode out of range for bare register operand")
		}

		return cpu.Mode(mode), parsed.reg, 0, nil
	}

	mode := def + parsed.offset
	if mode < 0 || mode > 2 {
		return 0, 0, 0, errf(line, "addressing mode out of range")
	}

	if cpu.NoIndirect(op) && mode == int(cpu.ModeIndirect) {
		return 0, 0, 0, errf(line, "%v does not allow indirect addressing", op)
	}

	v, ok := st.resolve(parsed.atom)
	if !ok {
		return 0, 0, 0, errf(line, "unresolved symbol %q", parsed.atom)
	}

	if !fits16(v) {
		return 0, 0, 0, errf(line, "operand %q out of 16-bit range", parsed.atom)
	}

	ri := cpu.R0
	if parsed.indexed {
		ri = parsed.index
	}

	return cpu.Mode(mode), ri, int16(v), nil
}
