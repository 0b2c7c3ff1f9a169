package compiler

import (
	"strings"

	"github.com/ttk91/ttk91/internal/cpu"
)

// directives are the recognized directive keywords (spec §4.1).
var directives = map[string]bool{
	"ORG": true, "EQU": true, "DC": true, "DS": true,
}

// builtins are the built-in symbols usable only as operand atoms (spec
// §4.1). Values are fixed by the spec, not configurable.
var builtins = map[string]int32{
	"SHRT_MAX": 32767,
	"SHRT_MIN": -32768,
	"INT_MAX":  1<<31 - 1,
	"INT_MIN":  -1 << 31,
	"CRT":      0,
	"KBD":      1,
	"RTC":      2,
	"HALT":     11,
	"READ":     12,
	"WRITE":    13,
	"TIME":     14,
	"DATE":     15,
}

// registerNames maps the case-folded register spelling to its index,
// including the SP/FP aliases for R6/R7 (spec §3).
var registerNames = map[string]cpu.Register{
	"R0": cpu.R0, "R1": cpu.R1, "R2": cpu.R2, "R3": cpu.R3,
	"R4": cpu.R4, "R5": cpu.R5, "R6": cpu.SP, "SP": cpu.SP,
	"R7": cpu.FP, "FP": cpu.FP,
}

// parseRegister resolves a token as a register name, case-insensitively.
func parseRegister(tok string) (cpu.Register, bool) {
	r, ok := registerNames[strings.ToUpper(tok)]
	return r, ok
}

// isKeyword reports whether tok (any case) names a directive, mnemonic, or
// register — used to decide whether a line's leading token is a label
// (spec §4.1 pass 1: "A leading token is a label iff it is not itself a
// recognized directive/mnemonic/register").
func isKeyword(tok string) bool {
	upper := strings.ToUpper(tok)

	if directives[upper] {
		return true
	}
	if _, ok := cpu.Mnemonic(upper); ok {
		return true
	}
	if _, ok := registerNames[upper]; ok {
		return true
	}

	return false
}
