package compiler

import (
	"strings"

	"github.com/ttk91/ttk91/internal/cpu"
)

type kind int

const (
	kindDirective kind = iota
	kindConstant
	kindData
	kindCode
)

// statement is a line-level record produced by the lexer and consumed by
// the four resolution passes (spec §3 "Compiler statement").
type statement struct {
	kind     kind
	label    string
	mnemonic string // upper-cased
	operands []string
	line     int
}

// lex splits source into statements (spec §4.1 pass 1). Comments start
// with ';'; commas and whitespace are token separators.
func lex(source string) ([]statement, error) {
	var stmts []statement

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1

		text := raw
		if idx := strings.IndexByte(text, ';'); idx >= 0 {
			text = text[:idx]
		}

		tokens := tokenize(text)
		if len(tokens) == 0 {
			continue
		}

		var label string

		if !isKeyword(tokens[0]) {
			label = strings.TrimSuffix(tokens[0], ":")
			tokens = tokens[1:]
		}

		if len(tokens) == 0 {
			return nil, errf(lineNo, "label %q with no directive or instruction", label)
		}

		mnemonic := strings.ToUpper(tokens[0])
		operands := tokens[1:]

		var k kind

		switch {
		case mnemonic == "ORG":
			k = kindDirective
		case mnemonic == "EQU":
			k = kindConstant
		case mnemonic == "DC" || mnemonic == "DS":
			k = kindData
		default:
			if _, ok := cpu.Mnemonic(mnemonic); !ok {
				return nil, errf(lineNo, "unrecognized mnemonic or directive %q", tokens[0])
			}
			k = kindCode
		}

		stmts = append(stmts, statement{
			kind:     k,
			label:    label,
			mnemonic: mnemonic,
			operands: operands,
			line:     lineNo,
		})
	}

	return stmts, nil
}

// tokenize splits a line on commas and whitespace, preserving parenthesized
// index suffixes as part of a single token (spec §4.1).
func tokenize(line string) []string {
	replaced := strings.ReplaceAll(line, ",", " ")
	return strings.Fields(replaced)
}
