package compiler

import (
	"sort"
	"strconv"
)

// checkDuplicateLabels implements pass 2 (spec §4.1): every label name must
// appear at most once across all statements. All offending names are
// reported together.
func checkDuplicateLabels(stmts []statement) error {
	lines := map[string][]int{}

	for _, s := range stmts {
		if s.label == "" {
			continue
		}
		lines[s.label] = append(lines[s.label], s.line)
	}

	var dups []string
	for name, ls := range lines {
		if len(ls) > 1 {
			dups = append(dups, name)
		}
	}

	if len(dups) == 0 {
		return nil
	}

	sort.Strings(dups)

	msg := "duplicate labels:"
	for _, name := range dups {
		msg += " " + name + lineSet(lines[name])
	}

	return errf(0, "%s", msg)
}

func lineSet(ls []int) string {
	sort.Ints(ls)

	out := "("
	for i, l := range ls {
		if i > 0 {
			out += ","
		}
		out += strconv.Itoa(l)
	}
	return out + ")"
}

// processDirectives implements pass 3: only ORG is recognized, at most
// once, n ≥ 0, and it may not carry a label.
func processDirectives(stmts []statement) (int32, error) {
	var (
		org  int32
		seen bool
	)

	for _, s := range stmts {
		if s.kind != kindDirective {
			continue
		}

		if s.label != "" {
			return 0, errf(s.line, "ORG may not carry a label")
		}
		if seen {
			return 0, errf(s.line, "ORG may appear at most once")
		}
		if len(s.operands) != 1 {
			return 0, errf(s.line, "ORG requires exactly one operand")
		}

		n, ok := parseNumericLiteral(s.operands[0])
		if !ok || n < 0 {
			return 0, errf(s.line, "ORG operand must be a non-negative integer")
		}

		org = n
		seen = true
	}

	return org, nil
}

// processConstants implements pass 4 (EQU): a labeled 16-bit signed value.
func processConstants(stmts []statement) (map[string]int32, error) {
	consts := map[string]int32{}

	for _, s := range stmts {
		if s.kind != kindConstant {
			continue
		}

		if s.label == "" {
			return nil, errf(s.line, "EQU requires a label")
		}
		if len(s.operands) != 1 {
			return nil, errf(s.line, "EQU requires exactly one operand")
		}

		v, err := resolveConstantAtom(s.operands[0], consts, s.line)
		if err != nil {
			return nil, err
		}

		if !fits16Signed(v) {
			return nil, errf(s.line, "EQU value %d out of 16-bit signed range", v)
		}

		consts[s.label] = v
	}

	return consts, nil
}

func fits16Signed(v int32) bool {
	return v >= -1<<15 && v <= 1<<15-1
}

// resolveConstantAtom resolves an EQU value: a numeric literal, a built-in
// symbol, or a previously defined constant.
func resolveConstantAtom(tok string, consts map[string]int32, line int) (int32, error) {
	if v, ok := parseNumericLiteral(tok); ok {
		return v, nil
	}
	if v, ok := builtins[tok]; ok {
		return v, nil
	}
	if v, ok := consts[tok]; ok {
		return v, nil
	}

	return 0, errf(line, "unresolved constant atom %q", tok)
}

// processData implements pass 5 (DC/DS), including the documented
// off-by-one label binding (spec §4.1, §9): a labeled data statement binds
// its label to ORG + (data-segment length) measured AFTER this statement's
// words are appended, not before.
func processData(stmts []statement, org int32, consts map[string]int32) ([]int32, map[string]int32, error) {
	var data []int32

	labels := map[string]int32{}

	for _, s := range stmts {
		if s.kind != kindData {
			continue
		}

		switch s.mnemonic {
		case "DC":
			if len(s.operands) != 1 {
				return nil, nil, errf(s.line, "DC requires exactly one operand")
			}

			v, err := resolveConstantAtom(s.operands[0], consts, s.line)
			if err != nil {
				return nil, nil, err
			}

			data = append(data, v)

		case "DS":
			if len(s.operands) != 1 {
				return nil, nil, errf(s.line, "DS requires exactly one operand")
			}

			n, ok := parseNumericLiteral(s.operands[0])
			if !ok || n <= 0 {
				return nil, nil, errf(s.line, "DS count must be a positive integer")
			}

			for i := int32(0); i < n; i++ {
				data = append(data, 0)
			}
		}

		if s.label != "" {
			labels[s.label] = org + int32(len(data))
		}
	}

	return data, labels, nil
}

// preassignCodeLabels implements pass 6: each labeled code statement is
// bound to org plus its 0-based position among the code statements, before
// any code is encoded, so forward references resolve; see DESIGN.md.
func preassignCodeLabels(stmts []statement, org int32) map[string]int32 {
	labels := map[string]int32{}

	idx := 0
	for _, s := range stmts {
		if s.kind != kindCode {
			continue
		}

		if s.label != "" {
			labels[s.label] = org + int32(idx)
		}

		idx++
	}

	return labels
}
