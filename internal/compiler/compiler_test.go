package compiler_test

import (
	"strings"
	"testing"

	"github.com/ttk91/ttk91/internal/compiler"
	"github.com/ttk91/ttk91/internal/cpu"
)

// Arithmetic scenario, spec §8.1.
func TestCompileArithmeticScenario(t *testing.T) {
	src := `
LOAD   R1, =50
ADD    R1, =5
STORE  R1, result
SVC    SP, =HALT
result DC 0
`

	c := compiler.New()

	prog, err := c.Compile(src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if len(prog.Code) != 4 {
		t.Fatalf("code len = %d, want 4", len(prog.Code))
	}

	if len(prog.Data) != 1 || prog.Data[0] != 0 {
		t.Fatalf("data = %v, want [0]", prog.Data)
	}

	resultAddr, ok := prog.Symbols["result"]
	if !ok {
		t.Fatalf("missing symbol result")
	}

	store := cpu.Instruction(prog.Code[2])
	if store.Opcode() != cpu.STORE {
		t.Fatalf("code[2] opcode = %v, want STORE", store.Opcode())
	}

	if int32(store.Addr()) != resultAddr {
		t.Errorf("STORE addr = %d, want symbol result = %d", store.Addr(), resultAddr)
	}
}

func TestCompileDuplicateLabel(t *testing.T) {
	src := "a LOAD R1, =1\na LOAD R2, =2\n"

	_, err := compiler.New().Compile(src)
	if err == nil {
		t.Fatal("expected duplicate label error")
	}

	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error = %v, want mention of duplicate labels", err)
	}
}

func TestCompileUnresolvedSymbol(t *testing.T) {
	src := "LOAD R1, nowhere\nSVC SP, =HALT\n"

	_, err := compiler.New().Compile(src)
	if err == nil {
		t.Fatal("expected unresolved symbol error")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := `
	  LOAD  R1, =55
	  ADD   R2, R3
	  STORE R1, dest
	  JUMP  done
done  SVC   SP, =HALT
dest  DC    0
`

	prog, err := compiler.New().Compile(src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	var lines []string
	for i, w := range prog.Code {
		text := cpu.Disassemble(w)
		if text == "" {
			t.Errorf("code[%d] disassembled to empty text", i)
		}
		lines = append(lines, text)
	}

	again, err := compiler.New().Compile(strings.Join(lines, "\n"))
	if err != nil {
		t.Fatalf("recompile %q: %v", lines, err)
	}
	if len(again.Code) != len(prog.Code) {
		t.Fatalf("recompiled code len = %d, want %d", len(again.Code), len(prog.Code))
	}
	for i := range prog.Code {
		if again.Code[i] != prog.Code[i] {
			t.Errorf("code[%d]: recompiled %08x, want %08x", i, uint32(again.Code[i]), uint32(prog.Code[i]))
		}
	}
}
