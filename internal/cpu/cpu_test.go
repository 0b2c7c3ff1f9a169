package cpu_test

import (
	"context"
	"testing"

	"github.com/ttk91/ttk91/internal/cpu"
)

// fakeBus is a flat word-addressed memory with no ports, enough to drive
// the CPU's fetch/decode/execute cycle in isolation from internal/bus.
type fakeBus struct {
	mem [4096]cpu.Word
}

func (b *fakeBus) Read(addr cpu.Word) (cpu.Word, error) {
	if addr < 0 || int(addr) >= len(b.mem) {
		return 0, cpu.ErrMemFault
	}
	return b.mem[addr], nil
}

func (b *fakeBus) Write(addr cpu.Word, v cpu.Word) error {
	if addr < 0 || int(addr) >= len(b.mem) {
		return cpu.ErrMemFault
	}
	b.mem[addr] = v
	return nil
}

func (b *fakeBus) In(port cpu.Word) (cpu.Word, error)  { return 0, cpu.ErrMemFault }
func (b *fakeBus) Out(port cpu.Word, v cpu.Word) error { return cpu.ErrMemFault }
func (b *fakeBus) Firing() bool                        { return false }

func run(t *testing.T, c *cpu.CPU, maxSteps int) {
	t.Helper()

	for i := 0; i < maxSteps; i++ {
		if c.Halted() {
			return
		}
		if err := c.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	t.Fatalf("did not halt within %d steps", maxSteps)
}

// Arithmetic scenario (spec §8.1):
//
//	LOAD  R1, =50
//	ADD   R1, =5
//	STORE R1, result
//	SVC   SP, =HALT
//	result DC 0
func TestArithmeticScenario(t *testing.T) {
	bus := &fakeBus{}
	const (
		load   = 0
		add    = 1
		store  = 2
		svc    = 3
		result = 4
	)

	bus.mem[load] = cpu.Word(cpu.Encode(cpu.LOAD, cpu.R1, cpu.ModeImmediate, cpu.R0, 50))
	bus.mem[add] = cpu.Word(cpu.Encode(cpu.ADD, cpu.R1, cpu.ModeImmediate, cpu.R0, 5))
	bus.mem[store] = cpu.Word(cpu.Encode(cpu.STORE, cpu.R1, cpu.ModeImmediate, cpu.R0, result))
	bus.mem[svc] = cpu.Word(cpu.Encode(cpu.SVC, cpu.SP, cpu.ModeImmediate, cpu.R0, int16(cpu.SVCHalt)))
	// default OS: trap/IVT slot for HALT SVC (11) points at a HLT instruction.
	const osHalt = 100
	bus.mem[osHalt] = cpu.Word(cpu.Encode(cpu.HLT, cpu.R0, cpu.ModeImmediate, cpu.R0, 0))

	c := cpu.New(bus)
	c.IVT[cpu.SVCHalt] = osHalt
	c.PC = 0

	run(t, c, 10)

	if bus.mem[result] != 55 {
		t.Errorf("memory[result] = %d, want 55", bus.mem[result])
	}
}

// Division by zero (spec §8.2).
func TestDivisionByZero(t *testing.T) {
	bus := &fakeBus{}
	const (
		load1 = 0
		load2 = 1
		div   = 2
	)

	bus.mem[load1] = cpu.Word(cpu.Encode(cpu.LOAD, cpu.R1, cpu.ModeImmediate, cpu.R0, 5))
	bus.mem[load2] = cpu.Word(cpu.Encode(cpu.LOAD, cpu.R2, cpu.ModeImmediate, cpu.R0, 0))
	bus.mem[div] = cpu.Word(cpu.Encode(cpu.DIV, cpu.R1, cpu.ModeImmediate, cpu.R2, 0))

	const handler = 100
	bus.mem[handler] = cpu.Word(cpu.Encode(cpu.HCF, cpu.R0, cpu.ModeImmediate, cpu.R0, 0))

	c := cpu.New(bus)
	c.IVT[cpu.TrapZeroDiv] = handler
	c.PC = 0

	run(t, c, 10)

	if c.SR&cpu.SRZeroDiv == 0 {
		t.Errorf("SR.Z not set: %s", c.SR)
	}

	if !c.Burned() {
		t.Errorf("expected CPU burned after HCF")
	}
}

// Stack round-trip (spec §8.3).
func TestStackRoundTrip(t *testing.T) {
	bus := &fakeBus{}
	const (
		load = 0
		push = 1
		pop  = 2
		svc  = 3
	)

	bus.mem[load] = cpu.Word(cpu.Encode(cpu.LOAD, cpu.R1, cpu.ModeImmediate, cpu.R0, 100))
	bus.mem[push] = cpu.Word(cpu.Encode(cpu.PUSH, cpu.SP, cpu.ModeImmediate, cpu.R1, 0))
	bus.mem[pop] = cpu.Word(cpu.Encode(cpu.POP, cpu.SP, cpu.ModeImmediate, cpu.R2, 0))
	bus.mem[svc] = cpu.Word(cpu.Encode(cpu.SVC, cpu.SP, cpu.ModeImmediate, cpu.R0, int16(cpu.SVCHalt)))

	const osHalt = 100
	bus.mem[osHalt] = cpu.Word(cpu.Encode(cpu.HLT, cpu.R0, cpu.ModeImmediate, cpu.R0, 0))

	c := cpu.New(bus)
	c.IVT[cpu.SVCHalt] = osHalt
	c.PC = 0
	c.Reg[cpu.SP] = 2000

	spBefore := c.Reg[cpu.SP]

	run(t, c, 10)

	if c.Reg[cpu.R2] != 100 {
		t.Errorf("R2 = %d, want 100", c.Reg[cpu.R2])
	}

	if c.Reg[cpu.SP] != spBefore {
		t.Errorf("SP = %d, want %d (restored)", c.Reg[cpu.SP], spBefore)
	}
}

func TestDisassembleRoundTrip(t *testing.T) {
	words := []cpu.Word{
		cpu.Word(cpu.Encode(cpu.LOAD, cpu.R1, cpu.ModeImmediate, cpu.R0, 55)),
		cpu.Word(cpu.Encode(cpu.ADD, cpu.R2, cpu.ModeDirect, cpu.R3, 10)),
		cpu.Word(cpu.Encode(cpu.STORE, cpu.R1, cpu.ModeImmediate, cpu.R0, 200)),
		cpu.Word(cpu.Encode(cpu.JUMP, cpu.R0, cpu.ModeImmediate, cpu.R0, 7)),
	}

	var lines []string
	for _, w := range words {
		text := cpu.Disassemble(w)
		if text == "" {
			t.Errorf("Disassemble(%08x) produced empty text", uint32(w))
		}
		lines = append(lines, text)
	}

	prog, err := compiler.New().Compile(strings.Join(lines, "\n"))
	if err != nil {
		t.Fatalf("recompile %q: %v", lines, err)
	}
	if len(prog.Code) != len(words) {
		t.Fatalf("recompiled %d words, want %d", len(prog.Code), len(words))
	}
	for i, w := range words {
		if prog.Code[i] != w {
			t.Errorf("word %d: recompiled %08x, want %08x", i, uint32(prog.Code[i]), uint32(w))
		}
	}
}
