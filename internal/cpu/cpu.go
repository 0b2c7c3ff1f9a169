package cpu

import (
	"fmt"

	"github.com/ttk91/ttk91/internal/log"
)

// CPU is a TTK-91 machine: registers, MMU, and a Bus to the outside world.
// It owns its register file and IVT (spec §3); it never owns devices.
type CPU struct {
	PC Word
	IR Instruction
	TR Word
	SR StatusRegister

	Reg RegisterFile
	MMU

	IVT IVT

	halted bool
	burned bool

	cur decoded

	bus Bus
	log *log.Logger
}

// New creates a CPU wired to bus. Register and control state starts zeroed;
// the loader (internal/loader) is responsible for seeding SP/FP and memory.
func New(bus Bus, opts ...Option) *CPU {
	c := &CPU{
		MMU: NewMMU(),
		bus: bus,
		log: log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Option configures a CPU at construction time.
type Option func(*CPU)

// WithLogger overrides the CPU's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *CPU) { c.log = logger }
}

func (c *CPU) String() string {
	return fmt.Sprintf("PC: %08x IR: %s\nSR: %s TR: %08x\n%s\n",
		c.PC, c.IR, c.SR, c.TR, c.Reg)
}

// Halted reports whether the CPU has stopped executing, via HLT, HCF, or an
// unrecoverable re-entrant trap.
func (c *CPU) Halted() bool { return c.halted }

// Burned reports whether the CPU reached HCF (or a doubly-faulted trap) and
// will never resume, as distinct from a clean HLT.
func (c *CPU) Burned() bool { return c.burned }

// push writes w at the next stack slot and advances SP (spec §4.3, §4.2 CALL/PUSHR).
func (c *CPU) push(w Word) error {
	c.Reg[SP]++
	return c.bus.Write(c.Reg[SP], w)
}

// pop reads the current top-of-stack word and retreats SP.
func (c *CPU) pop() (Word, error) {
	v, err := c.bus.Read(c.Reg[SP])
	if err != nil {
		return 0, err
	}

	c.Reg[SP]--

	return v, nil
}
