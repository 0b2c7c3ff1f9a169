package cpu

import (
	"context"
	"errors"
)

// Step performs one full tick of the fetch/decode/execute cycle (spec §4.3):
// fetch, decode, resolve the second operand into TR, execute, then poll the
// PIC for a pending timer IRQ. It is the unit of atomicity the driver calls
// once per scheduled tick.
func (c *CPU) Step(ctx context.Context) error {
	if c.halted || c.burned {
		return nil
	}

	if err := c.fetch(); err != nil {
		return c.serviceTrap(errMemFault)
	}

	c.decode()

	if err := c.resolveOperand(); err != nil {
		return c.serviceTrap(err)
	}

	if err := c.execute(ctx); err != nil {
		return c.serviceTrap(err)
	}

	return c.serviceIRQ()
}

// fetch loads IR from PC and advances PC.
func (c *CPU) fetch() error {
	w, err := c.bus.Read(c.PC)
	if err != nil {
		return err
	}

	c.IR = Instruction(w)
	c.PC++

	return nil
}

// decoded holds the fields extracted from IR for the current instruction.
type decoded struct {
	op   Opcode
	rj   Register
	mode Mode
	ri   Register
	addr int32
}

func (c *CPU) decode() {
	c.cur = decoded{
		op:   c.IR.Opcode(),
		rj:   c.IR.Rj(),
		mode: c.IR.Mode(),
		ri:   c.IR.Ri(),
		addr: c.IR.Addr(),
	}
}

// resolveOperand computes TR per spec §4.2: eff = addr + GPR[Ri] (Ri==0
// means no index), then TR is eff, mem[eff], or mem[mem[eff]] depending on
// mode. Every instruction resolves an operand this way, uniformly.
func (c *CPU) resolveOperand() error {
	d := c.cur

	eff := d.addr
	if d.ri != R0 {
		idx := c.Reg[d.ri]

		sum := int64(eff) + int64(idx)
		if sum > int64(maxWord) || sum < int64(minWord) {
			return errOverflow
		}

		eff = Word(sum)
	}

	switch d.mode {
	case ModeImmediate:
		c.TR = eff
	case ModeDirect:
		real, err := c.Translate(eff)
		if err != nil {
			return errMemFault
		}

		v, err := c.bus.Read(real)
		if err != nil {
			return errMemFault
		}

		c.TR = v
	case ModeIndirect:
		real, err := c.Translate(eff)
		if err != nil {
			return errMemFault
		}

		ptr, err := c.bus.Read(real)
		if err != nil {
			return errMemFault
		}

		real2, err := c.Translate(ptr)
		if err != nil {
			return errMemFault
		}

		v, err := c.bus.Read(real2)
		if err != nil {
			return errMemFault
		}

		c.TR = v
	default:
		return errUnknownOp
	}

	return nil
}

const (
	maxWord = Word(1<<31 - 1)
	minWord = Word(-1 << 31)
)

func (c *CPU) execute(ctx context.Context) error {
	fn, ok := operations[c.cur.op]
	if !ok {
		return errUnknownOp
	}

	return fn(ctx, c)
}

var errHalt = errors.New("cpu: halt")
