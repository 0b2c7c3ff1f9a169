// Package loader places a compiled B91 program into CPU/bus state: code
// and data words into memory, FP/SP into the register file, and any
// IVT-convention symbols into the interrupt vector table (spec §4.8).
package loader

import (
	"strconv"
	"strings"

	"github.com/ttk91/ttk91/internal/bus"
	"github.com/ttk91/ttk91/internal/compiler/b91"
	"github.com/ttk91/ttk91/internal/cpu"
)

// ivtSymbolPrefix is the symbol-table naming convention patched into the
// IVT: a symbol named "IVT<n>" sets IVT[n] to that symbol's address.
const ivtSymbolPrefix = "IVT"

// Load zeros memory, writes prog's code and data segments, seeds FP/SP,
// and patches any IVT-convention symbols (spec §4.8 "Effects"). Any error
// leaves memory zeroed.
func Load(b *bus.Bus, c *cpu.CPU, prog *b91.Program) error {
	b.Reset()

	for i, w := range prog.Code {
		if err := b.Write(prog.CodeStart+int32(i), w); err != nil {
			b.Reset()
			return err
		}
	}

	for i, w := range prog.Data {
		if err := b.Write(prog.DataStart+int32(i), w); err != nil {
			b.Reset()
			return err
		}
	}

	c.Reg[cpu.FP] = prog.FPInit
	c.Reg[cpu.SP] = prog.SPInit
	c.PC = prog.FPInit

	for name, addr := range prog.Symbols {
		if idx, ok := ivtIndex(name); ok {
			c.IVT[idx] = addr
		}
	}

	return nil
}

func ivtIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, ivtSymbolPrefix) {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimPrefix(name, ivtSymbolPrefix))
	if err != nil || n < 0 || n > 15 {
		return 0, false
	}

	return n, true
}

// LoadText compiles-equivalent: parses B91 text and loads it in one step.
func LoadText(b *bus.Bus, c *cpu.CPU, text string) error {
	var prog b91.Program
	if err := prog.UnmarshalText([]byte(text)); err != nil {
		return err
	}

	return Load(b, c, &prog)
}

// LoadWithDefaults loads base (typically the default OS image) first, then
// overlays prog's code and data on top without re-zeroing memory, so prog's
// FP/SP/PC and any IVT entries it defines take final effect while base's
// IVT entries remain installed wherever prog leaves them unset (spec §6
// "Default operating-system image ... loaded before the user program").
func LoadWithDefaults(b *bus.Bus, c *cpu.CPU, base, prog *b91.Program) error {
	if err := Load(b, c, base); err != nil {
		return err
	}

	for i, w := range prog.Code {
		if err := b.Write(prog.CodeStart+int32(i), w); err != nil {
			return err
		}
	}

	for i, w := range prog.Data {
		if err := b.Write(prog.DataStart+int32(i), w); err != nil {
			return err
		}
	}

	c.Reg[cpu.FP] = prog.FPInit
	c.Reg[cpu.SP] = prog.SPInit
	c.PC = prog.FPInit

	for name, addr := range prog.Symbols {
		if idx, ok := ivtIndex(name); ok {
			c.IVT[idx] = addr
		}
	}

	return nil
}
