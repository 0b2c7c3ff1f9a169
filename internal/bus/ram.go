package bus

import (
	"fmt"

	"github.com/ttk91/ttk91/internal/cpu"
)

// RAM is a plain, bounds-checked word array (spec §4.7).
type RAM struct {
	cells []cpu.Word
}

// NewRAM allocates size words of RAM, zeroed.
func NewRAM(size int) *RAM {
	return &RAM{cells: make([]cpu.Word, size)}
}

func (r *RAM) Read(addr cpu.Word) (cpu.Word, error) {
	if addr < 0 || int(addr) >= len(r.cells) {
		return 0, fmt.Errorf("%w: ram %#x", ErrNoDevice, addr)
	}
	return r.cells[addr], nil
}

func (r *RAM) Write(addr cpu.Word, v cpu.Word) error {
	if addr < 0 || int(addr) >= len(r.cells) {
		return fmt.Errorf("%w: ram %#x", ErrNoDevice, addr)
	}
	r.cells[addr] = v
	return nil
}

// Reset zeros every cell.
func (r *RAM) Reset() {
	for i := range r.cells {
		r.cells[i] = 0
	}
}

// Len returns the number of addressable words.
func (r *RAM) Len() int { return len(r.cells) }
