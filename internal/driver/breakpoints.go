package driver

import "github.com/ttk91/ttk91/internal/cpu"

// breakpoints is the driver's breakpoint set. Hits are evaluated against
// the PC of the next fetch, before that instruction executes (spec §8
// "Breakpoint correctness").
type breakpoints struct {
	enabled bool
	addrs   map[cpu.Word]bool
}

func newBreakpoints() *breakpoints {
	return &breakpoints{addrs: map[cpu.Word]bool{}}
}

func (b *breakpoints) insert(addr cpu.Word) { b.addrs[addr] = true }
func (b *breakpoints) remove(addr cpu.Word) { delete(b.addrs, addr) }
func (b *breakpoints) clear()               { b.addrs = map[cpu.Word]bool{} }

func (b *breakpoints) hit(pc cpu.Word) bool {
	return b.enabled && b.addrs[pc]
}
