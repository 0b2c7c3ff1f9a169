package cpu

import "errors"

// ErrMemFault is returned by the Bus, or raised internally, whenever an
// access violates the MMU bounds check or falls outside any mapped region.
var ErrMemFault = errors.New("cpu: memory fault")

// MMU holds the base/limit translation registers plus the scratch
// memory-address/data registers used while an access is in flight. The
// translation is decorative (spec §4.4, Non-goals): by default BASE=0 and
// LIMIT is maximal, so translation is identity up to the size of physical
// memory.
type MMU struct {
	BASE  Word
	LIMIT Word
	MAR   Word
	MBR   Word
}

// Translate maps a virtual address to a real one, enforcing virt < LIMIT.
// The Bus is responsible for the further check against physical memory
// size; Translate only implements the MMU's own bound.
func (m *MMU) Translate(virt Word) (Word, error) {
	if virt < 0 || virt >= m.LIMIT {
		return 0, ErrMemFault
	}

	real := virt + m.BASE
	if real < 0 {
		return 0, ErrMemFault
	}

	return real, nil
}

// NewMMU returns an MMU configured for identity translation.
func NewMMU() MMU {
	return MMU{
		BASE:  0,
		LIMIT: 1<<31 - 1,
	}
}
