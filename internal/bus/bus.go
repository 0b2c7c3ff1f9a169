// Package bus implements the TTK-91 memory and port address spaces and the
// devices reachable through them: RAM, the memory-mapped framebuffer, the
// legacy CRT/KBD character devices, the real-time clock, and the
// programmable interrupt controller.
package bus

import (
	"errors"
	"fmt"

	"github.com/ttk91/ttk91/internal/cpu"
)

// Memory address ranges (spec §4.5).
const (
	ramStart = 0x0000
	ramEnd   = 0x1FFF // inclusive

	fbStart = 0x2000
	fbEnd   = 0x6B00 // inclusive
)

// Port numbers (spec §4.5).
const (
	PortCRT       = 0
	PortKBD       = 1
	PortRTC       = 2
	PortPICCmd    = 0x20
	PortPICMask   = 0x21
	PortPICTimer  = 0x22
)

// ErrNoDevice is returned for any memory address or port not decoded to a
// device (spec §4.5: "Any other ... fails").
var ErrNoDevice = errors.New("bus: no device at address")

// ErrDeviceFault is returned by a device that refuses an access it cannot
// service (e.g. reading a write-only device).
var ErrDeviceFault = errors.New("bus: device fault")

// Bus decodes the memory and port address spaces and routes accesses to
// the devices it exclusively owns (spec §3 "Ownership").
type Bus struct {
	RAM *RAM
	FB  *Framebuffer
	CRT *CRT
	KBD *KBD
	RTC *RTC
	PIC *PIC
}

// New creates a Bus with all devices wired to their fixed addresses/ports.
func New() *Bus {
	return &Bus{
		RAM: NewRAM(ramEnd - ramStart + 1),
		FB:  NewFramebuffer(),
		CRT: NewCRT(),
		KBD: NewKBD(),
		RTC: NewRTC(),
		PIC: NewPIC(),
	}
}

var _ cpu.Bus = (*Bus)(nil)

func (b *Bus) Read(addr cpu.Word) (cpu.Word, error) {
	switch {
	case addr >= ramStart && addr <= ramEnd:
		return b.RAM.Read(addr - ramStart)
	case addr >= fbStart && addr <= fbEnd:
		return b.FB.Read(addr - fbStart)
	default:
		return 0, fmt.Errorf("%w: memory %#x", ErrNoDevice, addr)
	}
}

func (b *Bus) Write(addr cpu.Word, v cpu.Word) error {
	switch {
	case addr >= ramStart && addr <= ramEnd:
		return b.RAM.Write(addr-ramStart, v)
	case addr >= fbStart && addr <= fbEnd:
		return b.FB.Write(addr-fbStart, v)
	default:
		return fmt.Errorf("%w: memory %#x", ErrNoDevice, addr)
	}
}

func (b *Bus) In(port cpu.Word) (cpu.Word, error) {
	switch port {
	case PortCRT:
		return 0, fmt.Errorf("%w: CRT is write-only", ErrDeviceFault)
	case PortKBD:
		return b.KBD.Read()
	case PortRTC:
		return b.RTC.Read(), nil
	case PortPICCmd:
		return b.PIC.ReadFlag(), nil
	case PortPICMask:
		return b.PIC.ReadMask(), nil
	case PortPICTimer:
		return b.PIC.ReadTimer(), nil
	default:
		return 0, fmt.Errorf("%w: port %#x", ErrNoDevice, port)
	}
}

func (b *Bus) Out(port cpu.Word, v cpu.Word) error {
	switch port {
	case PortCRT:
		b.CRT.Write(v)
		return nil
	case PortKBD:
		return fmt.Errorf("%w: KBD is read-only", ErrDeviceFault)
	case PortRTC:
		return fmt.Errorf("%w: RTC is read-only", ErrDeviceFault)
	case PortPICCmd:
		b.PIC.WriteCommand(v)
		return nil
	case PortPICMask:
		b.PIC.WriteMask(v)
		return nil
	case PortPICTimer:
		b.PIC.WriteTimer(v)
		return nil
	default:
		return fmt.Errorf("%w: port %#x", ErrNoDevice, port)
	}
}

// Firing reports whether the PIC currently has a pending interrupt.
func (b *Bus) Firing() bool { return b.PIC.IsFiring() }

// Reset zeros RAM and returns the framebuffer and PIC to their power-on
// state, without reallocating memory (spec §4.7 "Reset zeros the array").
// The CRT, KBD and RTC are left as they are.
func (b *Bus) Reset() {
	b.RAM.Reset()
	b.FB.Reset()
	b.PIC.Reset()
}
