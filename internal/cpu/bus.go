package cpu

// Bus is the interface the CPU uses to reach memory and ports. It is
// implemented by internal/bus.Bus; the cpu package only depends on this
// narrow interface so it never imports the device implementations.
type Bus interface {
	// Read and Write access the memory address space (RAM, framebuffer).
	Read(addr Word) (Word, error)
	Write(addr Word, v Word) error

	// In and Out access the port address space (CRT, KBD, RTC, PIC).
	In(port Word) (Word, error)
	Out(port Word, v Word) error

	// Firing reports whether the PIC currently has an interrupt pending.
	Firing() bool
}
