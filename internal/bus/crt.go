package bus

import "github.com/ttk91/ttk91/internal/cpu"

// CRT is the legacy character-output device at port 0 (spec §4.7). Writes
// forward a word to an outbound queue for the driver to relay to the host;
// reads are not supported.
type CRT struct {
	out chan cpu.Word
}

// NewCRT creates a CRT with a buffered outbound queue.
func NewCRT() *CRT {
	return &CRT{out: make(chan cpu.Word, 256)}
}

// Write enqueues a word for the host. It never blocks the CPU: if the
// queue is full, the oldest pending word is dropped to make room, since the
// bus has no other backpressure mechanism (spec §5: the driver may only
// block on its scheduler sleep or a KBD read).
func (c *CRT) Write(v cpu.Word) {
	select {
	case c.out <- v:
	default:
		select {
		case <-c.out:
		default:
		}
		c.out <- v
	}
}

// Out returns the outbound channel of words written to the CRT.
func (c *CRT) Out() <-chan cpu.Word { return c.out }
