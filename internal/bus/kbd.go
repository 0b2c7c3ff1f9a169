package bus

import "github.com/ttk91/ttk91/internal/cpu"

// KBD is the legacy character-input device at port 1 (spec §4.7, §5). A
// read blocks: the device pings an outbound "input requested" channel and
// then waits on an inbound value channel. The driver's stop handling sends
// a dedicated "unjam" value on the inbound channel to free a waiting read
// without a value ever having arrived from the host (spec §5
// "Cancellation").
type KBD struct {
	request chan struct{}
	value   chan cpu.Word
}

// NewKBD creates a KBD whose request channel holds at most one pending
// signal and whose value channel is unbuffered, matching the
// single-producer/single-consumer channel pair pattern used throughout the
// driver (spec §5).
func NewKBD() *KBD {
	return &KBD{
		request: make(chan struct{}, 1),
		value:   make(chan cpu.Word),
	}
}

// Read blocks the calling goroutine (the driver's tick loop) until a value
// is supplied via Supply or Unjam.
func (k *KBD) Read() (cpu.Word, error) {
	select {
	case k.request <- struct{}{}:
	default:
	}

	return <-k.value, nil
}

// Requests exposes the outbound "input requested" signal.
func (k *KBD) Requests() <-chan struct{} { return k.request }

// Supply delivers a host-provided value to a waiting Read.
func (k *KBD) Supply(v cpu.Word) { k.value <- v }

// Unjam frees a waiting Read with a sentinel value; callers must treat the
// read as cancelled, not as real input (spec §5).
func (k *KBD) Unjam(sentinel cpu.Word) { k.value <- sentinel }
