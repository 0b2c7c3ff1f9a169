package bus

import (
	"time"

	"github.com/ttk91/ttk91/internal/cpu"
)

// RTC is the real-time-clock device at port 2 (spec §4.7): read-only,
// returning local Unix time as 32-bit seconds since epoch plus the local
// UTC offset. now is injectable so tests are deterministic.
type RTC struct {
	now func() time.Time
}

// NewRTC creates an RTC backed by the host wall clock.
func NewRTC() *RTC {
	return &RTC{now: time.Now}
}

// Read returns the current local time as Unix seconds plus the zone's UTC
// offset in seconds (spec §4.7).
func (r *RTC) Read() cpu.Word {
	t := r.now()
	_, offset := t.Zone()

	return cpu.Word(t.Unix() + int64(offset))
}
