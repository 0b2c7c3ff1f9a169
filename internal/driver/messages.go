package driver

import (
	"github.com/ttk91/ttk91/internal/compiler/b91"
	"github.com/ttk91/ttk91/internal/cpu"
)

// Control is a host-to-driver command (spec §5/§6). Exactly one field is
// meaningful per Kind; the rest are zero.
type Control struct {
	Kind ControlKind

	PlayPause bool          // PlaybackPlayPause
	Program   *b91.Program  // LoadB91
	Rate      float32       // SetRate, Hz
	Turbo     bool          // SetTurbo
	MemRange  [2]cpu.Word   // GetMem: [start, end)
	Address   cpu.Word      // InsertBreakpoint, RemoveBreakpoint
	Enabled   bool          // EnableBreakpoints
}

// ControlKind discriminates a Control message.
type ControlKind int

const (
	PlaybackStart ControlKind = iota
	PlaybackStop
	PlaybackPlayPause
	PlaybackTick
	LoadB91
	Reset
	ClearMem
	SetRate
	SetTurbo
	GetState
	GetMem
	EnableBreakpoints
	ClearBreakpoints
	InsertBreakpoint
	RemoveBreakpoint
)

// Reply is a driver-to-host snapshot (spec §6). Exactly one field is
// meaningful per Kind.
type Reply struct {
	Kind ReplyKind

	State   State
	Regs    Regs
	Mem     []cpu.Word
	Offsets SegmentOffsets
}

// ReplyKind discriminates a Reply message.
type ReplyKind int

const (
	StateReply ReplyKind = iota
	RegsReply
	MemReply
	SegmentOffsetsReply
)

// State mirrors spec §6's State reply.
type State struct {
	Playing      bool
	Running      bool
	Halted       bool
	SpeedPercent float64
}

// Regs mirrors spec §6's Regs reply.
type Regs struct {
	PC, IR, TR, SR   cpu.Word
	GPR              [8]cpu.Word
	Base, Limit      cpu.Word
	MAR, MBR         cpu.Word
}

// SegmentOffsets mirrors spec §6's SegmentOffsets reply.
type SegmentOffsets struct {
	CodeStart, DataStart, StackStart cpu.Word
}
