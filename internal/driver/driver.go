// Package driver runs the emulator's real-time tick loop: it owns one CPU
// and one Bus, schedules ticks at a target rate (or as fast as possible in
// turbo mode), evaluates breakpoints, and exchanges typed messages with a
// host over a control/reply channel pair (spec §4.9, §5, §6).
package driver

import (
	"context"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ttk91/ttk91/internal/bus"
	"github.com/ttk91/ttk91/internal/compiler"
	"github.com/ttk91/ttk91/internal/compiler/b91"
	"github.com/ttk91/ttk91/internal/cpu"
	"github.com/ttk91/ttk91/internal/defaultos"
	"github.com/ttk91/ttk91/internal/loader"
	"github.com/ttk91/ttk91/internal/log"
)

// kbdUnjamSentinel is delivered to a blocked KBD read on Stop, distinct
// from any value a host would legitimately Supply (spec §5 "Cancellation").
const kbdUnjamSentinel cpu.Word = -1

// frameInterval paces the frame-pump goroutine; the driver does not push a
// framebuffer copy on every pixel write (spec §4.7).
const frameInterval = 33 * time.Millisecond

// idlePace and runningPace bound the scheduler sleep (spec §4.9: "short
// while running, longer while idle").
const (
	runningPace = 200 * time.Microsecond
	idlePace    = 10 * time.Millisecond
)

// Driver owns the machine and its pacing/breakpoint state.
type Driver struct {
	cpu *cpu.CPU
	bus *bus.Bus

	offsets SegmentOffsets

	playing bool
	turbo   bool
	rate    float32

	accumulated time.Duration

	bp      *breakpoints
	monitor *perfMonitor

	defaultOS *b91.Program

	control chan Control
	reply   chan Reply
	frames  chan Frame

	log *log.Logger
}

// Frame is a framebuffer copy delivered to the host at a frame boundary.
type Frame struct {
	Image *image.RGBA
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLogger overrides the driver's logger.
func WithLogger(logger *log.Logger) Option {
	return func(d *Driver) { d.log = logger }
}

// WithRate sets the initial target tick rate, in Hz.
func WithRate(hz float32) Option {
	return func(d *Driver) { d.rate = hz }
}

// New creates a Driver with its own CPU and Bus, the default OS loaded,
// and playback stopped. The default OS is compiled once, at construction,
// from defaultos.Source; a failure there is a programming error in this
// module, not a runtime condition a host can hit, so New panics rather
// than threading an error through every caller.
func New(opts ...Option) *Driver {
	b := bus.New()
	c := cpu.New(b, cpu.WithLogger(log.DefaultLogger()))

	defaultOS, err := compiler.New().Compile(defaultos.Source)
	if err != nil {
		panic("driver: default OS failed to compile: " + err.Error())
	}

	d := &Driver{
		cpu:       c,
		bus:       b,
		rate:      10_000, // Hz
		bp:        newBreakpoints(),
		defaultOS: defaultOS,
		control:   make(chan Control, 32),
		reply:     make(chan Reply, 32),
		frames:    make(chan Frame, 1),
		log:       log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if err := loader.Load(d.bus, d.cpu, d.defaultOS); err != nil {
		panic("driver: default OS failed to load: " + err.Error())
	}

	return d
}

// Control returns the channel the host sends commands on.
func (d *Driver) Control() chan<- Control { return d.control }

// Reply returns the channel the host receives snapshots on.
func (d *Driver) Reply() <-chan Reply { return d.reply }

// Frames returns the channel the host receives framebuffer copies on.
func (d *Driver) Frames() <-chan Frame { return d.frames }

// CRT returns the channel of words written to the CRT device.
func (d *Driver) CRT() <-chan cpu.Word { return d.bus.CRT.Out() }

// KBDRequests returns the channel the KBD device signals on when a program
// blocks waiting for input.
func (d *Driver) KBDRequests() <-chan struct{} { return d.bus.KBD.Requests() }

// SupplyKBD delivers a host-provided input value to a waiting KBD read.
func (d *Driver) SupplyKBD(v cpu.Word) { d.bus.KBD.Supply(v) }

// Stop frees a possibly-blocked KBD read with a sentinel value and then
// clears playback (spec §5 "Cancellation"). The unjam is delivered on its
// own goroutine: the driver's tick loop may currently be blocked inside
// that very read, so a direct send cannot go through the control queue it
// isn't around to drain.
func (d *Driver) Stop() {
	go d.bus.KBD.Unjam(kbdUnjamSentinel)
	d.control <- Control{Kind: PlaybackStop}
}

// Run executes the driver's loop and a supervised frame-pump goroutine
// until ctx is cancelled or one of them returns an error (spec §4.9).
// Errors from program execution are not among these: the driver reports
// them as halted state over Reply, never by returning an error itself.
func (d *Driver) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return d.loop(ctx) })
	g.Go(func() error { return d.pumpFrames(ctx) })

	return g.Wait()
}

func (d *Driver) loop(ctx context.Context) error {
	tLast := time.Now()
	d.monitor = newPerfMonitor(tLast)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := time.Now()
		delta := now.Sub(tLast)
		tLast = now

		if d.playing {
			d.accumulated += delta
		}

		d.drainControl()

		if d.playing {
			if d.turbo {
				d.tick(delta)
				continue
			}

			if d.rate > 0 {
				period := time.Duration(float64(time.Second) / float64(d.rate))
				if d.accumulated >= period {
					d.accumulated -= period
					d.tick(delta)
					continue
				}
			}
		}

		pace := idlePace
		if d.playing {
			pace = runningPace
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pace):
		}
	}
}

// tick advances the PIC timer, evaluates breakpoints, steps the CPU once,
// and records it for the performance monitor (spec §4.9).
func (d *Driver) tick(delta time.Duration) {
	if d.bp.hit(d.cpu.PC) {
		d.playing = false
		return
	}

	d.bus.PIC.Advance(delta)

	if err := d.cpu.Step(context.Background()); err != nil {
		d.log.Error("driver: step failed, halting", "err", err)
		d.playing = false
		return
	}

	d.monitor.tick(time.Now(), float64(d.rate))

	if d.cpu.Halted() {
		d.playing = false
	}
}

// drainControl processes every pending control message to quiescence
// before the next tick fires (spec §5 "Ordering guarantees").
func (d *Driver) drainControl() {
	for {
		select {
		case msg := <-d.control:
			d.handle(msg)
		default:
			return
		}
	}
}

func (d *Driver) handle(msg Control) {
	switch msg.Kind {
	case PlaybackStart:
		d.playing = true
		d.accumulated = 0
	case PlaybackStop:
		d.playing = false
	case PlaybackPlayPause:
		d.playing = msg.PlayPause
	case PlaybackTick:
		d.tick(0)
	case LoadB91:
		d.loadProgram(msg.Program)
	case Reset:
		if err := loader.Load(d.bus, d.cpu, d.defaultOS); err != nil {
			d.log.Error("driver: reset failed", "err", err)
		}
		d.playing = false
	case ClearMem:
		d.bus.RAM.Reset()
	case SetRate:
		d.rate = msg.Rate
	case SetTurbo:
		d.turbo = msg.Turbo
	case GetState:
		d.reply <- Reply{Kind: StateReply, State: d.state()}
		d.reply <- Reply{Kind: RegsReply, Regs: d.regs()}
	case GetMem:
		d.reply <- Reply{Kind: MemReply, Mem: d.readMem(msg.MemRange[0], msg.MemRange[1])}
	case EnableBreakpoints:
		d.bp.enabled = msg.Enabled
	case ClearBreakpoints:
		d.bp.clear()
	case InsertBreakpoint:
		d.bp.insert(msg.Address)
	case RemoveBreakpoint:
		d.bp.remove(msg.Address)
	default:
		// Unknown control messages are ignored (spec §7 "Host protocol errors").
	}
}

func (d *Driver) loadProgram(prog *b91.Program) {
	if prog == nil {
		return
	}

	if err := loader.LoadWithDefaults(d.bus, d.cpu, d.defaultOS, prog); err != nil {
		d.log.Error("driver: load failed", "err", err)
		return
	}

	d.offsets = SegmentOffsets{
		CodeStart:  prog.CodeStart,
		DataStart:  prog.DataStart,
		StackStart: prog.SPInit,
	}

	d.reply <- Reply{Kind: SegmentOffsetsReply, Offsets: d.offsets}
}

func (d *Driver) regs() Regs {
	c := d.cpu
	return Regs{
		PC: c.PC, IR: cpu.Word(c.IR), TR: c.TR, SR: cpu.Word(c.SR),
		GPR:   c.Reg,
		Base:  c.MMU.BASE,
		Limit: c.MMU.LIMIT,
		MAR:   c.MMU.MAR,
		MBR:   c.MMU.MBR,
	}
}

func (d *Driver) state() State {
	speed := 100.0
	if d.monitor != nil {
		speed = d.monitor.stats().Percent
	}

	return State{
		Playing:      d.playing,
		Running:      !d.cpu.Halted(),
		Halted:       d.cpu.Halted(),
		SpeedPercent: speed,
	}
}

func (d *Driver) readMem(start, end cpu.Word) []cpu.Word {
	var words []cpu.Word

	for a := start; a < end; a++ {
		v, err := d.bus.Read(a)
		if err != nil {
			break
		}

		words = append(words, v)
	}

	return words
}

// pumpFrames pushes a framebuffer copy to the host every frameInterval,
// independent of the tick loop's own pace.
func (d *Driver) pumpFrames(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			img := d.bus.FB.Snapshot()

			select {
			case d.frames <- Frame{Image: img}:
			default:
				select {
				case <-d.frames:
				default:
				}
				d.frames <- Frame{Image: img}
			}
		}
	}
}
