package driver_test

import (
	"context"
	"testing"
	"time"

	"github.com/ttk91/ttk91/internal/compiler"
	"github.com/ttk91/ttk91/internal/cpu"
	"github.com/ttk91/ttk91/internal/driver"
)

// runFor starts d.Run in the background, bounded by a timeout so a stuck
// loop fails the test instead of hanging it, and returns a cancel func the
// test calls when it's done observing the driver.
func runFor(t *testing.T, d *driver.Driver, timeout time.Duration) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.Run(ctx); err != nil && ctx.Err() == nil {
			t.Errorf("driver.Run: %v", err)
		}
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return cancel
}

func TestNewInstallsDefaultOS(t *testing.T) {
	// New must not panic compiling/loading the default OS image, and the
	// machine should start halted-looking (not playing) until told to run.
	d := driver.New()
	cancel := runFor(t, d, time.Second)
	defer cancel()

	d.Control() <- driver.Control{Kind: driver.GetState}

	select {
	case r := <-d.Reply():
		if r.Kind != driver.StateReply {
			t.Fatalf("first reply kind = %v, want StateReply", r.Kind)
		}
		if r.State.Playing {
			t.Errorf("new driver should not be playing")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state reply")
	}
}

func TestLoadAndRunArithmeticScenario(t *testing.T) {
	src := `
LOAD   R1, =50
ADD    R1, =5
STORE  R1, result
SVC    SP, =HALT
result DC 0
`
	prog, err := compiler.New().Compile(src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	d := driver.New(driver.WithRate(100_000))
	cancel := runFor(t, d, 2*time.Second)
	defer cancel()

	d.Control() <- driver.Control{Kind: driver.LoadB91, Program: prog}

	select {
	case r := <-d.Reply():
		if r.Kind != driver.SegmentOffsetsReply {
			t.Fatalf("reply kind = %v, want SegmentOffsetsReply", r.Kind)
		}
		if r.Offsets.CodeStart != prog.CodeStart {
			t.Errorf("CodeStart = %d, want %d", r.Offsets.CodeStart, prog.CodeStart)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for load reply")
	}

	d.Control() <- driver.Control{Kind: driver.SetTurbo, Turbo: true}
	d.Control() <- driver.Control{Kind: driver.PlaybackStart}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		d.Control() <- driver.Control{Kind: driver.GetState}

		r := <-d.Reply() // StateReply
		regs := <-d.Reply()

		if r.Kind == driver.StateReply && r.State.Halted {
			if regs.Kind != driver.RegsReply {
				t.Fatalf("second reply kind = %v, want RegsReply", regs.Kind)
			}
			if regs.Regs.GPR[cpu.R1] != 55 {
				t.Errorf("R1 = %d, want 55", regs.Regs.GPR[cpu.R1])
			}
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("program did not halt in time")
}

func TestBreakpointStopsPlayback(t *testing.T) {
	src := `
LOAD R1, =1
LOAD R2, =2
LOAD R3, =3
SVC  SP, =HALT
`
	prog, err := compiler.New().Compile(src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	d := driver.New(driver.WithRate(100_000))
	cancel := runFor(t, d, 2*time.Second)
	defer cancel()

	d.Control() <- driver.Control{Kind: driver.LoadB91, Program: prog}
	<-d.Reply() // SegmentOffsetsReply

	// second instruction: CodeStart+1
	d.Control() <- driver.Control{Kind: driver.EnableBreakpoints, Enabled: true}
	d.Control() <- driver.Control{Kind: driver.InsertBreakpoint, Address: prog.CodeStart + 1}
	d.Control() <- driver.Control{Kind: driver.SetTurbo, Turbo: true}
	d.Control() <- driver.Control{Kind: driver.PlaybackStart}

	time.Sleep(100 * time.Millisecond)

	d.Control() <- driver.Control{Kind: driver.GetState}
	r := <-d.Reply()
	<-d.Reply()

	if r.State.Playing {
		t.Errorf("playback should have stopped at the breakpoint")
	}
	if r.State.Halted {
		t.Errorf("program should not have halted, it should have been stopped by the breakpoint")
	}
}
