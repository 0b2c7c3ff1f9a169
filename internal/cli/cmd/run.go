package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ttk91/ttk91/internal/compiler/b91"
	"github.com/ttk91/ttk91/internal/cpu"
	"github.com/ttk91/ttk91/internal/driver"
)

// NewRunCmd builds `ttk91 run FILE.b91`. It puts the terminal in raw mode
// (golang.org/x/term) so the emulated KBD device sees keystrokes as soon
// as they're typed, rather than waiting for Enter, and relays the
// emulated CRT's output directly to stdout.
func NewRunCmd() *cobra.Command {
	var rate float32
	var turbo bool

	c := &cobra.Command{
		Use:   "run FILE.b91",
		Short: "Run a B91 object file to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}

			var prog b91.Program
			if err := prog.UnmarshalText(text); err != nil {
				return fmt.Errorf("parse b91: %w", err)
			}

			return runProgram(cmd, &prog, rate, turbo)
		},
	}

	c.Flags().Float32Var(&rate, "rate", 10_000, "target tick rate in Hz")
	c.Flags().BoolVar(&turbo, "turbo", false, "run as fast as possible instead of at --rate")

	return c
}

func runProgram(cmd *cobra.Command, prog *b91.Program, rate float32, turbo bool) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d := driver.New(driver.WithRate(rate))

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()

	d.Control() <- driver.Control{Kind: driver.LoadB91, Program: prog}
	<-d.Reply() // SegmentOffsetsReply

	d.Control() <- driver.Control{Kind: driver.SetTurbo, Turbo: turbo}
	d.Control() <- driver.Control{Kind: driver.PlaybackStart}

	fd := int(os.Stdin.Fd())

	raw, rawErr := term.MakeRaw(fd)
	if rawErr == nil {
		defer term.Restore(fd, raw)
	}

	go relayCRT(ctx, d, cmd.OutOrStdout())
	go relayKBD(ctx, d, fd)

	poll := time.NewTicker(20 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			d.Stop()
			<-runErr
			return nil
		case err := <-runErr:
			return err
		case <-poll.C:
			d.Control() <- driver.Control{Kind: driver.GetState}
			st := <-d.Reply()
			<-d.Reply() // RegsReply, unused here

			if st.State.Halted {
				// Unjam any blocked KBD read, then cancel ctx so the
				// driver's loop and this command's relay goroutines all
				// observe it and return; Stop alone only clears playback,
				// it doesn't end the loop goroutine.
				d.Stop()
				cancel()
				<-runErr
				return nil
			}
		}
	}
}

func relayCRT(ctx context.Context, d *driver.Driver, out io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case w, ok := <-d.CRT():
			if !ok {
				return
			}
			fmt.Fprintf(out, "%c", rune(w))
		}
	}
}

// relayKBD forwards one raw byte from stdin for every KBD read request. The
// blocking read only starts after a request arrives, so this goroutine is
// parked on ctx.Done() the rest of the time; it can still be mid-read when
// ctx is cancelled, in which case it exits on the next keystroke or when
// stdin closes rather than immediately.
func relayKBD(ctx context.Context, d *driver.Driver, fd int) {
	buf := make([]byte, 1)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-d.KBDRequests():
			if !ok {
				return
			}

			n, err := readByte(fd, buf)
			if err != nil || n == 0 {
				return
			}

			d.SupplyKBD(cpu.Word(buf[0]))
		}
	}
}

func readByte(fd int, buf []byte) (int, error) {
	return syscall.Read(fd, buf)
}
