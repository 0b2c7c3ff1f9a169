package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ttk91/ttk91/internal/compiler/b91"
	"github.com/ttk91/ttk91/internal/cpu"
	"github.com/ttk91/ttk91/internal/driver"
)

// NewDebugCmd builds `ttk91 debug FILE.b91`: an interactive breakpoint and
// step console over a line editor (github.com/peterh/liner), in place of
// a bespoke scanner loop.
func NewDebugCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "debug FILE.b91",
		Short: "Interactive breakpoint/step debugger",
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

			return debugConsole(cmd, args[0], &prog)
		},
	}

	return c
}

func debugConsole(cmd *cobra.Command, path string, prog *b91.Program) error {
	ctx := cmd.Context()

	d := driver.New()

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()
	defer func() {
		d.Stop()
		<-runErr
	}()

	d.Control() <- driver.Control{Kind: driver.LoadB91, Program: prog}
	<-d.Reply() // SegmentOffsetsReply

	d.Control() <- driver.Control{Kind: driver.EnableBreakpoints, Enabled: true}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "loaded %s: code at %d, data at %d\n", path, prog.CodeStart, prog.DataStart)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("ttk91> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line.AppendHistory(input)

		if quit := debugCommand(d, out, strings.TrimSpace(input)); quit {
			return nil
		}
	}
}

// debugCommand runs one console command; it reports whether the console
// should exit.
func debugCommand(d *driver.Driver, out io.Writer, input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true

	case "break":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: break ADDR")
			return false
		}
		addr, err := strconv.ParseInt(fields[1], 0, 32)
		if err != nil {
			fmt.Fprintf(out, "bad address: %v\n", err)
			return false
		}
		d.Control() <- driver.Control{Kind: driver.InsertBreakpoint, Address: cpu.Word(addr)}

	case "step":
		d.Control() <- driver.Control{Kind: driver.PlaybackTick}
		printRegs(d, out)

	case "continue", "cont":
		d.Control() <- driver.Control{Kind: driver.SetTurbo, Turbo: true}
		d.Control() <- driver.Control{Kind: driver.PlaybackStart}

	case "stop":
		d.Control() <- driver.Control{Kind: driver.PlaybackStop}

	case "regs":
		printRegs(d, out)

	case "mem":
		if len(fields) != 3 {
			fmt.Fprintln(out, "usage: mem START END")
			return false
		}
		start, err1 := strconv.ParseInt(fields[1], 0, 32)
		end, err2 := strconv.ParseInt(fields[2], 0, 32)
		if err1 != nil || err2 != nil {
			fmt.Fprintln(out, "bad range")
			return false
		}
		d.Control() <- driver.Control{Kind: driver.GetMem, MemRange: [2]cpu.Word{cpu.Word(start), cpu.Word(end)}}
		r := <-d.Reply()
		fmt.Fprintf(out, "%v\n", r.Mem)

	default:
		fmt.Fprintf(out, "unknown command: %s\n", fields[0])
	}

	return false
}

func printRegs(d *driver.Driver, out io.Writer) {
	d.Control() <- driver.Control{Kind: driver.GetState}
	st := <-d.Reply()
	regs := <-d.Reply()

	fmt.Fprintf(out, "PC=%d halted=%v playing=%v\n", regs.Regs.PC, st.State.Halted, st.State.Playing)
	fmt.Fprintf(out, "R0=%d R1=%d R2=%d R3=%d R4=%d R5=%d SP=%d FP=%d\n",
		regs.Regs.GPR[cpu.R0], regs.Regs.GPR[cpu.R1], regs.Regs.GPR[cpu.R2],
		regs.Regs.GPR[cpu.R3], regs.Regs.GPR[cpu.R4], regs.Regs.GPR[cpu.R5],
		regs.Regs.GPR[cpu.SP], regs.Regs.GPR[cpu.FP])
}
