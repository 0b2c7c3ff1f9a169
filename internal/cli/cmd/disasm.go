package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttk91/ttk91/internal/compiler/b91"
	"github.com/ttk91/ttk91/internal/cpu"
)

// NewDisasmCmd builds `ttk91 disasm FILE.b91`.
func NewDisasmCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "disasm FILE.b91",
		Short: "Disassemble a B91 object file's code segment",
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

			out := cmd.OutOrStdout()

			for i, w := range prog.Code {
				addr := prog.CodeStart + int32(i)
				fmt.Fprintf(out, "%6d  %s\n", addr, cpu.Disassemble(cpu.Word(w)))
			}

			return nil
		},
	}

	return c
}
