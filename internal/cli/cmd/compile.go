package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttk91/ttk91/internal/compiler"
)

// NewCompileCmd builds `ttk91 compile SOURCE.k91 -o OUT.b91`.
func NewCompileCmd() *cobra.Command {
	var out string

	c := &cobra.Command{
		Use:   "compile SOURCE.k91",
		Short: "Compile k91 assembly to a B91 object file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}

			prog, err := compiler.New().Compile(string(src))
			if err != nil {
				return fmt.Errorf("compile: %w", err)
			}

			text, err := prog.MarshalText()
			if err != nil {
				return fmt.Errorf("marshal b91: %w", err)
			}

			if out == "" {
				_, err := cmd.OutOrStdout().Write(text)
				return err
			}

			return os.WriteFile(out, text, 0o644)
		},
	}

	c.Flags().StringVarP(&out, "output", "o", "", "output B91 file (default: stdout)")

	return c
}
