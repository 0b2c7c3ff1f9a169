// Command ttk91 compiles, runs, disassembles and debugs TTK-91 programs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ttk91/ttk91/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.New().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
