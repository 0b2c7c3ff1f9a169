package cmd

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/ttk91/ttk91/internal/compiler/b91"
	"github.com/ttk91/ttk91/internal/driver"
)

// NewScreenshotCmd builds `ttk91 screenshot FILE.b91 -o frame.png`: runs
// until the first frame boundary (or --timeout) and writes that frame as a
// PNG (golang.org/x/image/draw for the upscale). Halting does not end the
// wait early.
func NewScreenshotCmd() *cobra.Command {
	var out string
	var scale int
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "screenshot FILE.b91",
		Short: "Run a program and capture its framebuffer as a PNG",
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

			if out == "" {
				return fmt.Errorf("--output is required")
			}

			return captureScreenshot(cmd, &prog, out, scale, timeout)
		},
	}

	c.Flags().StringVarP(&out, "output", "o", "", "output PNG path")
	c.Flags().IntVar(&scale, "scale", 4, "integer upscale factor")
	c.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "give up after this long")

	return c
}

func captureScreenshot(cmd *cobra.Command, prog *b91.Program, out string, scale int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	d := driver.New(driver.WithRate(100_000))

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()

	d.Control() <- driver.Control{Kind: driver.LoadB91, Program: prog}
	<-d.Reply() // SegmentOffsetsReply

	d.Control() <- driver.Control{Kind: driver.SetTurbo, Turbo: true}
	d.Control() <- driver.Control{Kind: driver.PlaybackStart}

	var frame *image.RGBA

	select {
	case f := <-d.Frames():
		frame = f.Image
	case <-ctx.Done():
		d.Stop()
		<-runErr
		return fmt.Errorf("screenshot: %w", ctx.Err())
	}

	d.Stop()
	cancel()
	<-runErr

	return writePNG(out, frame, scale)
}

func writePNG(path string, src *image.RGBA, scale int) error {
	if scale < 1 {
		scale = 1
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*scale, bounds.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, dst)
}
