package bus

import (
	"image"
	"image/color"
	"sync"

	"github.com/ttk91/ttk91/internal/cpu"
)

// Framebuffer is a 160×120 memory-mapped display (spec §4.7). A word
// written at a cell packs into a lossy byte-triple: the low nibble of each
// channel is discarded on both write and read, so read(write(v)) is a
// stable (idempotent) re-pack rather than the original value.
//
// mut guards cells against the driver's tick loop (Read/Write) racing the
// frame-pump goroutine (Snapshot), the one device the driver observes from
// outside its own execution context (spec §5 "Framebuffer").
type Framebuffer struct {
	Width, Height int

	mut   sync.Mutex
	cells []rgbCell
}

type rgbCell struct {
	r, g, b byte
}

const (
	fbWidth  = 160
	fbHeight = 120

	// fbSize is the size of the decoded address range (spec §4.5:
	// 0x2000..=0x6B00 inclusive), one word larger than 160×120 cells.
	// The trailing word is addressable but outside any pixel and is
	// simply never rendered by Snapshot.
	fbSize = fbEnd - fbStart + 1
)

// NewFramebuffer allocates a blank 160×120 framebuffer.
func NewFramebuffer() *Framebuffer {
	return &Framebuffer{
		Width:  fbWidth,
		Height: fbHeight,
		cells:  make([]rgbCell, fbSize),
	}
}

// pack maps a word to R=(v>>4), G=v, B=(v<<4), each truncated to a byte
// with its low nibble cleared (spec §3, §4.7). Addition/commutativity
// across addresses is trivially satisfied because each cell is independent.
func pack(v cpu.Word) rgbCell {
	return rgbCell{
		r: byte(v>>4) & 0xf0,
		g: byte(v) & 0xf0,
		b: byte(v<<4) & 0xf0,
	}
}

func (c rgbCell) unpack() cpu.Word {
	return cpu.Word(c.r)<<4 | cpu.Word(c.g) | cpu.Word(c.b)>>4
}

func (fb *Framebuffer) Read(addr cpu.Word) (cpu.Word, error) {
	if addr < 0 || int(addr) >= len(fb.cells) {
		return 0, ErrNoDevice
	}

	fb.mut.Lock()
	defer fb.mut.Unlock()

	return fb.cells[addr].unpack(), nil
}

func (fb *Framebuffer) Write(addr cpu.Word, v cpu.Word) error {
	if addr < 0 || int(addr) >= len(fb.cells) {
		return ErrNoDevice
	}

	fb.mut.Lock()
	defer fb.mut.Unlock()

	fb.cells[addr] = pack(v)

	return nil
}

// Reset blanks every cell.
func (fb *Framebuffer) Reset() {
	fb.mut.Lock()
	defer fb.mut.Unlock()

	for i := range fb.cells {
		fb.cells[i] = rgbCell{}
	}
}

// Snapshot renders the framebuffer as an *image.RGBA, for the driver's
// frame-pump goroutine and the `screenshot` CLI command. It never runs on
// the CPU/bus hot path (spec §9 "Framebuffer").
func (fb *Framebuffer) Snapshot() *image.RGBA {
	fb.mut.Lock()
	defer fb.mut.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))

	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.cells[y*fb.Width+x]
			img.Set(x, y, color.RGBA{R: c.r, G: c.g, B: c.b, A: 0xff})
		}
	}

	return img
}
