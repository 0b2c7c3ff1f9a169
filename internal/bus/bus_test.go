package bus_test

import (
	"testing"
	"time"

	"github.com/ttk91/ttk91/internal/bus"
)

func TestPICTimerFires(t *testing.T) {
	p := bus.NewPIC()

	p.WriteTimer(50) // 50ms reload
	if p.IsFiring() {
		t.Fatal("should not fire immediately")
	}

	p.Advance(49 * time.Millisecond)
	if p.IsFiring() {
		t.Fatal("should not fire at 49ms")
	}

	p.Advance(2 * time.Millisecond)
	if !p.IsFiring() {
		t.Fatal("should fire at 51ms")
	}

	if p.ReadFlag() != 0b10 {
		t.Errorf("flag = %d, want 2 (timer bit)", p.ReadFlag())
	}
}

func TestPICMaskGatesFlag(t *testing.T) {
	p := bus.NewPIC()

	p.WriteMask(0) // mask everything, including default timer bit
	p.WriteCommand(0)

	if p.IsFiring() {
		t.Fatal("should not fire with empty mask")
	}
}

func TestFramebufferPackUnpackIdempotent(t *testing.T) {
	fb := bus.NewFramebuffer()

	if err := fb.Write(0, 0x1234); err != nil {
		t.Fatal(err)
	}

	v1, err := fb.Read(0)
	if err != nil {
		t.Fatal(err)
	}

	if err := fb.Write(0, v1); err != nil {
		t.Fatal(err)
	}

	v2, err := fb.Read(0)
	if err != nil {
		t.Fatal(err)
	}

	if v1 != v2 {
		t.Errorf("re-pack not idempotent: %#x != %#x", v1, v2)
	}
}

func TestBusAddressDecoding(t *testing.T) {
	b := bus.New()

	if err := b.Write(0, 42); err != nil {
		t.Fatalf("ram write: %v", err)
	}
	v, err := b.Read(0)
	if err != nil || v != 42 {
		t.Fatalf("ram roundtrip: %v %v", v, err)
	}

	if err := b.Write(0x2000, 0xff0); err != nil {
		t.Fatalf("framebuffer write: %v", err)
	}

	if _, err := b.Read(0x7000); err == nil {
		t.Fatal("expected ErrNoDevice past framebuffer range")
	}

	if err := b.Out(bus.PortCRT, 'A'); err != nil {
		t.Fatalf("crt out: %v", err)
	}

	if _, err := b.In(bus.PortCRT); err == nil {
		t.Fatal("expected error reading write-only CRT")
	}
}
