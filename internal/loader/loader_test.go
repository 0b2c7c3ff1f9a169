package loader_test

import (
	"testing"

	"github.com/ttk91/ttk91/internal/bus"
	"github.com/ttk91/ttk91/internal/compiler"
	"github.com/ttk91/ttk91/internal/cpu"
	"github.com/ttk91/ttk91/internal/loader"
)

func TestLoadIdempotence(t *testing.T) {
	src := "LOAD R1, =50\nADD R1, =5\nSVC SP, =HALT\n"

	prog, err := compiler.New().Compile(src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	b := bus.New()
	c := cpu.New(b)

	if err := loader.Load(b, c, prog); err != nil {
		t.Fatalf("load: %v", err)
	}

	word0, _ := b.Read(prog.CodeStart)
	sp0, fp0, pc0 := c.Reg[cpu.SP], c.Reg[cpu.FP], c.PC

	c.Reg[cpu.R1] = 999 // perturb unrelated state, as a run would

	if err := loader.Load(b, c, prog); err != nil {
		t.Fatalf("second load: %v", err)
	}

	word1, _ := b.Read(prog.CodeStart)

	if word0 != word1 {
		t.Errorf("memory differs across loads: %d != %d", word0, word1)
	}

	if c.Reg[cpu.SP] != sp0 || c.Reg[cpu.FP] != fp0 || c.PC != pc0 {
		t.Errorf("register state differs across loads")
	}
}

// TestLoadWithDefaultsOverlay exercises the default-OS overlay: a base
// image installs a handler for IVT5; a user program with no IVT entries
// of its own should still see that handler after the overlay, while a
// user program that does define IVT5 should override it.
func TestLoadWithDefaultsOverlay(t *testing.T) {
	baseSrc := "ORG 2000\nHCF\nIVT5 HCF\n"
	base, err := compiler.New().Compile(baseSrc)
	if err != nil {
		t.Fatalf("compile base: %v", err)
	}

	userSrc := "LOAD R1, =1\nSVC SP, =HALT\n"
	user, err := compiler.New().Compile(userSrc)
	if err != nil {
		t.Fatalf("compile user: %v", err)
	}

	b := bus.New()
	c := cpu.New(b)

	if err := loader.LoadWithDefaults(b, c, base, user); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}

	if c.IVT[5] != base.Symbols["IVT5"] {
		t.Errorf("IVT[5] = %d, want base handler %d", c.IVT[5], base.Symbols["IVT5"])
	}

	if c.PC != user.FPInit || c.Reg[cpu.FP] != user.FPInit || c.Reg[cpu.SP] != user.SPInit {
		t.Errorf("PC/FP/SP should come from the overlaid user program, not the base")
	}

	word, err := b.Read(user.CodeStart)
	if err != nil {
		t.Fatalf("read user code: %v", err)
	}
	if word != user.Code[0] {
		t.Errorf("user code[0] = %d, want %d", word, user.Code[0])
	}

	userOverrideSrc := "IVT5 HCF\nSVC SP, =HALT\n"
	userOverride, err := compiler.New().Compile(userOverrideSrc)
	if err != nil {
		t.Fatalf("compile override: %v", err)
	}

	if err := loader.LoadWithDefaults(b, c, base, userOverride); err != nil {
		t.Fatalf("LoadWithDefaults (override): %v", err)
	}

	if c.IVT[5] != userOverride.Symbols["IVT5"] {
		t.Errorf("IVT[5] = %d, want user override %d", c.IVT[5], userOverride.Symbols["IVT5"])
	}
}
