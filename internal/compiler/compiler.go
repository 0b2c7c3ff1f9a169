package compiler

import (
	"github.com/ttk91/ttk91/internal/compiler/b91"
	"github.com/ttk91/ttk91/internal/log"
)

// Compiler translates k91 source into a B91 program through the ordered
// passes of spec §4.1.
type Compiler struct {
	log *log.Logger
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{log: log.DefaultLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Compiler at construction time.
type Option func(*Compiler)

// WithLogger overrides the compiler's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Compiler) { c.log = logger }
}

// Compile runs all seven passes over source and returns the resulting B91
// program. On any error, no partial program is returned (spec §4.1
// "Errors").
func (c *Compiler) Compile(source string) (*b91.Program, error) {
	stmts, err := lex(source)
	if err != nil {
		return nil, err
	}

	if err := checkDuplicateLabels(stmts); err != nil {
		return nil, err
	}

	org, err := processDirectives(stmts)
	if err != nil {
		return nil, err
	}

	consts, err := processConstants(stmts)
	if err != nil {
		return nil, err
	}

	data, dataLabels, err := processData(stmts, org, consts)
	if err != nil {
		return nil, err
	}

	codeLabels := preassignCodeLabels(stmts, org)

	st := symbolTables{consts: consts, dataLabels: dataLabels, codeLabels: codeLabels}

	code, err := encodeCode(stmts, st)
	if err != nil {
		return nil, err
	}

	if len(code) == 0 {
		return nil, errf(0, "code segment must be non-empty")
	}

	codeStart := org
	fpInit := org
	dataStart := codeStart + int32(len(code))
	spInit := dataStart + int32(len(data))

	symbols := map[string]int32{}
	for name, addr := range consts {
		symbols[name] = addr
	}
	for name, addr := range dataLabels {
		symbols[name] = addr
	}
	for name, addr := range codeLabels {
		symbols[name] = addr
	}

	c.log.Debug("compiled program",
		"code", len(code), "data", len(data), "symbols", len(symbols))

	return &b91.Program{
		CodeStart: codeStart,
		FPInit:    fpInit,
		Code:      code,
		DataStart: dataStart,
		SPInit:    spInit,
		Data:      data,
		Symbols:   symbols,
	}, nil
}
