// Package codegen emits the C harness functions from field declarations.
//
// Output goes straight into the caller-owned writer in call order, there is
// no intermediate representation. Unrecognized field types never fail
// generation: they fall back to int handling and raise an advisory.
package codegen

import (
	"fmt"
	"io"
	"maps"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/TaihuLight/partecl-codegen/declaration"
	"github.com/TaihuLight/partecl-codegen/naming"
)

// Options defines generator settings
type Options struct {
	Names naming.Names
	// Diagnostics enables advisories for unrecognized types,
	// generated code does not depend on it
	Diagnostics bool
	// Logger receives advisories, the global logger is used if nil
	Logger *zerolog.Logger
}

// Summary collects counters of one generation pass
type Summary struct {
	Populated  map[declaration.Kind]int
	Reported   map[declaration.Kind]int
	Advisories int
}

// Generator writes C code into the sink.
// The sink is never closed by Generator.
type Generator struct {
	w       io.Writer
	err     error
	opts    Options
	summary Summary
}

// New returns a generator writing into w
func New(w io.Writer, opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = &log.Logger
	}
	return &Generator{
		w:    w,
		opts: opts,
		summary: Summary{
			Populated: map[declaration.Kind]int{},
			Reported:  map[declaration.Kind]int{},
		},
	}
}

// Err returns the first error returned by the sink
func (g *Generator) Err() error {
	return g.err
}

// Summary returns the counters collected so far
func (g *Generator) Summary() Summary {
	return Summary{
		Populated:  maps.Clone(g.summary.Populated),
		Reported:   maps.Clone(g.summary.Reported),
		Advisories: g.summary.Advisories,
	}
}

func (g *Generator) printf(format string, a ...any) {
	if g.err != nil {
		return
	}
	if _, err := fmt.Fprintf(g.w, format, a...); err != nil {
		g.err = fmt.Errorf("could not write generated code: %w", err)
	}
}

func (g *Generator) advise(d declaration.Declaration, msg string) {
	g.summary.Advisories++
	if !g.opts.Diagnostics {
		return
	}
	g.opts.Logger.Warn().
		Str("field", d.Name).
		Str("type", d.Type).
		Msg(msg)
}
