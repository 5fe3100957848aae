package codegen

import (
	"strconv"

	"github.com/TaihuLight/partecl-codegen/declaration"
)

// ArgSource defines where raw argument strings come from
type ArgSource struct {
	// Count names the runtime variable with the number of present arguments
	Count string
	// Container names the runtime array of argument strings
	Container string
	// Offset is the raw index of the field at position 0
	Offset int
}

var (
	// CommandLine addresses args, where args[0] is the test case number
	CommandLine = ArgSource{Count: "argc", Container: "args", Offset: 1}
	// Stdin addresses stdins, starting from stdins[0]
	Stdin = ArgSource{Count: "stdinc", Container: "stdins", Offset: 0}
)

// PopulateInput emits the statements storing one field of the input struct.
// A scalar at raw index n is guarded by `count >= n+1`, so missing trailing
// arguments keep the previous value. Arrays are read in full with no guard.
func (g *Generator) PopulateInput(d declaration.Declaration, src ArgSource, pos int) {
	idx := pos + src.Offset
	name, argIdx := d.Name, strconv.Itoa(idx)
	if d.IsArray {
		g.printf("  for(int i = 0; i < %d; i++)\n", d.Size)
		name += "[i]"
		argIdx = "i+" + argIdx
	} else {
		g.printf("  if(%s >= %d)\n", src.Count, idx+1)
	}
	arg := src.Container + "[" + argIdx + "]"

	kind := d.Kind()
	g.summary.Populated[kind]++
	switch kind {
	case declaration.KindInt, declaration.KindBool:
		g.printf("    input->%s = atoi(%s);\n", name, arg)
	case declaration.KindCString:
		g.printf("  {\n")
		g.printf("    input->%s = (char *)malloc(sizeof(char)*(1+strlen(%s)));\n", name, arg)
		g.printf("    strcpy(input->%s, %s);\n", name, arg)
		g.printf("  }\n")
	case declaration.KindChar:
		g.printf("    input->%s = *%s;\n", name, arg)
	default:
		g.advise(d, "unhandled input type, defaulting to int parsing")
		g.printf("    input->%s = atoi(%s);\n", name, arg)
	}
}

// PopulateInputs emits the populate_inputs function.
// Command line and stdin fields keep independent positions.
func (g *Generator) PopulateInputs(inputs, stdin []declaration.Declaration) error {
	n := g.opts.Names
	g.printf("void populate_inputs(struct %s *input, int argc, char** args, int stdinc, char** stdins)\n", n.Input)
	g.printf("{\n")
	g.printf("  input->%s = atoi(args[0]);\n", n.TestCaseNum)
	g.printf("  input->%s = argc;\n", n.Argc)
	for pos, d := range inputs {
		g.PopulateInput(d, CommandLine, pos)
	}
	for pos, d := range stdin {
		g.PopulateInput(d, Stdin, pos)
	}
	g.printf("}\n")
	return g.err
}
