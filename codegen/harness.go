package codegen

import (
	"github.com/TaihuLight/partecl-codegen/declaration"
)

// Prologue emits the banner and the headers needed by the generated functions
func (g *Generator) Prologue() {
	g.printf("/* Code generated by partecl-codegen. DO NOT EDIT. */\n\n")
	g.printf("#include <stdbool.h>\n")
	g.printf("#include <stdio.h>\n")
	g.printf("#include <stdlib.h>\n")
	g.printf("#include <string.h>\n\n")
}

// InputStruct emits the input struct definition,
// command line fields first, then stdin fields
func (g *Generator) InputStruct(inputs, stdin []declaration.Declaration) {
	n := g.opts.Names
	g.printf("struct %s\n{\n", n.Input)
	g.printf("  int %s;\n", n.TestCaseNum)
	g.printf("  int %s;\n", n.Argc)
	for _, d := range inputs {
		g.field(d)
	}
	for _, d := range stdin {
		g.field(d)
	}
	g.printf("};\n\n")
}

// ResultStruct emits the result struct definition
func (g *Generator) ResultStruct(results []declaration.ResultDeclaration) {
	n := g.opts.Names
	g.printf("struct %s\n{\n", n.Result)
	g.printf("  int %s;\n", n.TestCaseNum)
	for _, r := range results {
		g.field(r.Declaration)
	}
	g.printf("};\n\n")
}

func (g *Generator) field(d declaration.Declaration) {
	if d.IsArray {
		g.printf("  %s %s[%d];\n", d.Type, d.Name, d.Size)
		return
	}
	g.printf("  %s %s;\n", d.Type, d.Name)
}

// Harness emits the complete harness source in fixed order:
// prologue, optional struct definitions, populate_inputs, compare_results
func (g *Generator) Harness(m *declaration.Manifest, withStructs bool) error {
	g.Prologue()
	if withStructs {
		g.InputStruct(m.Inputs, m.Stdin)
		g.ResultStruct(m.Results)
	}
	if err := g.PopulateInputs(m.Inputs, m.Stdin); err != nil {
		return err
	}
	g.printf("\n")
	return g.CompareResults(m.Results)
}
