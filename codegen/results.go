package codegen

import (
	"github.com/TaihuLight/partecl-codegen/declaration"
)

// ReportResult emits the printing of one result field of curres.
// Only the exact "int" type is handled, everything else is printed as int.
// The scalar statement is emitted unindented, consumers match on it.
func (g *Generator) ReportResult(r declaration.ResultDeclaration) {
	d := r.Declaration
	kind := declaration.KindInt
	if d.Type != "int" {
		kind = declaration.KindUnknown
		g.advise(d, "unhandled result type, defaulting to int formatting")
	}
	g.summary.Reported[kind]++

	tcn := g.opts.Names.TestCaseNum
	if !d.IsArray {
		g.printf(`printf("TC %%d %%d\n", curres.%s, curres.%s);`+"\n", tcn, d.Name)
		return
	}
	g.printf(`    printf("TC %%d ", curres.%s);`+"\n", tcn)
	g.printf("    for(int k = 0; k < %d; k++)\n", d.Size)
	g.printf("    {\n")
	g.printf("      int curel = curres.%s[k];\n", d.Name)
	g.printf(`      printf("%%d ", curel);` + "\n")
	g.printf("    }\n")
	g.printf(`    printf("\n");` + "\n")
}

// CompareResults emits the compare_results function.
// exp_results is part of the signature but results are only printed,
// the comparison itself is left to the consumer of the output.
func (g *Generator) CompareResults(results []declaration.ResultDeclaration) error {
	res := g.opts.Names.Result
	g.printf("void compare_results(struct %s* results, struct %s* exp_results, int num_test_cases)\n", res, res)
	g.printf("{\n")
	g.printf("  for(int i = 0; i < num_test_cases; i++)\n")
	g.printf("  {\n")
	g.printf("    struct %s curres = results[i];\n", res)
	for _, r := range results {
		g.ReportResult(r)
	}
	g.printf("  }\n")
	g.printf("}\n")
	return g.err
}
