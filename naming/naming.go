// Package naming provides the identifiers shared by the generated harness:
// struct tags of the input and result records and their bookkeeping fields.
package naming

import (
	"errors"
	"fmt"
	"regexp"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Names defines struct and field identifiers used in generated code
type Names struct {
	// Input is the struct tag of the input record, `struct <Input>`
	Input string `env:"INPUT" yaml:"input"`
	// Result is the struct tag of the result record, `struct <Result>`
	Result string `env:"RESULT" yaml:"result"`
	// TestCaseNum is the field holding the test case number in both records
	TestCaseNum string `env:"TESTCASENUM" yaml:"testCaseNum"`
	// Argc is the input field holding the raw command line argument count
	Argc string `env:"ARGC" yaml:"argc"`
}

// Defaults returns the identifiers used when nothing is configured
func Defaults() Names {
	return Names{
		Input:       "input",
		Result:      "result",
		TestCaseNum: "test_case_num",
		Argc:        "argc",
	}
}

// IsIdent reports whether s is a valid C identifier
func IsIdent(s string) bool {
	return identRe.MatchString(s)
}

// Validate checks that all names are C identifiers and
// the input fields do not collide
func (n Names) Validate() error {
	var ee []error
	for _, f := range []struct{ key, value string }{
		{"input", n.Input},
		{"result", n.Result},
		{"testCaseNum", n.TestCaseNum},
		{"argc", n.Argc},
	} {
		if !IsIdent(f.value) {
			ee = append(ee, fmt.Errorf("%s: bad name %q", f.key, f.value))
		}
	}
	if n.TestCaseNum == n.Argc {
		ee = append(ee, fmt.Errorf("testCaseNum and argc are both %q", n.Argc))
	}
	return errors.Join(ee...)
}
