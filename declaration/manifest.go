package declaration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TaihuLight/partecl-codegen/naming"
	"gopkg.in/yaml.v3"
)

// Manifest errors, ErrManifestDuplicate and ErrManifestField wrap ErrManifest
var (
	ErrManifest          = fmt.Errorf("manifest error")
	ErrManifestDuplicate = fmt.Errorf("%w: duplicate field", ErrManifest)
	ErrManifestField     = fmt.Errorf("%w: invalid field", ErrManifest)
)

// Manifest holds the ordered declaration lists of one kernel.
// Inputs and Stdin both become fields of the input struct.
type Manifest struct {
	Inputs  []Declaration       `yaml:"inputs"`
	Stdin   []Declaration       `yaml:"stdin"`
	Results []ResultDeclaration `yaml:"results"`
}

// LoadManifest reads and parses the manifest file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes YAML (or JSON) data, unknown keys are rejected
func ParseManifest(data []byte) (*Manifest, error) {
	m := new(Manifest)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	return m, nil
}

// Validate checks the contract the emitters rely on but never verify:
// identifiers are valid and unique per struct, arrays have a positive size.
// The struct fields reserved by names count as already declared.
func (m *Manifest) Validate(names naming.Names) error {
	var ee []error
	seen := map[string]string{
		names.TestCaseNum: "reserved",
		names.Argc:        "reserved",
	}
	check := func(section string, i int, d Declaration) {
		where := fmt.Sprintf("%s[%d]", section, i)
		if !naming.IsIdent(d.Name) {
			ee = append(ee, fmt.Errorf("%w: %s: bad name %q", ErrManifestField, where, d.Name))
		} else if prev, ok := seen[d.Name]; ok {
			ee = append(ee, fmt.Errorf("%w: %s: %q already declared at %s", ErrManifestDuplicate, where, d.Name, prev))
		} else {
			seen[d.Name] = where
		}
		if d.Type == "" {
			ee = append(ee, fmt.Errorf("%w: %s: empty type", ErrManifestField, where))
		}
		if d.IsArray && d.Size <= 0 {
			ee = append(ee, fmt.Errorf("%w: %s: array size must be positive, got %d", ErrManifestField, where, d.Size))
		}
	}

	for i, d := range m.Inputs {
		check("inputs", i, d)
	}
	for i, d := range m.Stdin {
		check("stdin", i, d)
	}
	/* results live in their own struct */
	seen = map[string]string{names.TestCaseNum: "reserved"}
	for i, r := range m.Results {
		check("results", i, r.Declaration)
	}
	return errors.Join(ee...)
}
