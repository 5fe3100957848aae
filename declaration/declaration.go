package declaration

import "strings"

// Kind defines the finite set of field kinds known to the emitters
type Kind int

// Enum kinds
const (
	KindUnknown Kind = iota
	KindInt
	KindBool
	KindCString
	KindChar
)

func (k Kind) String() string {
	if k < KindUnknown || k > KindChar {
		return "Unknown"
	}
	return [...]string{"Unknown", "Int", "Bool", "CString", "Char"}[k]
}

// Kinds lists all kinds in classification order, unknown last
var Kinds = []Kind{KindInt, KindBool, KindCString, KindChar, KindUnknown}

// Classify maps a C type tag onto a Kind.
// Matching is by substring and the order of checks is significant:
// "unsigned int" is Int, "char *" is CString before it can be Char.
func Classify(typ string) Kind {
	switch {
	case strings.Contains(typ, "int"):
		return KindInt
	case strings.Contains(typ, "bool"):
		return KindBool
	case strings.Contains(typ, "char *"), strings.Contains(typ, "char*"):
		return KindCString
	case strings.Contains(typ, "char"):
		return KindChar
	default:
		return KindUnknown
	}
}

// Declaration describes one named field of the input or result struct.
// Size is meaningful only when IsArray is set.
type Declaration struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	IsArray bool   `yaml:"isArray"`
	Size    int    `yaml:"size,omitempty"`
}

// Kind returns the classified kind of the field type
func (d Declaration) Kind() Kind {
	return Classify(d.Type)
}

// Scalar reports whether the field is a single value
func (d Declaration) Scalar() bool {
	return !d.IsArray
}

// ResultDeclaration describes one field of the result struct
type ResultDeclaration struct {
	Declaration `yaml:",inline"`
}
