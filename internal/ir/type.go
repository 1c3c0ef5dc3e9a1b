// Package ir is the typed control-flow-graph intermediate representation
// that internal/irbuild lowers an analyzed AST into, and that
// internal/optimize and internal/emit consume.
package ir

import "fmt"

// Kind is the tag of an IR Type.
type Kind int

const (
	Void Kind = iota
	Bool
	Double
	StringRef  // interned-string reference
	ESValue    // tagged ES value
	Reference  // unresolved binding (meta_ctx_load / meta_prp_load result)
	ArrayOf    // fixed-length array of Elem
	PointerTo  // pointer to Elem
	OpaqueName // runtime-internal handle, identified by Name
)

// Type is the IR's small type sum: void, boolean, double, interned-string
// reference, tagged value, unresolved reference, array-of-T with length,
// pointer-to-T, and opaque-named runtime handles. Equality and ordering are
// structural, so Type is a plain comparable-by-value struct wherever
// possible; ArrayOf/PointerTo carry an *Type for Elem since Go structs
// can't be self-referential by value.
type Type struct {
	Kind Kind
	Elem *Type  // meaningful for ArrayOf, PointerTo
	Len  int    // meaningful for ArrayOf
	Name string // meaningful for OpaqueName
}

func VoidType() Type      { return Type{Kind: Void} }
func BoolType() Type      { return Type{Kind: Bool} }
func DoubleType() Type    { return Type{Kind: Double} }
func StringType() Type    { return Type{Kind: StringRef} }
func ValueType() Type     { return Type{Kind: ESValue} }
func ReferenceType() Type { return Type{Kind: Reference} }

func PointerTypeTo(elem Type) Type { return Type{Kind: PointerTo, Elem: &elem} }
func ArrayTypeOf(elem Type, n int) Type { return Type{Kind: ArrayOf, Elem: &elem, Len: n} }
func OpaqueType(name string) Type { return Type{Kind: OpaqueName, Name: name} }

// Equal reports structural equality between t and other.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case ArrayOf:
		return t.Len == other.Len && t.Elem.Equal(*other.Elem)
	case PointerTo:
		return t.Elem.Equal(*other.Elem)
	case OpaqueName:
		return t.Name == other.Name
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.Kind {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Double:
		return "double"
	case StringRef:
		return "string"
	case ESValue:
		return "value"
	case Reference:
		return "ref"
	case ArrayOf:
		return fmt.Sprintf("[%d]%s", t.Len, t.Elem.String())
	case PointerTo:
		return "*" + t.Elem.String()
	case OpaqueName:
		return t.Name
	default:
		return "invalid"
	}
}
