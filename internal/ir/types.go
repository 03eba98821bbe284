package ir

// Kind enumerates the closed set of IR types.
type Kind int

const (
	KindInferred Kind = iota // unresolved; never an error
	KindUnit
	KindInt
	KindFloat
	KindBool
	KindString
	KindBytes
	KindChar
	KindArray
	KindOptional
	KindNamed
)

// Type is a resolved or partially-resolved IR type. Elem is set for array
// and optional kinds, Name for named kinds.
type Type struct {
	Kind Kind
	Elem *Type
	Name string
}

var (
	Inferred = Type{Kind: KindInferred}
	Unit     = Type{Kind: KindUnit}
	Int      = Type{Kind: KindInt}
	Float    = Type{Kind: KindFloat}
	Bool     = Type{Kind: KindBool}
	String   = Type{Kind: KindString}
	Bytes    = Type{Kind: KindBytes}
	Char     = Type{Kind: KindChar}
)

// ArrayOf wraps a type in an array.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e}
}

// OptionalOf wraps a type in an optional.
func OptionalOf(elem Type) Type {
	e := elem
	return Type{Kind: KindOptional, Elem: &e}
}

// Named constructs a reference to a user-declared type.
func Named(name string) Type {
	return Type{Kind: KindNamed, Name: name}
}

// Equal reports structural type equality.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind || t.Name != other.Name {
		return false
	}
	if t.Elem == nil || other.Elem == nil {
		return t.Elem == other.Elem
	}
	return t.Elem.Equal(*other.Elem)
}

// IsInferred reports whether the type is still the inference placeholder.
func (t Type) IsInferred() bool { return t.Kind == KindInferred }

// IsNumeric reports whether the type is int or float.
func (t Type) IsNumeric() bool { return t.Kind == KindInt || t.Kind == KindFloat }

// IsCollection reports whether values of the type render with Debug-style
// placeholders in string interpolation.
func (t Type) IsCollection() bool {
	return t.Kind == KindArray || t.Kind == KindNamed || t.Kind == KindBytes
}

// String returns a compact spelling for debugging output.
func (t Type) String() string {
	switch t.Kind {
	case KindUnit:
		return "unit"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindChar:
		return "char"
	case KindArray:
		return t.Elem.String() + "[]"
	case KindOptional:
		return t.Elem.String() + "?"
	case KindNamed:
		return t.Name
	default:
		return "inferred"
	}
}

// FromSpelling maps a surface type spelling to an IR type. Unknown names
// become named references; the language permits them.
func FromSpelling(s string) Type {
	switch {
	case s == "":
		return Inferred
	case len(s) > 2 && s[len(s)-2:] == "[]":
		return ArrayOf(FromSpelling(s[:len(s)-2]))
	case len(s) > 1 && s[len(s)-1] == '?':
		return OptionalOf(FromSpelling(s[:len(s)-1]))
	}
	switch s {
	case "number", "int":
		return Int
	case "float":
		return Float
	case "bool":
		return Bool
	case "string":
		return String
	case "bytes":
		return Bytes
	case "char":
		return Char
	case "void":
		return Unit
	default:
		return Named(s)
	}
}
