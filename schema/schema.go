package schema

import (
	"slices"

	"github.com/hanpama/gqldirective/language"
)

// Schema is the host model directives are applied to. Types and fields are
// plain structs; resolvers live on the fields.
type Schema struct {
	Description      string
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type
	Directives       map[string]*Directive

	// typeOrder is definition order, which keeps directive visitation and
	// rendering deterministic.
	typeOrder []string
	// ast caches the validated document; see ToAST.
	ast *language.SchemaAST
}

func (s *Schema) GetQueryType() *Type        { return s.Types[s.QueryType] }
func (s *Schema) GetMutationType() *Type     { return s.Types[s.MutationType] }
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// OrderedTypes returns the named types in the order they were added. Types
// put straight into the Types map come last, sorted by name.
func (s *Schema) OrderedTypes() []*Type {
	out := make([]*Type, 0, len(s.Types))
	listed := make(map[string]bool, len(s.typeOrder))
	for _, name := range s.typeOrder {
		if t := s.Types[name]; t != nil && !listed[name] {
			out = append(out, t)
			listed[name] = true
		}
	}
	var extra []string
	for name := range s.Types {
		if !listed[name] {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		out = append(out, s.Types[name])
	}
	return out
}

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Type is a named type. Which slices are used depends on Kind.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string

	Fields         []*Field      // object, interface
	Interfaces     []string      // object, interface
	PossibleTypes  []string      // interface, union
	EnumValues     []*EnumValue  // enum
	InputFields    []*InputValue // input object
	OneOf          bool          // input object
	SpecifiedByURL *string       // scalar

	// Directives are the uses written on the type definition, in source
	// order.
	Directives []*DirectiveUse `json:",omitempty"`
}

func (t *Type) Field(name string) *Field {
	i := slices.IndexFunc(t.Fields, func(f *Field) bool { return f.Name == name })
	if i < 0 {
		return nil
	}
	return t.Fields[i]
}

// Field is a field of an object or interface type.
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	IsDeprecated      bool
	DeprecationReason string

	// Async fields are batched by the executor and resolved concurrently.
	Async bool

	// Directives are the uses written on the field definition, in source
	// order.
	Directives []*DirectiveUse `json:",omitempty"`

	// Resolve produces the field value. Nil means DefaultResolver. Schema
	// directives replace it with a wrapped resolver.
	Resolve Resolver `json:"-"`
}

// Resolver returns Resolve, or DefaultResolver when none is installed.
func (f *Field) Resolver() Resolver {
	if f.Resolve == nil {
		return DefaultResolver
	}
	return f.Resolve
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string

	// DefaultLiteral is the default as written in SDL, empty when the
	// default was set in Go.
	DefaultLiteral string `json:"-"`
}

// Directive is a directive declaration. Uses are DirectiveUse.
type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

// TypeRef is a possibly wrapped reference to a named type.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // list and non-null
	Named  string   // named
}

func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }

func (t *TypeRef) IsNonNull() bool { return t != nil && t.Kind == TypeRefKindNonNull }

// IsList is true for [T] and [T]!.
func (t *TypeRef) IsList() bool {
	if t.IsNonNull() {
		t = t.OfType
	}
	return t != nil && t.Kind == TypeRefKindList
}

// Unwrap peels one list or non-null layer. A named reference is returned
// as is.
func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNamed {
		return t
	}
	return t.OfType
}

// GetNamedType returns the name at the core of t.
func (t *TypeRef) GetNamedType() string {
	for t != nil && t.Kind != TypeRefKindNamed {
		t = t.OfType
	}
	if t == nil {
		return ""
	}
	return t.Named
}

// String renders t in SDL form, e.g. "[String!]!".
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	}
	return t.Named
}

func IsNonNull(t *TypeRef) bool      { return t.IsNonNull() }
func IsList(t *TypeRef) bool         { return t != nil && t.IsList() }
func Unwrap(t *TypeRef) *TypeRef     { return t.Unwrap() }
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
