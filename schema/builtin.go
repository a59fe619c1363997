package schema

import (
	"slices"
	"strings"
)

// Built-in definitions are shared by every schema. Render and introspection
// recognize them by identity, so they must not be mutated.
var (
	builtinScalars = []*Type{
		builtinScalar("String", "textual data, represented as UTF-8 character sequences"),
		builtinScalar("Int", "non-fractional signed whole numeric values"),
		builtinScalar("Float", "signed double-precision fractional values"),
		builtinScalar("Boolean", "`true` or `false`"),
		builtinScalar("ID", "a unique identifier, often used to refetch an object or as a key for caching"),
	}

	builtinDirectives = []*Directive{
		conditionDirective("include", "Directs the executor to include this field or fragment only when the `if` argument is true.", "Included when true."),
		conditionDirective("skip", "Directs the executor to skip this field or fragment when the `if` argument is true.", "Skipped when true."),
		{
			Name:        "deprecated",
			Description: "Marks an element of a GraphQL schema as no longer supported.",
			Arguments: []*InputValue{{
				Name:         "reason",
				Description:  "Explains why this element was deprecated.",
				Type:         NamedType("String"),
				DefaultValue: "No longer supported",
			}},
			Locations: []string{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"},
		},
	}
)

func builtinScalar(name, represents string) *Type {
	return &Type{
		Name:        name,
		Kind:        TypeKindScalar,
		Description: "The `" + name + "` scalar type represents " + represents + ".",
	}
}

func conditionDirective(name, description, ifDescription string) *Directive {
	return &Directive{
		Name:        name,
		Description: description,
		Arguments: []*InputValue{{
			Name:        "if",
			Description: ifDescription,
			Type:        NonNullType(NamedType("Boolean")),
		}},
		Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}

// isMetaName reports names reserved for introspection. The validator declares
// those types itself, so they are never rendered.
func isMetaName(name string) bool { return strings.HasPrefix(name, "__") }

func isBuiltinType(t *Type) bool { return slices.Contains(builtinScalars, t) }

func isBuiltinDirective(d *Directive) bool { return slices.Contains(builtinDirectives, d) }
