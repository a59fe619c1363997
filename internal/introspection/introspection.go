// Package introspection answers __schema and __type queries from a
// schema.Schema.
package introspection

import (
	"fmt"

	"github.com/hanpama/gqldirective/schema"
)

// Enable adds the introspection meta types to s and the __schema and __type
// fields to its query type. Enabling twice is a no-op.
//
// Call it after directives have been applied: an object-level directive on
// the query type would otherwise wrap the meta fields as well.
func Enable(s *schema.Schema) error {
	query := s.GetQueryType()
	if query == nil {
		return fmt.Errorf("introspection: schema has no query type")
	}
	if query.Field("__schema") != nil {
		return nil
	}

	in := &introspector{schema: s}
	s.AddType(metaType("__Schema", "A GraphQL Schema defines the capabilities of a GraphQL server.", in.resolveSchema,
		schema.NewField("description", "", schema.NamedType("String")),
		schema.NewField("types", "A list of all types supported by this server.", nonNullList("__Type")),
		schema.NewField("queryType", "The type that query operations will be rooted at.", nonNull("__Type")),
		schema.NewField("mutationType", "If this server supports mutation, the type that mutation operations will be rooted at.", schema.NamedType("__Type")),
		schema.NewField("subscriptionType", "If this server support subscription, the type that subscription operations will be rooted at.", schema.NamedType("__Type")),
		schema.NewField("directives", "A list of all directives supported by this server.", nonNullList("__Directive")),
	))
	s.AddType(metaType("__Type", "The fundamental unit of any GraphQL Schema is the type.", in.resolveType,
		schema.NewField("kind", "", nonNull("__TypeKind")),
		schema.NewField("name", "", schema.NamedType("String")),
		schema.NewField("description", "", schema.NamedType("String")),
		schema.NewField("specifiedByURL", "", schema.NamedType("String")),
		withDeprecatedArg(schema.NewField("fields", "", list("__Field"))),
		schema.NewField("interfaces", "", list("__Type")),
		schema.NewField("possibleTypes", "", list("__Type")),
		withDeprecatedArg(schema.NewField("enumValues", "", list("__EnumValue"))),
		withDeprecatedArg(schema.NewField("inputFields", "", list("__InputValue"))),
		schema.NewField("ofType", "", schema.NamedType("__Type")),
		schema.NewField("isOneOf", "", schema.NamedType("Boolean")),
	))
	s.AddType(metaType("__Field", "", resolveField,
		schema.NewField("name", "", nonNull("String")),
		schema.NewField("description", "", schema.NamedType("String")),
		withDeprecatedArg(schema.NewField("args", "", nonNullList("__InputValue"))),
		schema.NewField("type", "", nonNull("__Type")),
		schema.NewField("isDeprecated", "", nonNull("Boolean")),
		schema.NewField("deprecationReason", "", schema.NamedType("String")),
	))
	s.AddType(metaType("__InputValue", "", resolveInputValue,
		schema.NewField("name", "", nonNull("String")),
		schema.NewField("description", "", schema.NamedType("String")),
		schema.NewField("type", "", nonNull("__Type")),
		schema.NewField("defaultValue", "", schema.NamedType("String")),
		schema.NewField("isDeprecated", "", nonNull("Boolean")),
		schema.NewField("deprecationReason", "", schema.NamedType("String")),
	))
	s.AddType(metaType("__EnumValue", "", resolveEnumValue,
		schema.NewField("name", "", nonNull("String")),
		schema.NewField("description", "", schema.NamedType("String")),
		schema.NewField("isDeprecated", "", nonNull("Boolean")),
		schema.NewField("deprecationReason", "", schema.NamedType("String")),
	))
	s.AddType(metaType("__Directive", "", resolveDirective,
		schema.NewField("name", "", nonNull("String")),
		schema.NewField("description", "", schema.NamedType("String")),
		schema.NewField("isRepeatable", "", nonNull("Boolean")),
		schema.NewField("locations", "", nonNullList("__DirectiveLocation")),
		withDeprecatedArg(schema.NewField("args", "", nonNullList("__InputValue"))),
	))
	s.AddType(enumType("__TypeKind",
		"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"))
	s.AddType(enumType("__DirectiveLocation",
		"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
		"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
		"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
		"INPUT_FIELD_DEFINITION"))

	query.AddField(schema.NewField("__schema", "Access the current type schema of this server.", nonNull("__Schema")).
		SetResolver(in.schemaRoot))
	query.AddField(schema.NewField("__type", "Request the type information of a single type.", schema.NamedType("__Type")).
		AddArgument(schema.NewInputValue("name", "The name of the type to look up.", nonNull("String"))).
		SetResolver(in.typeRoot))
	return nil
}

// metaType builds an object type whose fields all resolve through resolve.
func metaType(name, description string, resolve schema.Resolver, fields ...*schema.Field) *schema.Type {
	t := schema.NewType(name, schema.TypeKindObject, description)
	for _, f := range fields {
		t.AddField(f.SetResolver(resolve))
	}
	return t
}

func enumType(name string, values ...string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, "")
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}

func withDeprecatedArg(f *schema.Field) *schema.Field {
	return f.AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false))
}

func nonNull(name string) *schema.TypeRef { return schema.NonNullType(schema.NamedType(name)) }

func list(name string) *schema.TypeRef { return schema.ListType(nonNull(name)) }

func nonNullList(name string) *schema.TypeRef { return schema.NonNullType(list(name)) }
