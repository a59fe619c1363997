package introspection

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqldirective/directive"
	"github.com/hanpama/gqldirective/directive/builtin"
	"github.com/hanpama/gqldirective/executor"
	"github.com/hanpama/gqldirective/schema"
)

const testSDL = `
"Marks a field for auditing."
directive @audit(reason: String = "compliance") on FIELD_DEFINITION

type Query {
  person(id: ID!): Person
  node: Node
}

interface Node { id: ID! }

type Person implements Node {
  id: ID!
  name: String @audit
  nick: String @deprecated(reason: "use name")
  role: Role
}

enum Role {
  ADMIN
  GUEST @deprecated
}

input Filter @oneOf {
  byName: String
  byRole: Role
}
`

func execute(t *testing.T, s *schema.Schema, query string) map[string]any {
	t.Helper()
	res := executor.NewExecutor(executor.NewResolverRuntime(s), s).Execute(context.Background(), query, "", nil, nil)
	require.Empty(t, res.Errors)
	return res.Data.(map[string]any)
}

func enabled(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)
	require.NoError(t, Enable(s))
	return s
}

func TestSchemaRoot(t *testing.T) {
	s := enabled(t, testSDL)
	data := execute(t, s, `{
  __schema {
    queryType { name }
    mutationType { name }
    directives { name description locations args { name defaultValue } }
  }
}`)

	want := map[string]any{
		"queryType":    map[string]any{"name": "Query"},
		"mutationType": nil,
		"directives": []any{
			map[string]any{
				"name":        "audit",
				"description": "Marks a field for auditing.",
				"locations":   []any{"FIELD_DEFINITION"},
				"args":        []any{map[string]any{"name": "reason", "defaultValue": `"compliance"`}},
			},
			map[string]any{
				"name":        "deprecated",
				"description": "Marks an element of a GraphQL schema as no longer supported.",
				"locations":   []any{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"},
				"args":        []any{map[string]any{"name": "reason", "defaultValue": `"No longer supported"`}},
			},
			map[string]any{
				"name":        "include",
				"description": "Directs the executor to include this field or fragment only when the `if` argument is true.",
				"locations":   []any{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
				"args":        []any{map[string]any{"name": "if", "defaultValue": nil}},
			},
			map[string]any{
				"name":        "skip",
				"description": "Directs the executor to skip this field or fragment when the `if` argument is true.",
				"locations":   []any{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
				"args":        []any{map[string]any{"name": "if", "defaultValue": nil}},
			},
		},
	}
	if diff := cmp.Diff(want, data["__schema"]); diff != "" {
		t.Fatalf("__schema mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaRoot_TypesIncludeMetaTypes(t *testing.T) {
	s := enabled(t, testSDL)
	data := execute(t, s, `{ __schema { types { name } } }`)

	var names []string
	for _, typ := range data["__schema"].(map[string]any)["types"].([]any) {
		names = append(names, typ.(map[string]any)["name"].(string))
	}
	assert.Subset(t, names, []string{"String", "Query", "Person", "Node", "Role", "Filter", "__Schema", "__Type", "__TypeKind"})
}

func TestTypeRoot(t *testing.T) {
	s := enabled(t, testSDL)
	data := execute(t, s, `{
  person: __type(name: "Person") {
    kind
    name
    interfaces { name }
    fields { name type { kind name ofType { kind name } } }
  }
  all: __type(name: "Person") { fields(includeDeprecated: true) { name isDeprecated deprecationReason } }
  query: __type(name: "Query") { fields { name args { name type { kind ofType { name } } } } }
  missing: __type(name: "Nope") { name }
}`)

	want := map[string]any{
		"person": map[string]any{
			"kind":       "OBJECT",
			"name":       "Person",
			"interfaces": []any{map[string]any{"name": "Node"}},
			"fields": []any{
				map[string]any{"name": "id", "type": map[string]any{
					"kind": "NON_NULL", "name": nil, "ofType": map[string]any{"kind": "SCALAR", "name": "ID"},
				}},
				map[string]any{"name": "name", "type": map[string]any{"kind": "SCALAR", "name": "String", "ofType": nil}},
				map[string]any{"name": "role", "type": map[string]any{"kind": "ENUM", "name": "Role", "ofType": nil}},
			},
		},
		"all": map[string]any{
			"fields": []any{
				map[string]any{"name": "id", "isDeprecated": false, "deprecationReason": nil},
				map[string]any{"name": "name", "isDeprecated": false, "deprecationReason": nil},
				map[string]any{"name": "nick", "isDeprecated": true, "deprecationReason": "use name"},
				map[string]any{"name": "role", "isDeprecated": false, "deprecationReason": nil},
			},
		},
		"query": map[string]any{
			"fields": []any{
				map[string]any{"name": "person", "args": []any{
					map[string]any{"name": "id", "type": map[string]any{"kind": "NON_NULL", "ofType": map[string]any{"name": "ID"}}},
				}},
				map[string]any{"name": "node", "args": []any{}},
			},
		},
		"missing": nil,
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("__type mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeRoot_Kinds(t *testing.T) {
	s := enabled(t, testSDL)
	data := execute(t, s, `{
  node: __type(name: "Node") { kind possibleTypes { name } fields { name } }
  role: __type(name: "Role") { kind enumValues { name } all: enumValues(includeDeprecated: true) { name } }
  filter: __type(name: "Filter") { kind isOneOf inputFields { name type { name } } }
  scalar: __type(name: "String") { kind fields { name } enumValues { name } }
}`)

	want := map[string]any{
		"node": map[string]any{
			"kind":          "INTERFACE",
			"possibleTypes": []any{map[string]any{"name": "Person"}},
			"fields":        []any{map[string]any{"name": "id"}},
		},
		"role": map[string]any{
			"kind":       "ENUM",
			"enumValues": []any{map[string]any{"name": "ADMIN"}},
			"all":        []any{map[string]any{"name": "ADMIN"}, map[string]any{"name": "GUEST"}},
		},
		"filter": map[string]any{
			"kind":    "INPUT_OBJECT",
			"isOneOf": true,
			"inputFields": []any{
				map[string]any{"name": "byName", "type": map[string]any{"name": "String"}},
				map[string]any{"name": "byRole", "type": map[string]any{"name": "Role"}},
			},
		},
		"scalar": map[string]any{"kind": "SCALAR", "fields": nil, "enumValues": nil},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("__type mismatch (-want +got):\n%s", diff)
	}
}

func TestEnable(t *testing.T) {
	s := enabled(t, testSDL)
	query := s.GetQueryType()
	n := len(query.Fields)

	require.NoError(t, Enable(s))
	assert.Len(t, query.Fields, n, "enabling twice adds nothing")

	sdl := schema.Render(s)
	assert.NotContains(t, sdl, "__")
	_, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)

	empty := schema.NewSchema("")
	assert.EqualError(t, Enable(empty), "introspection: schema has no query type")
}

func TestEnable_AfterDirectives(t *testing.T) {
	s, err := schema.BuildFromSDL(builtin.SDL + `type Query @upperCase { greeting: String }`)
	require.NoError(t, err)
	ds, err := directive.NewSchemaDirectives([]directive.Config{builtin.UpperCase()})
	require.NoError(t, err)
	require.NoError(t, ds.Apply(s))
	require.NoError(t, Enable(s))

	res := executor.NewExecutor(executor.NewResolverRuntime(s), s).Execute(
		context.Background(), `{ greeting __type(name: "Query") { name } }`, "", nil, map[string]any{"greeting": "hi"})
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]any{
		"greeting": "HI",
		"__type":   map[string]any{"name": "Query"},
	}, res.Data)
}
