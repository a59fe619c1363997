package directive_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqldirective/directive"
	"github.com/hanpama/gqldirective/directive/builtin"
	"github.com/hanpama/gqldirective/executor"
	"github.com/hanpama/gqldirective/schema"
)

var vamp = map[string]any{"age": 100, "name": "vamp", "favoriteColor": "green"}

var messages = []string{
	"hello, Clarice",
	"it could grip it by the husk! it's not a question of where it grips it...",
}

func constResolver(v any) schema.Resolver {
	return func(context.Context, any, map[string]any, *schema.ResolveInfo) (any, error) {
		return v, nil
	}
}

type queryCase struct {
	name       string
	query      string
	role       string
	want       any
	wantErrors bool
}

func runCases(t *testing.T, typeDefs string, resolvers schema.ResolverMap, cases []queryCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := schema.BuildFromSDL(builtin.SDL + typeDefs)
			require.NoError(t, err)
			require.NoError(t, s.BindResolvers(resolvers))

			ds, err := directive.NewSchemaDirectives([]directive.Config{builtin.Auth(), builtin.UpperCase()})
			require.NoError(t, err)
			require.NoError(t, ds.Apply(s))

			ctx := context.Background()
			if tc.role != "" {
				ctx = builtin.WithRole(ctx, tc.role)
			}
			res := executor.NewExecutor(executor.NewResolverRuntime(s), s).Execute(ctx, tc.query, "", nil, nil)

			if tc.wantErrors {
				require.NotEmpty(t, res.Errors)
				return
			}
			require.Empty(t, res.Errors)
			if diff := cmp.Diff(map[string]any{"result": tc.want}, res.Data); diff != "" {
				t.Fatalf("Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

const personFields = `fragment PersonFields on Person { age name favoriteColor }`

func TestUpperCase_OnObject(t *testing.T) {
	typeDefs := `
type Query {
  getNoDirective: String!
  getPerson: Person!
  getPeople: [Person!]!
}

type Person @upperCase {
  age: Int!
  name: String!
  favoriteColor: String!
}
`
	people := []map[string]any{vamp, {"age": 100, "name": "witch", "favoriteColor": "red"}}
	resolvers := schema.ResolverMap{"Query": {
		"getNoDirective": constResolver("lowercase"),
		"getPerson":      constResolver(people[0]),
		"getPeople":      constResolver(people),
	}}
	runCases(t, typeDefs, resolvers, []queryCase{
		{
			name:  "all Person String fields of every list item are upper-cased",
			query: personFields + ` query { result: getPeople { ...PersonFields } }`,
			want: []any{
				map[string]any{"age": int32(100), "name": "VAMP", "favoriteColor": "GREEN"},
				map[string]any{"age": int32(100), "name": "WITCH", "favoriteColor": "RED"},
			},
		},
		{
			name:  "Person String fields are upper-cased",
			query: personFields + ` query { result: getPerson { ...PersonFields } }`,
			want:  map[string]any{"age": int32(100), "name": "VAMP", "favoriteColor": "GREEN"},
		},
		{
			name:  "field without directive is untouched",
			query: `{ result: getNoDirective }`,
			want:  "lowercase",
		},
	})
}

func TestUpperCase_OnFieldDefinition(t *testing.T) {
	typeDefs := `
type Query {
  getNoDirective: String!
  getString: String! @upperCase
  getPerson: Person!
}

type Person {
  name: String! @upperCase
  favoriteColor: String!
}
`
	resolvers := schema.ResolverMap{"Query": {
		"getNoDirective": constResolver("lowerCase"),
		"getString":      constResolver("upperCase"),
		"getPerson":      constResolver(vamp),
	}}
	runCases(t, typeDefs, resolvers, []queryCase{
		{
			name:  "only Person.name is upper-cased",
			query: `{ result: getPerson { name favoriteColor } }`,
			want:  map[string]any{"name": "VAMP", "favoriteColor": "green"},
		},
		{
			name:  "root field is upper-cased",
			query: `{ result: getString }`,
			want:  "UPPERCASE",
		},
		{
			name:  "field without directive is untouched",
			query: `{ result: getNoDirective }`,
			want:  "lowerCase",
		},
	})
}

func TestUpperCase_OnCombined(t *testing.T) {
	typeDefs := `
type Query {
  getNoDirective: String!
  getString: String! @upperCase
  getPerson: Person!
}

type Person @upperCase {
  name: String! @upperCase
  favoriteColor: String!
}
`
	resolvers := schema.ResolverMap{"Query": {
		"getNoDirective": constResolver("lowerCase"),
		"getString":      constResolver("upperCase"),
		"getPerson":      constResolver(map[string]any{"name": "vamp", "favoriteColor": "green"}),
	}}
	runCases(t, typeDefs, resolvers, []queryCase{
		{
			name:  "all Person String fields are upper-cased",
			query: `{ result: getPerson { name favoriteColor } }`,
			want:  map[string]any{"name": "VAMP", "favoriteColor": "GREEN"},
		},
		{
			name:  "root field is upper-cased",
			query: `{ result: getString }`,
			want:  "UPPERCASE",
		},
		{
			name:  "field without directive is untouched",
			query: `{ result: getNoDirective }`,
			want:  "lowerCase",
		},
	})
}

var vampResult = map[string]any{"age": int32(100), "name": "vamp", "favoriteColor": "green"}

func TestAuth_OnObject(t *testing.T) {
	typeDefs := `
type Query {
  getNoDirective: String!
  getPerson: Person!
}

type Person @auth {
  age: Int!
  name: String!
  favoriteColor: String!
}
`
	resolvers := schema.ResolverMap{"Query": {
		"getNoDirective": constResolver("some string"),
		"getPerson":      constResolver(vamp),
	}}
	runCases(t, typeDefs, resolvers, []queryCase{
		{
			name:  "ADMIN is authorized by the declared default",
			query: personFields + ` query { result: getPerson { ...PersonFields } }`,
			role:  "ADMIN",
			want:  vampResult,
		},
		{
			name:       "USER is rejected",
			query:      personFields + ` query { result: getPerson { ...PersonFields } }`,
			role:       "USER",
			wantErrors: true,
		},
		{
			name:  "field without directive resolves",
			query: `{ result: getNoDirective }`,
			want:  "some string",
		},
	})
}

func TestAuth_OnFieldDefinition(t *testing.T) {
	typeDefs := `
type Query {
  getNoDirective: String!
  getPerson: Person!
}

type Person {
  age: Int!
  name: String! @auth(require: [ADMIN, SELF])
  favoriteColor: String!
}
`
	resolvers := schema.ResolverMap{"Query": {
		"getNoDirective": constResolver("some string"),
		"getPerson":      constResolver(vamp),
	}}
	runCases(t, typeDefs, resolvers, []queryCase{
		{
			name:  "SELF resolves every field",
			query: personFields + ` query { result: getPerson { ...PersonFields } }`,
			role:  "SELF",
			want:  vampResult,
		},
		{
			name:       "USER is rejected on name",
			query:      `{ result: getPerson { name } }`,
			role:       "USER",
			wantErrors: true,
		},
		{
			name:  "USER resolves the other fields",
			query: `{ result: getPerson { age favoriteColor } }`,
			role:  "USER",
			want:  map[string]any{"age": int32(100), "favoriteColor": "green"},
		},
		{
			name:  "field without directive resolves",
			query: `{ result: getNoDirective }`,
			want:  "some string",
		},
	})
}

func TestAuth_OnCombined(t *testing.T) {
	typeDefs := `
type Query {
  getNoDirective: String!
  getPerson: Person!
  getMessages: [String!]! @auth(require: [SELF])
}

type Person @auth {
  age: Int!
  name: String!
  favoriteColor: String!
}
`
	resolvers := schema.ResolverMap{"Query": {
		"getNoDirective": constResolver("some string"),
		"getPerson":      constResolver(vamp),
		"getMessages":    constResolver(messages),
	}}
	runCases(t, typeDefs, resolvers, []queryCase{
		{
			name:  "ADMIN resolves Person",
			query: personFields + ` query { result: getPerson { ...PersonFields } }`,
			role:  "ADMIN",
			want:  vampResult,
		},
		{
			name:       "USER is rejected on Person",
			query:      personFields + ` query { result: getPerson { ...PersonFields } }`,
			role:       "USER",
			wantErrors: true,
		},
		{
			name:  "SELF resolves messages",
			query: `{ result: getMessages }`,
			role:  "SELF",
			want:  []any{messages[0], messages[1]},
		},
		{
			name:       "ADMIN is rejected on messages",
			query:      `{ result: getMessages }`,
			role:       "ADMIN",
			wantErrors: true,
		},
		{
			name:  "field without directive resolves",
			query: `{ result: getNoDirective }`,
			want:  "some string",
		},
	})
}

func TestAuth_WithConflictingArgs(t *testing.T) {
	typeDefs := `
type Query {
  getNoDirective: String!
  getPerson: Person!
}

type Person @auth(require: [ADMIN, SELF]) {
  age: Int! @auth(require: [SELF])
  name: String!
  favoriteColor: String!
}
`
	resolvers := schema.ResolverMap{"Query": {
		"getNoDirective": constResolver("some string"),
		"getPerson":      constResolver(vamp),
	}}
	runCases(t, typeDefs, resolvers, []queryCase{
		{
			name:  "SELF passes the field level args",
			query: personFields + ` query { result: getPerson { ...PersonFields } }`,
			role:  "SELF",
			want:  vampResult,
		},
		{
			name:       "ADMIN is rejected by the field level args",
			query:      personFields + ` query { result: getPerson { ...PersonFields } }`,
			role:       "ADMIN",
			wantErrors: true,
		},
		{
			name:  "ADMIN resolves fields governed by the object level args",
			query: `{ result: getPerson { name favoriteColor } }`,
			role:  "ADMIN",
			want:  map[string]any{"name": "vamp", "favoriteColor": "green"},
		},
		{
			name:  "field without directive resolves",
			query: `{ result: getNoDirective }`,
			want:  "some string",
		},
	})
}

func TestMultipleDirectives(t *testing.T) {
	typeDefs := `
type Query {
  getNoDirective: String!
  getPerson: Person!
  getMessages: [String!]! @auth(require: [SELF]) @upperCase
}

type Person @auth {
  age: Int!
  name: String! @upperCase
  favoriteColor: String!
}
`
	resolvers := schema.ResolverMap{"Query": {
		"getNoDirective": constResolver("some string"),
		"getPerson":      constResolver(vamp),
		"getMessages":    constResolver(messages),
	}}
	runCases(t, typeDefs, resolvers, []queryCase{
		{
			name:  "ADMIN resolves Person with name upper-cased",
			query: personFields + ` query { result: getPerson { ...PersonFields } }`,
			role:  "ADMIN",
			want:  map[string]any{"age": int32(100), "name": "VAMP", "favoriteColor": "green"},
		},
		{
			name:       "USER is rejected on Person",
			query:      personFields + ` query { result: getPerson { ...PersonFields } }`,
			role:       "USER",
			wantErrors: true,
		},
		{
			name:  "SELF resolves upper-cased messages",
			query: `{ result: getMessages }`,
			role:  "SELF",
			want: []any{
				"HELLO, CLARICE",
				"IT COULD GRIP IT BY THE HUSK! IT'S NOT A QUESTION OF WHERE IT GRIPS IT...",
			},
		},
		{
			name:       "ADMIN is rejected on messages",
			query:      `{ result: getMessages }`,
			role:       "ADMIN",
			wantErrors: true,
		},
		{
			name:  "field without directive resolves",
			query: `{ result: getNoDirective }`,
			want:  "some string",
		},
	})
}

func TestMultipleDirectives_UnauthorizedNeverReachesInnerResolver(t *testing.T) {
	s, err := schema.BuildFromSDL(builtin.SDL + `type Query { secret: String @upperCase @auth(require: [SELF]) }`)
	require.NoError(t, err)

	called := false
	require.NoError(t, s.BindResolvers(schema.ResolverMap{"Query": {
		"secret": func(context.Context, any, map[string]any, *schema.ResolveInfo) (any, error) {
			called = true
			return "psst", nil
		},
	}}))
	ds, err := directive.NewSchemaDirectives(builtin.All())
	require.NoError(t, err)
	require.NoError(t, ds.Apply(s))

	exec := executor.NewExecutor(executor.NewResolverRuntime(s), s)

	res := exec.Execute(builtin.WithRole(context.Background(), "USER"), `{ secret }`, "", nil, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, builtin.ErrNotAuthorized.Error(), res.Errors[0].Message)
	require.Equal(t, executor.Path{"secret"}, res.Errors[0].Path)
	require.False(t, called)

	res = exec.Execute(builtin.WithRole(context.Background(), "SELF"), `{ secret }`, "", nil, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"secret": "PSST"}, res.Data)
	require.True(t, called)
}
