package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hanpama/gqldirective/schema"
)

func TestErrors_AsyncNonNull_NullsNearestNullableAncestor(t *testing.T) {
	leaf := newObjectType("Leaf", schema.NewField("v", "", schema.NonNullType(schema.NamedType("String"))).SetAsync(true))
	mid := newObjectType("Mid",
		schema.NewField("leaf", "", schema.NonNullType(schema.NamedType("Leaf"))),
		stringField("ok"),
	)
	sch := newSchemaWithQueryType(newObjectType("Query",
		schema.NewField("outer", "", schema.NamedType("Mid")),
		stringField("other"),
	), mid, leaf)
	rt := newStubRuntime(map[string]stubField{
		"Query.outer": value(map[string]any{}),
		"Query.other": value("still here"),
		"Mid.leaf":    value(map[string]any{}),
		"Mid.ok":      value("ok"),
		"Leaf.v":      failure(errors.New("leaf failed")),
	})

	got := NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ outer { ok leaf { v } } other }"), "", nil, nil)

	want := &ExecutionResult{
		Data:   map[string]any{"outer": nil, "other": "still here"},
		Errors: []GraphQLError{{Message: "leaf failed", Path: Path{"outer", "leaf", "v"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestErrors_NonNullRoot_NullsData(t *testing.T) {
	sch := newSchemaWithQueryType(newObjectType("Query",
		schema.NewField("must", "", schema.NonNullType(schema.NamedType("String"))).SetAsync(true),
		stringField("other"),
	))
	rt := newStubRuntime(map[string]stubField{
		"Query.must":  failure(errors.New("gone")),
		"Query.other": value("x"),
	})

	got := NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ other must }"), "", nil, nil)

	assert.Nil(t, got.Data)
	assert.Equal(t, []GraphQLError{{Message: "gone", Path: Path{"must"}}}, got.Errors)
}

func TestErrors_SyncNull_PrunesQueuedSiblings(t *testing.T) {
	obj := newObjectType("Obj",
		stringField("later").SetAsync(true),
		schema.NewField("must", "", schema.NonNullType(schema.NamedType("String"))),
	)
	sch := newSchemaWithQueryType(newObjectType("Query", schema.NewField("obj", "", schema.NamedType("Obj"))), obj)
	rt := newStubRuntime(map[string]stubField{
		"Query.obj": value(map[string]any{}),
		"Obj.later": value("never"),
	})

	got := NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ obj { later must } }"), "", nil, nil)

	assert.Equal(t, map[string]any{"obj": nil}, got.Data)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, Path{"obj", "must"}, got.Errors[0].Path)
	for _, c := range rt.recorded() {
		assert.NotEqual(t, "later", c.Field, "fields under a nulled object are not resolved")
	}
}

func TestErrors_NullableListItem(t *testing.T) {
	item := newObjectType("Item", schema.NewField("name", "", schema.NonNullType(schema.NamedType("String"))).SetAsync(true))
	sch := newSchemaWithQueryType(newObjectType("Query",
		schema.NewField("items", "", schema.ListType(schema.NamedType("Item"))),
	), item)
	rt := newStubRuntime(map[string]stubField{
		"Query.items": value([]any{map[string]any{"n": "a"}, map[string]any{}}),
		"Item.name": func(source any) (any, error) {
			if n, ok := source.(map[string]any)["n"]; ok {
				return n, nil
			}
			return nil, nil
		},
	})

	got := NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ items { name } }"), "", nil, nil)

	want := &ExecutionResult{
		Data: map[string]any{"items": []any{map[string]any{"name": "a"}, nil}},
		Errors: []GraphQLError{{
			Message: "Cannot return null for non-nullable field items[1].name",
			Path:    Path{"items", 1, "name"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestArguments_UnsetVariableUsesDefault(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { greet(name: String = "world"): String }`)
	rt := newStubRuntime(nil)
	doc := mustParseQuery(t, `query Q($who: String) { greet(name: $who) }`)

	NewExecutor(rt, sch).ExecuteRequest(context.Background(), doc, "", nil, nil)
	NewExecutor(rt, sch).ExecuteRequest(context.Background(), doc, "", map[string]any{"who": "gopher"}, nil)

	calls := rt.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, map[string]any{"name": "world"}, calls[0].Args)
	assert.Equal(t, map[string]any{"name": "gopher"}, calls[1].Args)
}

func TestExecute_ValidationErrorsHaveLocations(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`)
	res := NewExecutor(newStubRuntime(nil), sch).Execute(context.Background(), "{\n  a\n  b\n  c\n}", "", nil, nil)

	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, []Location{{Line: 3, Column: 3}}, res.Errors[0].Locations)
	assert.Equal(t, []Location{{Line: 4, Column: 3}}, res.Errors[1].Locations)
	assert.Len(t, multierr.Errors(res.Err()), 2)
}

func TestExecutionResult_Err(t *testing.T) {
	assert.NoError(t, (&ExecutionResult{Data: map[string]any{}}).Err())

	res := &ExecutionResult{Errors: []GraphQLError{{Message: "one"}, {Message: "two"}}}
	err := res.Err()
	require.Error(t, err)
	assert.Equal(t, []error{GraphQLError{Message: "one"}, GraphQLError{Message: "two"}}, multierr.Errors(err))
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sch := newSchemaWithQueryType(newObjectType("Query", stringField("a")))
	rt := newStubRuntime(map[string]stubField{"Query.a": failure(errors.New("nope"))})

	NewExecutor(rt, sch, WithLogger(zap.New(core))).ExecuteRequest(context.Background(), mustParseQuery(t, "{ a }"), "", nil, nil)

	entries := logs.FilterMessage("field error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ContextMap()["path"])
	assert.Equal(t, "nope", entries[0].ContextMap()["error"])
}
