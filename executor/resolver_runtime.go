package executor

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/hanpama/gqldirective/schema"
)

// TypeNamer is implemented by values of abstract types that know their
// concrete GraphQL object type.
type TypeNamer interface {
	TypeName() string
}

// ResolverRuntime is a Runtime that calls the resolvers installed on schema
// fields. Fields without a resolver use schema.DefaultResolver.
type ResolverRuntime struct {
	schema *schema.Schema
	limit  int
}

// RuntimeOption configures a ResolverRuntime.
type RuntimeOption func(*ResolverRuntime)

// WithConcurrency caps the number of async resolvers running at once.
// Zero or a negative value means unbounded.
func WithConcurrency(n int) RuntimeOption {
	return func(r *ResolverRuntime) { r.limit = n }
}

// NewResolverRuntime returns a Runtime backed by the schema's field resolvers.
func NewResolverRuntime(s *schema.Schema, opts ...RuntimeOption) *ResolverRuntime {
	r := &ResolverRuntime{schema: s}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveSync implements Runtime.
func (r *ResolverRuntime) ResolveSync(ctx context.Context, task ResolveTask) (any, error) {
	return r.resolve(ctx, task)
}

// BatchResolveAsync implements Runtime. Tasks run concurrently; each result
// is kept at its task's index and one failure does not cancel the others.
func (r *ResolverRuntime) BatchResolveAsync(ctx context.Context, tasks []ResolveTask) []ResolveResult {
	results := make([]ResolveResult, len(tasks))
	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i, task := range tasks {
		g.Go(func() error {
			v, err := r.resolve(ctx, task)
			results[i] = ResolveResult{Value: v, Error: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *ResolverRuntime) resolve(ctx context.Context, task ResolveTask) (value any, err error) {
	parent := r.schema.Types[task.ObjectType]
	if parent == nil {
		return nil, fmt.Errorf("unknown object type %s", task.ObjectType)
	}
	field := parent.Field(task.Field)
	if field == nil {
		return nil, fmt.Errorf("unknown field %s.%s", task.ObjectType, task.Field)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			value = nil
			err = fmt.Errorf("panic resolving %s.%s: %v", task.ObjectType, task.Field, p)
		}
	}()
	info := &schema.ResolveInfo{
		FieldName:  task.Field,
		ParentType: parent,
		Field:      field,
		ReturnType: field.Type,
		Path:       []any(task.Path),
	}
	return field.Resolver()(ctx, task.Source, task.Args, info)
}

// ResolveType implements Runtime. The concrete type is read from a TypeNamer,
// a "__typename" map entry, or inferred when the abstract type has a single
// possible type.
func (r *ResolverRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	switch v := value.(type) {
	case TypeNamer:
		return v.TypeName(), nil
	case map[string]any:
		if name, ok := v["__typename"].(string); ok {
			return name, nil
		}
	}
	t := r.schema.Types[abstractType]
	if t != nil && t.Kind == schema.TypeKindUnion && len(t.PossibleTypes) == 1 {
		return t.PossibleTypes[0], nil
	}
	return "", fmt.Errorf("cannot resolve concrete type of %s from %T", abstractType, value)
}

// SerializeLeafValue implements Runtime for the built-in scalars and enums.
// Custom scalars are returned unchanged.
func (r *ResolverRuntime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	switch scalarOrEnumTypeName {
	case "Int":
		return serializeInt(value)
	case "Float":
		return serializeFloat(value)
	case "String", "ID":
		return serializeString(scalarOrEnumTypeName, value)
	case "Boolean":
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("Boolean cannot represent %v (%T)", value, value)
	}
	t := r.schema.Types[scalarOrEnumTypeName]
	if t == nil || t.Kind != schema.TypeKindEnum {
		return value, nil
	}
	name, err := serializeString(t.Name, value)
	if err != nil {
		return nil, err
	}
	for _, ev := range t.EnumValues {
		if ev.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("enum %s cannot represent value %q", t.Name, name)
}

func serializeInt(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", n)
		}
		return int32(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", n)
		}
		return int32(n), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", f)
		}
		return int32(f), nil
	}
	return nil, fmt.Errorf("Int cannot represent %v (%T)", value, value)
}

func serializeFloat(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("Float cannot represent %v (%T)", value, value)
}

func serializeString(typeName string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if typeName == "ID" || typeName == "String" {
			return fmt.Sprint(rv.Int()), nil
		}
	case reflect.Bool:
		if typeName == "String" {
			return fmt.Sprint(rv.Bool()), nil
		}
	}
	return "", fmt.Errorf("%s cannot represent %v (%T)", typeName, value, value)
}
