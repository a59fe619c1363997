package schema

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Resolver produces the runtime value of a single field.
//
// source is the parent value (the root value for root fields), args holds the
// coerced field arguments and info describes the field being resolved.
type Resolver func(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error)

// ResolveInfo describes the field a Resolver is invoked for.
type ResolveInfo struct {
	FieldName  string
	ParentType *Type
	Field      *Field
	ReturnType *TypeRef
	Path       []any
}

// ResolverMap maps type name -> field name -> resolver.
type ResolverMap map[string]map[string]Resolver

// BindResolvers installs resolvers on object fields. Bound fields are marked
// async: they are treated as remote work and batched by the executor, while
// fields left on DefaultResolver are resolved inline.
func (s *Schema) BindResolvers(resolvers ResolverMap) error {
	for typeName, fields := range resolvers {
		t := s.Types[typeName]
		if t == nil {
			return fmt.Errorf("bind resolvers: unknown type %q", typeName)
		}
		if t.Kind != TypeKindObject {
			return fmt.Errorf("bind resolvers: type %q is %s, not OBJECT", typeName, t.Kind)
		}
		for fieldName, r := range fields {
			f := t.Field(fieldName)
			if f == nil {
				return fmt.Errorf("bind resolvers: unknown field %s.%s", typeName, fieldName)
			}
			f.SetResolver(r).SetAsync(true)
		}
	}
	return nil
}

// DefaultResolver projects the field out of the source value. It looks up, in
// order: a map entry keyed by the field name, a struct field whose json tag or
// name matches, and an exported method with no arguments.
func DefaultResolver(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
	if source == nil {
		return nil, nil
	}
	name := info.FieldName
	if m, ok := source.(map[string]any); ok {
		return m[name], nil
	}

	rv := reflect.ValueOf(source)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, nil
	}
	if v, ok, err := resolveMethod(rv, name); ok || err != nil {
		return v, err
	}
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, nil
		}
		return v.Interface(), nil
	case reflect.Struct:
		if f, ok := structField(rv, name); ok {
			return f.Interface(), nil
		}
		if v, ok, err := resolveMethod(rv, name); ok || err != nil {
			return v, err
		}
	}
	return nil, nil
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag := strings.Split(sf.Tag.Get("json"), ",")[0]; tag != "" {
			if tag == name {
				return rv.Field(i), true
			}
			continue
		}
		if strings.EqualFold(sf.Name, name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func resolveMethod(rv reflect.Value, name string) (any, bool, error) {
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if !strings.EqualFold(m.Name, name) {
			continue
		}
		mt := m.Type
		// receiver counts as the first input
		if mt.NumIn() != 1 || mt.NumOut() == 0 || mt.NumOut() > 2 {
			return nil, false, nil
		}
		out := rv.Method(i).Call(nil)
		if len(out) == 2 {
			if !mt.Out(1).Implements(errorType) {
				return nil, false, nil
			}
			if err, _ := out[1].Interface().(error); err != nil {
				return nil, true, err
			}
		}
		return out[0].Interface(), true, nil
	}
	return nil, false, nil
}
