package introspection

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/hanpama/gqldirective/schema"
)

type introspector struct {
	schema *schema.Schema
}

func (in *introspector) schemaRoot(context.Context, any, map[string]any, *schema.ResolveInfo) (any, error) {
	return in.schema, nil
}

func (in *introspector) typeRoot(_ context.Context, _ any, args map[string]any, _ *schema.ResolveInfo) (any, error) {
	name, _ := args["name"].(string)
	if t := in.schema.Types[name]; t != nil {
		return t, nil
	}
	return nil, nil
}

func (in *introspector) resolveSchema(_ context.Context, source any, _ map[string]any, info *schema.ResolveInfo) (any, error) {
	s, ok := source.(*schema.Schema)
	if !ok {
		return nil, unexpectedSource(info, source)
	}
	switch info.FieldName {
	case "description":
		return optional(s.Description), nil
	case "types":
		return s.OrderedTypes(), nil
	case "queryType":
		return s.GetQueryType(), nil
	case "mutationType":
		return s.GetMutationType(), nil
	case "subscriptionType":
		return s.GetSubscriptionType(), nil
	case "directives":
		dirs := make([]*schema.Directive, 0, len(s.Directives))
		for _, d := range s.Directives {
			dirs = append(dirs, d)
		}
		sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
		return dirs, nil
	}
	return nil, unknownField(info)
}

// resolveType serves __Type for named types (*schema.Type) and for type
// references, whose LIST and NON_NULL wrappers only expose kind and ofType.
func (in *introspector) resolveType(_ context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
	var t *schema.Type
	switch v := source.(type) {
	case *schema.Type:
		t = v
	case *schema.TypeRef:
		if v.Kind != schema.TypeRefKindNamed {
			switch info.FieldName {
			case "kind":
				return string(v.Kind), nil
			case "ofType":
				return v.OfType, nil
			}
			return nil, nil
		}
		t = in.schema.Types[v.Named]
		if t == nil {
			return nil, fmt.Errorf("unknown type %s", v.Named)
		}
	default:
		return nil, unexpectedSource(info, source)
	}

	includeDeprecated, _ := args["includeDeprecated"].(bool)
	switch info.FieldName {
	case "kind":
		return string(t.Kind), nil
	case "name":
		return t.Name, nil
	case "description":
		return optional(t.Description), nil
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return nil, nil
		}
		return *t.SpecifiedByURL, nil
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, nil
		}
		fields := visible(t.Fields, includeDeprecated, func(f *schema.Field) bool { return f.IsDeprecated })
		return slices.DeleteFunc(fields, func(f *schema.Field) bool { return isMeta(f.Name) }), nil
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, nil
		}
		return in.lookup(t.Interfaces), nil
	case "possibleTypes":
		switch t.Kind {
		case schema.TypeKindUnion:
			return in.lookup(t.PossibleTypes), nil
		case schema.TypeKindInterface:
			return in.implementations(t.Name), nil
		}
		return nil, nil
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, nil
		}
		return visible(t.EnumValues, includeDeprecated, func(ev *schema.EnumValue) bool { return ev.IsDeprecated }), nil
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return visible(t.InputFields, includeDeprecated, func(iv *schema.InputValue) bool { return iv.IsDeprecated }), nil
	case "ofType":
		return nil, nil
	case "isOneOf":
		return t.OneOf, nil
	}
	return nil, unknownField(info)
}

func (in *introspector) lookup(names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if t := in.schema.Types[name]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (in *introspector) implementations(iface string) []*schema.Type {
	out := []*schema.Type{}
	for _, t := range in.schema.OrderedTypes() {
		if t.Kind == schema.TypeKindObject && slices.Contains(t.Interfaces, iface) {
			out = append(out, t)
		}
	}
	return out
}

func resolveField(_ context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
	f, ok := source.(*schema.Field)
	if !ok {
		return nil, unexpectedSource(info, source)
	}
	switch info.FieldName {
	case "name":
		return f.Name, nil
	case "description":
		return optional(f.Description), nil
	case "args":
		includeDeprecated, _ := args["includeDeprecated"].(bool)
		return visible(f.Arguments, includeDeprecated, func(iv *schema.InputValue) bool { return iv.IsDeprecated }), nil
	case "type":
		return f.Type, nil
	case "isDeprecated":
		return f.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), nil
	}
	return nil, unknownField(info)
}

func resolveInputValue(_ context.Context, source any, _ map[string]any, info *schema.ResolveInfo) (any, error) {
	iv, ok := source.(*schema.InputValue)
	if !ok {
		return nil, unexpectedSource(info, source)
	}
	switch info.FieldName {
	case "name":
		return iv.Name, nil
	case "description":
		return optional(iv.Description), nil
	case "type":
		return iv.Type, nil
	case "defaultValue":
		switch {
		case iv.DefaultLiteral != "":
			return iv.DefaultLiteral, nil
		case iv.DefaultValue != nil:
			if str, ok := iv.DefaultValue.(string); ok {
				return strconv.Quote(str), nil
			}
			return fmt.Sprintf("%v", iv.DefaultValue), nil
		}
		return nil, nil
	case "isDeprecated":
		return iv.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(iv.IsDeprecated, iv.DeprecationReason), nil
	}
	return nil, unknownField(info)
}

func resolveEnumValue(_ context.Context, source any, _ map[string]any, info *schema.ResolveInfo) (any, error) {
	ev, ok := source.(*schema.EnumValue)
	if !ok {
		return nil, unexpectedSource(info, source)
	}
	switch info.FieldName {
	case "name":
		return ev.Name, nil
	case "description":
		return optional(ev.Description), nil
	case "isDeprecated":
		return ev.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(ev.IsDeprecated, ev.DeprecationReason), nil
	}
	return nil, unknownField(info)
}

func resolveDirective(_ context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
	d, ok := source.(*schema.Directive)
	if !ok {
		return nil, unexpectedSource(info, source)
	}
	switch info.FieldName {
	case "name":
		return d.Name, nil
	case "description":
		return optional(d.Description), nil
	case "isRepeatable":
		return d.IsRepeatable, nil
	case "locations":
		return slices.Clone(d.Locations), nil
	case "args":
		includeDeprecated, _ := args["includeDeprecated"].(bool)
		return visible(d.Arguments, includeDeprecated, func(iv *schema.InputValue) bool { return iv.IsDeprecated }), nil
	}
	return nil, unknownField(info)
}

// visible drops hidden items. The result is never nil so non-null lists stay
// non-null.
func visible[T any](items []T, includeDeprecated bool, hidden func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !includeDeprecated && hidden(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func isMeta(name string) bool { return len(name) > 1 && name[:2] == "__" }

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

func unknownField(info *schema.ResolveInfo) error {
	return fmt.Errorf("introspection: unknown field %s", info.FieldName)
}

func unexpectedSource(info *schema.ResolveInfo, source any) error {
	return fmt.Errorf("introspection: cannot resolve %s on %T", info.FieldName, source)
}
