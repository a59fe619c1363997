package executor

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/hanpama/gqldirective/language"
	"github.com/hanpama/gqldirective/schema"
)

// coerceVariableValues checks the provided variables against the operation's
// definitions, filling in defaults. Names may be given with or without "$".
func coerceVariableValues(s *schema.Schema, op *language.OperationDefinition, provided map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		name := def.Variable
		value, ok := lookupVariable(provided, name)
		if !ok {
			switch {
			case def.DefaultValue != nil:
				value = valueFromAST(def.DefaultValue, nil)
			case def.Type.NonNull:
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, def.Type)
			default:
				continue
			}
		}
		if value == nil && def.Type.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, def.Type)
		}
		cv, err := coerceValue(s, value, typeRefFromAST(def.Type))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %w", name, def.Type, err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

func lookupVariable(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	v, ok := vars[strings.TrimPrefix(name, "$")]
	return v, ok
}

// argumentValues coerces the arguments given to a field, applying declared
// defaults. Problems are recorded as errors at path and the argument is left
// out.
func (ex *execution) argumentValues(def *schema.Field, given language.ArgumentList, path Path) map[string]any {
	args := make(map[string]any, len(def.Arguments))
	for _, argDef := range def.Arguments {
		var (
			value any
			label = "argument"
		)
		if arg := given.ForName(argDef.Name); arg != nil && !ex.unsetVariable(arg.Value) {
			value = valueFromAST(arg.Value, ex.variables)
		} else if argDef.DefaultValue != nil {
			value = argDef.DefaultValue
			label = "default value of argument"
		} else {
			if schema.IsNonNull(argDef.Type) {
				ex.addError(fmt.Sprintf("argument '%s' of required type was not provided", argDef.Name), path)
			}
			continue
		}
		cv, err := coerceValue(ex.schema, value, argDef.Type)
		if err != nil {
			ex.addError(fmt.Sprintf("%s '%s' cannot be coerced: %v", label, argDef.Name, err), path)
			continue
		}
		args[argDef.Name] = cv
	}
	return args
}

// unsetVariable reports whether v is a variable the request left out, in
// which case the argument falls back to its default.
func (ex *execution) unsetVariable(v *language.Value) bool {
	if v == nil || v.Kind != language.Variable {
		return false
	}
	_, ok := lookupVariable(ex.variables, v.Raw)
	return !ok
}

// valueFromAST converts a literal to a Go value, substituting variables.
func valueFromAST(value *language.Value, vars map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		v, _ := lookupVariable(vars, value.Raw)
		return v
	case language.IntValue:
		i, _ := strconv.Atoi(value.Raw)
		return i
	case language.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(c.Value, vars)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			out[c.Name] = valueFromAST(c.Value, vars)
		}
		return out
	}
	return nil
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		return schema.NonNullType(ref)
	}
	return ref
}

var builtinScalars = map[string]func(any) (any, error){
	"Int":     coerceInt,
	"Float":   coerceFloat,
	"String":  coerceString,
	"Boolean": coerceBoolean,
	"ID":      coerceID,
}

// coerceValue coerces an input value to typ. Custom scalars pass through.
func coerceValue(s *schema.Schema, value any, typ *schema.TypeRef) (any, error) {
	if schema.IsNonNull(typ) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(s, value, schema.Unwrap(typ))
	}
	if value == nil {
		return nil, nil
	}
	if schema.IsList(typ) {
		return coerceList(s, value, schema.Unwrap(typ))
	}

	name := schema.GetNamedType(typ)
	if coerce, ok := builtinScalars[name]; ok {
		return coerce(value)
	}
	t := s.Types[name]
	if t == nil {
		return nil, fmt.Errorf("unknown input type %s", name)
	}
	switch t.Kind {
	case schema.TypeKindEnum:
		return coerceEnum(t, value)
	case schema.TypeKindInputObject:
		return coerceInputObject(s, t, value)
	}
	return value, nil
}

// coerceList coerces every item of a list. A single value becomes a list of
// one.
func coerceList(s *schema.Schema, value any, itemType *schema.TypeRef) (any, error) {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	out := make([]any, len(items))
	for i, item := range items {
		cv, err := coerceValue(s, item, itemType)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

func coerceEnum(t *schema.Type, value any) (any, error) {
	name, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("enum %s expects a name, got %v (%T)", t.Name, value, value)
	}
	for _, ev := range t.EnumValues {
		if ev.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("value %q does not exist in enum %s", name, t.Name)
}

func coerceInputObject(s *schema.Schema, t *schema.Type, value any) (any, error) {
	in, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("input object %s expects an object, got %T", t.Name, value)
	}
	declared := make(map[string]*schema.InputValue, len(t.InputFields))
	for _, f := range t.InputFields {
		declared[f.Name] = f
	}
	for name := range in {
		if declared[name] == nil {
			return nil, fmt.Errorf("field %q is not defined by input object %s", name, t.Name)
		}
	}

	out := make(map[string]any, len(t.InputFields))
	for _, f := range t.InputFields {
		v, ok := in[f.Name]
		if !ok {
			if f.DefaultValue == nil {
				if schema.IsNonNull(f.Type) {
					return nil, fmt.Errorf("field %s.%s of required type was not provided", t.Name, f.Name)
				}
				continue
			}
			v = f.DefaultValue
		}
		cv, err := coerceValue(s, v, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name, f.Name, err)
		}
		out[f.Name] = cv
	}
	if t.OneOf && len(out) != 1 {
		return nil, fmt.Errorf("oneOf input object %s requires exactly one field", t.Name)
	}
	return out, nil
}

func coerceInt(value any) (any, error) {
	var n float64
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		n = rv.Float()
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("cannot coerce non-integer %v to Int", value)
		}
	default:
		return nil, fmt.Errorf("cannot coerce %v (%T) to Int", value, value)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%v overflows Int", value)
	}
	return int(n), nil
}

func coerceFloat(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Float", value, value)
}

func coerceString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to String", value, value)
}

func coerceBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Boolean", value, value)
}

func coerceID(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return fmt.Sprintf("%v", value), nil
}
