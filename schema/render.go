package schema

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/hanpama/gqldirective/language"
)

// Render prints s as SDL, directive uses included. Directive declarations
// come first, sorted by name, then the types in definition order. Built-in
// and introspection definitions are left out.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	w := &sdlWriter{}

	for _, name := range slices.Sorted(maps.Keys(s.Directives)) {
		if d := s.Directives[name]; !isBuiltinDirective(d) {
			w.directive(d)
		}
	}
	w.schemaDefinition(s)

	for _, t := range s.OrderedTypes() {
		if isBuiltinType(t) || isMetaName(t.Name) {
			continue
		}
		w.typeDefinition(t)
	}
	return strings.TrimRight(w.String(), "\n") + "\n"
}

// ToAST returns the validated gqlparser form of s, used to validate queries.
// Schemas built from SDL reuse the parsed document; others are rendered and
// loaded again.
func ToAST(s *Schema) (*language.SchemaAST, error) {
	if s.ast != nil {
		return s.ast, nil
	}
	ast, err := language.LoadSchema(&language.Source{Name: "schema.graphql", Input: Render(s)})
	if err != nil {
		return nil, fmt.Errorf("load rendered schema: %w", err)
	}
	s.ast = ast
	return ast, nil
}

type sdlWriter struct {
	strings.Builder
}

func (w *sdlWriter) printf(format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// description writes desc as a quoted string on its own line.
func (w *sdlWriter) description(indent, desc string) {
	if desc != "" {
		w.printf("%s%s\n", indent, strconv.Quote(desc))
	}
}

func (w *sdlWriter) schemaDefinition(s *Schema) {
	roots := []struct{ op, name, conventional string }{
		{"query", s.QueryType, "Query"},
		{"mutation", s.MutationType, "Mutation"},
		{"subscription", s.SubscriptionType, "Subscription"},
	}
	custom := slices.ContainsFunc(roots, func(r struct{ op, name, conventional string }) bool {
		return r.name != "" && r.name != r.conventional
	})
	if !custom {
		return
	}
	w.WriteString("schema {\n")
	for _, r := range roots {
		if r.name != "" {
			w.printf("  %s: %s\n", r.op, r.name)
		}
	}
	w.WriteString("}\n\n")
}

func (w *sdlWriter) typeDefinition(t *Type) {
	w.description("", t.Description)
	switch t.Kind {
	case TypeKindScalar:
		w.printf("scalar %s", t.Name)
		if t.SpecifiedByURL != nil {
			w.printf(" @specifiedBy(url: %s)", strconv.Quote(*t.SpecifiedByURL))
		}
		w.WriteString("\n\n")

	case TypeKindUnion:
		w.printf("union %s", t.Name)
		w.uses(t.Directives)
		w.printf(" = %s\n\n", strings.Join(t.PossibleTypes, " | "))

	case TypeKindEnum:
		w.printf("enum %s", t.Name)
		w.uses(t.Directives)
		w.WriteString(" {\n")
		for _, v := range t.EnumValues {
			w.description("  ", v.Description)
			w.printf("  %s", v.Name)
			w.deprecation(v.IsDeprecated, v.DeprecationReason)
			w.WriteString("\n")
		}
		w.WriteString("}\n\n")

	case TypeKindInputObject:
		w.printf("input %s", t.Name)
		if t.OneOf {
			w.WriteString(" @oneOf")
		}
		w.WriteString(" {\n")
		for _, f := range t.InputFields {
			w.description("  ", f.Description)
			w.WriteString("  ")
			w.inputValue(f)
			w.deprecation(f.IsDeprecated, f.DeprecationReason)
			w.WriteString("\n")
		}
		w.WriteString("}\n\n")

	case TypeKindObject, TypeKindInterface:
		keyword := "type"
		if t.Kind == TypeKindInterface {
			keyword = "interface"
		}
		w.printf("%s %s", keyword, t.Name)
		if len(t.Interfaces) > 0 {
			w.printf(" implements %s", strings.Join(t.Interfaces, " & "))
		}
		w.uses(t.Directives)
		w.WriteString(" {\n")
		for _, f := range t.Fields {
			if !isMetaName(f.Name) {
				w.field(f)
			}
		}
		w.WriteString("}\n\n")
	}
}

func (w *sdlWriter) field(f *Field) {
	w.description("  ", f.Description)
	w.printf("  %s", f.Name)
	w.arguments(f.Arguments)
	w.printf(": %s", f.Type)
	w.deprecation(f.IsDeprecated, f.DeprecationReason)
	w.uses(f.Directives)
	w.WriteString("\n")
}

func (w *sdlWriter) directive(d *Directive) {
	w.description("", d.Description)
	w.printf("directive @%s", d.Name)
	w.arguments(d.Arguments)
	if d.IsRepeatable {
		w.WriteString(" repeatable")
	}
	w.printf(" on %s\n\n", strings.Join(d.Locations, " | "))
}

func (w *sdlWriter) arguments(args []*InputValue) {
	if len(args) == 0 {
		return
	}
	w.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			w.WriteString(", ")
		}
		w.inputValue(arg)
	}
	w.WriteString(")")
}

// inputValue prefers the default as written in SDL over the Go value.
func (w *sdlWriter) inputValue(in *InputValue) {
	w.printf("%s: %s", in.Name, in.Type)
	if in.DefaultLiteral != "" {
		w.printf(" = %s", in.DefaultLiteral)
	} else if in.DefaultValue != nil {
		w.printf(" = %s", literal(in.DefaultValue))
	}
}

func (w *sdlWriter) deprecation(deprecated bool, reason string) {
	switch {
	case !deprecated:
	case reason == "":
		w.WriteString(" @deprecated")
	default:
		w.printf(" @deprecated(reason: %s)", strconv.Quote(reason))
	}
}

// uses writes directive uses. @deprecated is skipped since it is rendered
// from the deprecation fields. Uses parsed from SDL keep their source
// arguments; uses added in Go print their argument map.
func (w *sdlWriter) uses(uses []*DirectiveUse) {
	for _, use := range uses {
		if use.Name == "deprecated" {
			continue
		}
		w.printf(" @%s", use.Name)
		switch {
		case len(use.Arguments) > 0:
			parts := make([]string, len(use.Arguments))
			for i, arg := range use.Arguments {
				parts[i] = arg.Name + ": " + sourceLiteral(arg.Value)
			}
			w.printf("(%s)", strings.Join(parts, ", "))
		case use.Position == nil && len(use.Args) > 0:
			w.printf("(%s)", objectFields(use.Args))
		}
	}
}

// sourceLiteral prints a parsed argument value. List items and object fields
// are separated the same way literal separates them.
func sourceLiteral(v *language.Value) string {
	if v == nil {
		return "null"
	}
	switch v.Kind {
	case language.Variable:
		return "$" + v.Raw
	case language.StringValue, language.BlockValue:
		return strconv.Quote(v.Raw)
	case language.NullValue:
		return "null"
	case language.ListValue:
		parts := make([]string, len(v.Children))
		for i, c := range v.Children {
			parts[i] = sourceLiteral(c.Value)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case language.ObjectValue:
		parts := make([]string, len(v.Children))
		for i, c := range v.Children {
			parts[i] = c.Name + ": " + sourceLiteral(c.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return v.Raw
}

// literal renders a Go value as a GraphQL literal. Strings are always
// quoted, so enum defaults set in Go render as strings.
func literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = literal(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		return "{" + objectFields(v) + "}"
	}
	return fmt.Sprint(value)
}

// objectFields renders m as "k: v" pairs sorted by key.
func objectFields(m map[string]any) string {
	keys := slices.Sorted(maps.Keys(m))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + literal(m[k])
	}
	return strings.Join(parts, ", ")
}
