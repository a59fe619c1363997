package schema

import (
	"fmt"
	"sort"

	language "github.com/hanpama/gqldirective/language"
)

// NewSchema returns a schema holding the built-in scalars and directives.
func NewSchema(description string) *Schema {
	s := &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
	for _, t := range builtinScalars {
		s.AddType(t)
	}
	for _, d := range builtinDirectives {
		s.AddDirective(d)
	}
	return s
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType registers t, replacing any type with the same name.
func (s *Schema) AddType(t *Type) *Schema {
	if s.Types == nil {
		s.Types = make(map[string]*Type)
	}
	if _, exists := s.Types[t.Name]; !exists {
		s.typeOrder = append(s.typeOrder, t.Name)
	}
	s.Types[t.Name] = t
	s.ast = nil
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	if s.Directives == nil {
		s.Directives = make(map[string]*Directive)
	}
	s.Directives[d.Name] = d
	s.ast = nil
	return s
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type           { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type    { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type { t.PossibleTypes = append(t.PossibleTypes, name); return t }
func (t *Type) AddEnumValue(v *EnumValue) *Type   { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type         { t.OneOf = oneOf; return t }
func (t *Type) AddDirectiveUse(u *DirectiveUse) *Type {
	t.Directives = append(t.Directives, u)
	return t
}

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) SetAsync(async bool) *Field         { f.Async = async; return f }
func (f *Field) SetResolver(r Resolver) *Field      { f.Resolve = r; return f }
func (f *Field) AddArgument(in *InputValue) *Field  { f.Arguments = append(f.Arguments, in); return f }
func (f *Field) AddDirectiveUse(u *DirectiveUse) *Field {
	f.Directives = append(f.Directives, u)
	return f
}
func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (e *EnumValue) Deprecate(reason string) *EnumValue {
	e.IsDeprecated = true
	e.DeprecationReason = reason
	return e
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (in *InputValue) SetDefault(v any) *InputValue { in.DefaultValue = v; return in }
func (in *InputValue) Deprecate(reason string) *InputValue {
	in.IsDeprecated = true
	in.DeprecationReason = reason
	return in
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive      { d.IsRepeatable = r; return d }
func (d *Directive) AddArgument(in *InputValue) *Directive { d.Arguments = append(d.Arguments, in); return d }

// BuildFromSDL parses and validates SDL and returns the corresponding Schema.
// Directive uses on types and fields are kept with their arguments resolved.
func BuildFromSDL(sdl string) (*Schema, error) {
	return BuildFromSources(&language.Source{Name: "schema.graphql", Input: sdl})
}

// BuildFromSources is BuildFromSDL for several documents; extensions are merged
// into their base definitions.
func BuildFromSources(sources ...*language.Source) (*Schema, error) {
	doc, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return BuildFromAST(doc, sources...)
}

// BuildFromAST converts a validated gqlparser schema. sources fixes the type
// order: definitions are ordered by source then by offset.
func BuildFromAST(doc *language.SchemaAST, sources ...*language.Source) (*Schema, error) {
	s := NewSchema(doc.Description)
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}

	for _, def := range orderedDefinitions(doc, sources) {
		t, err := buildType(def)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}

	names := make([]string, 0, len(doc.Directives))
	for name, dir := range doc.Directives {
		if isBuiltinPosition(dir.Position) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d, err := buildDirective(doc.Directives[name])
		if err != nil {
			return nil, err
		}
		s.AddDirective(d)
	}
	s.ast = doc
	return s, nil
}

func orderedDefinitions(doc *language.SchemaAST, sources []*language.Source) []*language.Definition {
	srcIndex := make(map[*language.Source]int, len(sources))
	for i, src := range sources {
		srcIndex[src] = i
	}
	defs := make([]*language.Definition, 0, len(doc.Types))
	for _, def := range doc.Types {
		if def.BuiltIn || isBuiltinPosition(def.Position) {
			continue
		}
		defs = append(defs, def)
	}
	sort.SliceStable(defs, func(i, j int) bool {
		pi, pj := defs[i].Position, defs[j].Position
		if pi == nil || pj == nil {
			return defs[i].Name < defs[j].Name
		}
		si, oki := srcIndex[pi.Src]
		sj, okj := srcIndex[pj.Src]
		if oki != okj {
			return oki
		}
		if si != sj {
			return si < sj
		}
		if pi.Start != pj.Start {
			return pi.Start < pj.Start
		}
		return defs[i].Name < defs[j].Name
	})
	return defs
}

func isBuiltinPosition(pos *language.Position) bool {
	return pos != nil && pos.Src != nil && pos.Src.BuiltIn
}

func buildType(def *language.Definition) (*Type, error) {
	t := NewType(def.Name, typeKindOf(def.Kind), def.Description)
	switch def.Kind {
	case language.Object, language.Interface:
		for _, name := range def.Interfaces {
			t.AddInterface(name)
		}
		for _, fd := range def.Fields {
			if len(fd.Name) > 1 && fd.Name[:2] == "__" {
				continue
			}
			f, err := buildField(fd)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", def.Name, fd.Name, err)
			}
			t.AddField(f)
		}
	case language.Union:
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
	case language.Enum:
		for _, v := range def.EnumValues {
			ev := NewEnumValue(v.Name, v.Description)
			if reason, ok := deprecation(v.Directives); ok {
				ev.Deprecate(reason)
			}
			t.AddEnumValue(ev)
		}
	case language.InputObject:
		for _, fd := range def.Fields {
			in, err := buildInputValue(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives)
			if err != nil {
				return nil, fmt.Errorf("input field %s.%s: %w", def.Name, fd.Name, err)
			}
			t.AddInputField(in)
		}
		t.SetOneOf(def.Directives.ForName("oneOf") != nil)
	case language.Scalar:
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if url, ok := directiveArgs(d)["url"].(string); ok {
				t.SpecifiedByURL = &url
			}
		}
	}
	for _, d := range def.Directives {
		t.AddDirectiveUse(newDirectiveUse(d))
	}
	return t, nil
}

func buildField(fd *language.FieldDefinition) (*Field, error) {
	f := NewField(fd.Name, fd.Description, buildTypeRef(fd.Type))
	if reason, ok := deprecation(fd.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range fd.Arguments {
		in, err := buildInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", arg.Name, err)
		}
		f.AddArgument(in)
	}
	for _, d := range fd.Directives {
		f.AddDirectiveUse(newDirectiveUse(d))
	}
	return f, nil
}

func buildInputValue(name, description string, typ *language.Type, def *language.Value, dirs language.DirectiveList) (*InputValue, error) {
	in := NewInputValue(name, description, buildTypeRef(typ))
	if def != nil {
		v, err := def.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("default value: %w", err)
		}
		in.SetDefault(v)
		in.DefaultLiteral = sourceLiteral(def)
	}
	if reason, ok := deprecation(dirs); ok {
		in.Deprecate(reason)
	}
	return in, nil
}

func buildDirective(def *language.DirectiveDefinition) (*Directive, error) {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		in, err := buildInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives)
		if err != nil {
			return nil, fmt.Errorf("directive @%s argument %s: %w", def.Name, arg.Name, err)
		}
		d.AddArgument(in)
	}
	return d, nil
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(buildTypeRef(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(buildTypeRef(t.Elem))
}

func typeKindOf(kind language.DefinitionKind) TypeKind {
	switch kind {
	case language.Object:
		return TypeKindObject
	case language.Interface:
		return TypeKindInterface
	case language.Union:
		return TypeKindUnion
	case language.Enum:
		return TypeKindEnum
	case language.InputObject:
		return TypeKindInputObject
	default:
		return TypeKindScalar
	}
}

func deprecation(dirs language.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	reason, _ := directiveArgs(d)["reason"].(string)
	return reason, true
}
