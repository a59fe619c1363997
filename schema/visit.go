package schema

import (
	language "github.com/hanpama/gqldirective/language"
)

// DirectiveUse is one syntactic occurrence of a directive on a type or field.
type DirectiveUse struct {
	Name string
	// Args holds the occurrence's arguments with declaration defaults applied.
	Args map[string]any
	// Arguments is the raw argument list as written.
	Arguments language.ArgumentList `json:"-"`
	Position  *language.Position    `json:"-"`
}

// NewDirectiveUse returns an occurrence of name carrying args. It is meant for
// schemas assembled in code rather than parsed from SDL.
func NewDirectiveUse(name string, args map[string]any) *DirectiveUse {
	if args == nil {
		args = map[string]any{}
	}
	return &DirectiveUse{Name: name, Args: args}
}

func newDirectiveUse(d *language.Directive) *DirectiveUse {
	return &DirectiveUse{
		Name:      d.Name,
		Args:      directiveArgs(d),
		Arguments: d.Arguments,
		Position:  d.Position,
	}
}

func directiveArgs(d *language.Directive) map[string]any {
	if d.Definition != nil {
		return d.ArgumentMap(nil)
	}
	out := make(map[string]any, len(d.Arguments))
	for _, arg := range d.Arguments {
		if v, err := arg.Value.Value(nil); err == nil {
			out[arg.Name] = v
		}
	}
	return out
}

// FieldDetails carries the context of a field-level visit.
type FieldDetails struct {
	ObjectType *Type
}

// DirectiveVisitor handles a single directive occurrence.
type DirectiveVisitor interface {
	// VisitObject is called for an occurrence on an object type definition.
	VisitObject(objectType *Type) error
	// VisitFieldDefinition is called for an occurrence on an object field.
	VisitFieldDefinition(field *Field, details FieldDetails) error
}

// DirectiveVisitorFactory creates a visitor per directive occurrence.
type DirectiveVisitorFactory interface {
	NewVisitor(use DirectiveUse) DirectiveVisitor
}

// VisitDirectives walks the object types of s in definition order and hands
// every occurrence of a registered directive to a fresh visitor.
//
// For each object type all type-level occurrences are visited before any of
// its field-level occurrences. Directive implementations may rely on this
// order. Occurrences with no registered factory are skipped; the first visitor
// error stops the walk and is returned as is.
func VisitDirectives[F DirectiveVisitorFactory](s *Schema, factories map[string]F) error {
	for _, t := range s.OrderedTypes() {
		if t.Kind != TypeKindObject {
			continue
		}
		for _, use := range t.Directives {
			factory, ok := factories[use.Name]
			if !ok {
				continue
			}
			if err := factory.NewVisitor(*use).VisitObject(t); err != nil {
				return err
			}
		}
		for _, f := range t.Fields {
			for _, use := range f.Directives {
				factory, ok := factories[use.Name]
				if !ok {
					continue
				}
				if err := factory.NewVisitor(*use).VisitFieldDefinition(f, FieldDetails{ObjectType: t}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
