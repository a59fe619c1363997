package executor

import (
	"slices"

	"github.com/hanpama/gqldirective/language"
	"github.com/hanpama/gqldirective/schema"
)

// fieldGroup is every selection of one response name, in query order.
type fieldGroup struct {
	responseName string
	fields       []*language.Field
}

// collectFields flattens fragments and groups the selections of set by
// response name. Groups keep the order their first selection appears in.
func (ex *execution) collectFields(objectType *schema.Type, set language.SelectionSet) []*fieldGroup {
	var groups []*fieldGroup
	byName := make(map[string]*fieldGroup)
	visited := make(map[string]bool)

	var walk func(language.SelectionSet)
	walk = func(set language.SelectionSet) {
		for _, selection := range set {
			switch sel := selection.(type) {
			case *language.Field:
				if !ex.included(sel.Directives) {
					continue
				}
				name := sel.Alias
				if name == "" {
					name = sel.Name
				}
				g := byName[name]
				if g == nil {
					g = &fieldGroup{responseName: name}
					byName[name] = g
					groups = append(groups, g)
				}
				g.fields = append(g.fields, sel)

			case *language.InlineFragment:
				if ex.included(sel.Directives) && fragmentApplies(ex.schema, objectType, sel.TypeCondition) {
					walk(sel.SelectionSet)
				}

			case *language.FragmentSpread:
				if !ex.included(sel.Directives) || visited[sel.Name] {
					continue
				}
				visited[sel.Name] = true
				fragment := ex.document.Fragments.ForName(sel.Name)
				if fragment == nil || !ex.included(fragment.Directives) {
					continue
				}
				if fragmentApplies(ex.schema, objectType, fragment.TypeCondition) {
					walk(fragment.SelectionSet)
				}
			}
		}
	}
	walk(set)
	return groups
}

// included evaluates @skip and @include. An argument that is missing or not
// a boolean does not exclude the selection.
func (ex *execution) included(directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := ex.conditionValue(skip); ok && v {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, ok := ex.conditionValue(include); ok && !v {
			return false
		}
	}
	return true
}

func (ex *execution) conditionValue(d *language.Directive) (value, ok bool) {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	value, ok = valueFromAST(arg.Value, ex.variables).(bool)
	return value, ok
}

// fragmentApplies reports whether a fragment with typeCondition applies to
// objectType. An empty condition always applies.
func fragmentApplies(s *schema.Schema, objectType *schema.Type, typeCondition string) bool {
	if typeCondition == "" || typeCondition == objectType.Name {
		return true
	}
	return isPossibleType(s.Types[typeCondition], objectType)
}

// isPossibleType reports whether objectType belongs to the abstract type.
func isPossibleType(abstractType, objectType *schema.Type) bool {
	if abstractType == nil {
		return false
	}
	switch abstractType.Kind {
	case schema.TypeKindUnion:
		return slices.Contains(abstractType.PossibleTypes, objectType.Name)
	case schema.TypeKindInterface:
		return slices.Contains(objectType.Interfaces, abstractType.Name) ||
			slices.Contains(abstractType.PossibleTypes, objectType.Name)
	}
	return false
}
