// Package language wraps the gqlparser AST and loaders used by the schema
// builder and the executor.
package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Error is a located GraphQL language error.
type Error = gqlerror.Error

// ErrorList is returned when a query fails validation.
type ErrorList = gqlerror.List

// ParseQuery parses a query document without validating it.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL sources, prepending the GraphQL prelude.
// Directive uses are checked against their declarations (locations, arguments).
func LoadSchema(sources ...*Source) (*SchemaAST, error) {
	s, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadQuery parses a query and validates it against a loaded schema. A
// validation failure is an ErrorList holding every problem found.
func LoadQuery(s *SchemaAST, source string) (*QueryDocument, error) {
	doc, errs := gqlparser.LoadQuery(s, source)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}
