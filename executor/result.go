package executor

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/hanpama/gqldirective/language"
)

// ExecutionResult is the response of one operation. Data is nil when the
// request failed before execution or a null reached the root.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// Err combines the result's errors into one, or returns nil.
func (r *ExecutionResult) Err() error {
	var err error
	for _, e := range r.Errors {
		err = multierr.Append(err, e)
	}
	return err
}

// GraphQLError is a located error in a response.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// Location points into the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// requestErrors turns a failure that happened before execution into a
// result without data. Validation failures keep their query locations.
func requestErrors(err error) *ExecutionResult {
	var list language.ErrorList
	if !errors.As(err, &list) {
		var one *language.Error
		if !errors.As(err, &one) {
			return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
		}
		list = language.ErrorList{one}
	}
	out := make([]GraphQLError, 0, len(list))
	for _, e := range list {
		ge := GraphQLError{Message: e.Message}
		for _, loc := range e.Locations {
			ge.Locations = append(ge.Locations, Location{Line: loc.Line, Column: loc.Column})
		}
		out = append(out, ge)
	}
	return &ExecutionResult{Errors: out}
}
