package directive

import (
	"go.uber.org/multierr"

	"github.com/hanpama/gqldirective/schema"
)

// Directives maps directive names to directives, ready to be handed to
// schema.VisitDirectives.
type Directives map[string]*Directive

// NewSchemaDirectives builds a directive for every config. The directives
// share one Tracker unless opts provide another. A later config replaces an
// earlier one with the same name. Every invalid config is reported.
func NewSchemaDirectives(configs []Config, opts ...Option) (Directives, error) {
	opts = append([]Option{WithTracker(NewTracker())}, opts...)

	out := make(Directives, len(configs))
	var errs error
	for _, cfg := range configs {
		d, err := New(cfg, opts...)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out[cfg.Name] = d
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// Apply visits every occurrence of the registered directives in s.
func (ds Directives) Apply(s *schema.Schema) error {
	return schema.VisitDirectives[*Directive](s, ds)
}
