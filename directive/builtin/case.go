// Package builtin provides ready-made directive configs.
//
// Each config expects its declaration in the schema; SDL holds all of them.
package builtin

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hanpama/gqldirective/directive"
	"github.com/hanpama/gqldirective/schema"
)

// SDL declares every directive in this package.
const SDL = `directive @upperCase on OBJECT | FIELD_DEFINITION
directive @lowerCase on OBJECT | FIELD_DEFINITION
directive @auth(require: [Role] = [ADMIN]) on OBJECT | FIELD_DEFINITION
directive @trace(name: String) on OBJECT | FIELD_DEFINITION
directive @log(level: String = "info") on OBJECT | FIELD_DEFINITION

enum Role {
  SELF
  USER
  ADMIN
}
`

// All returns the configs of every directive in this package, using the
// global tracer provider for @trace.
func All(opts ...Option) []directive.Config {
	o := newOptions(opts)
	return []directive.Config{
		UpperCase(),
		LowerCase(),
		Auth(),
		Trace(o.tracer),
		Log(o.logger),
	}
}

// Option configures All.
type Option func(*options)

type options struct {
	tracer trace.Tracer
	logger *zap.Logger
}

// WithTracer sets the tracer used by @trace.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithLogger sets the logger used by @log.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// UpperCase upper-cases string results, including lists of strings. Other
// values pass through.
func UpperCase() directive.Config {
	return caseDirective("upperCase", strings.ToUpper)
}

// LowerCase lower-cases string results, including lists of strings.
func LowerCase() directive.Config {
	return caseDirective("lowerCase", strings.ToLower)
}

func caseDirective(name string, convert func(string) string) directive.Config {
	return directive.Config{
		Name: name,
		Wrap: func(next schema.Resolver, _ *directive.Context) schema.Resolver {
			return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
				v, err := next(ctx, source, args, info)
				if err != nil {
					return v, err
				}
				return mapStrings(v, convert), nil
			}
		},
	}
}

func mapStrings(v any, convert func(string) string) any {
	switch v := v.(type) {
	case string:
		return convert(v)
	case *string:
		if v == nil {
			return v
		}
		s := convert(*v)
		return &s
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = convert(s)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = mapStrings(item, convert)
		}
		return out
	default:
		return v
	}
}
