package builtin

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hanpama/gqldirective/directive"
	"github.com/hanpama/gqldirective/schema"
)

const tracerName = "github.com/hanpama/gqldirective/directive/builtin"

// Trace opens a span around every call of the annotated resolvers. The span
// is named after @trace(name:) or "Type.field". A nil tracer uses the global
// tracer provider.
func Trace(tracer trace.Tracer) directive.Config {
	return directive.Config{
		Name: "trace",
		Wrap: func(next schema.Resolver, dc *directive.Context) schema.Resolver {
			t := tracer
			if t == nil {
				t = otel.Tracer(tracerName)
			}
			coordinate := dc.Coordinate()
			spanName := coordinate
			if name, ok := dc.Args["name"].(string); ok && name != "" {
				spanName = name
			}
			return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
				ctx, span := t.Start(ctx, spanName, trace.WithAttributes(
					attribute.String("graphql.field.coordinate", coordinate),
					attribute.String("graphql.field.path", pathString(info)),
				))
				defer span.End()

				v, err := next(ctx, source, args, info)
				if err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
				}
				return v, err
			}
		},
	}
}

func pathString(info *schema.ResolveInfo) string {
	if info == nil {
		return ""
	}
	s := ""
	for i, elem := range info.Path {
		switch elem := elem.(type) {
		case int:
			s += fmt.Sprintf("[%d]", elem)
		default:
			if i > 0 {
				s += "."
			}
			s += fmt.Sprint(elem)
		}
	}
	return s
}
