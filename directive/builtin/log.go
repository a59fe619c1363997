package builtin

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hanpama/gqldirective/directive"
	"github.com/hanpama/gqldirective/schema"
)

// Log writes one entry per call of the annotated resolvers at
// @log(level:), "info" by default. An unknown level fails when the directive
// is applied. A nil logger logs nothing.
func Log(logger *zap.Logger) directive.Config {
	if logger == nil {
		logger = zap.NewNop()
	}
	return directive.Config{
		Name: "log",
		Wrap: func(next schema.Resolver, dc *directive.Context) schema.Resolver {
			lvl, _ := logLevel(dc.Args)
			coordinate := dc.Coordinate()
			return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
				start := time.Now()
				v, err := next(ctx, source, args, info)
				if ce := logger.Check(lvl, "resolved field"); ce != nil {
					ce.Write(
						zap.String("field", coordinate),
						zap.String("path", pathString(info)),
						zap.Duration("elapsed", time.Since(start)),
						zap.Error(err),
					)
				}
				return v, err
			}
		},
		Hooks: directive.Hooks{
			OnApplyDirective: func(dc *directive.Context) error {
				_, err := logLevel(dc.Args)
				return err
			},
		},
	}
}

func logLevel(args map[string]any) (zapcore.Level, error) {
	raw, ok := args["level"].(string)
	if !ok || raw == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(raw)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("@log: %w", err)
	}
	return lvl, nil
}
