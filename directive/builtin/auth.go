package builtin

import (
	"context"
	"errors"
	"slices"

	"github.com/hanpama/gqldirective/directive"
	"github.com/hanpama/gqldirective/schema"
)

// ErrNotAuthorized is returned by @auth when the request role is not required.
var ErrNotAuthorized = errors.New("not authorized")

type roleKey struct{}

// WithRole returns a context carrying the role of the current request.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns the role set by WithRole.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey{}).(string)
	return role, ok
}

// Auth guards fields with @auth(require: [Role]). The wrapped resolver only
// runs when the request role is one of the required roles.
func Auth() directive.Config {
	return directive.Config{
		Name: "auth",
		Wrap: func(next schema.Resolver, dc *directive.Context) schema.Resolver {
			required := stringList(dc.Args["require"])
			return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
				role, ok := RoleFromContext(ctx)
				if !ok || !slices.Contains(required, role) {
					return nil, ErrNotAuthorized
				}
				return next(ctx, source, args, info)
			}
		},
	}
}

func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
