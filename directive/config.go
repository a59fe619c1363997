package directive

import (
	"errors"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hanpama/gqldirective/schema"
)

// ResolverWrapper builds the resolver installed on a field from the resolver
// that was there before (or schema.DefaultResolver) and the directive context
// of the occurrence being applied.
type ResolverWrapper func(next schema.Resolver, dc *Context) schema.Resolver

// Hook observes a directive occurrence. A returned error aborts the visit and
// reaches the caller unchanged.
type Hook func(dc *Context) error

// Hooks are optional callbacks run while a directive is applied.
type Hooks struct {
	// OnVisitObject runs once per annotated object type, before its fields are wrapped.
	OnVisitObject Hook
	// OnVisitFieldDefinition runs once per annotated field, before it is wrapped.
	OnVisitFieldDefinition Hook
	// OnApplyDirective runs for every field right before Wrap is called. It
	// sees the application before Wrap's result is checked, so a nil resolver
	// from Wrap still fails the visit with a ConfigurationError after the hook
	// has run. The field is left untouched in that case.
	OnApplyDirective Hook
}

// Config describes a schema directive.
type Config struct {
	// Name is the directive name as written in SDL, without "@".
	Name string `validate:"required,graphql_name"`
	// Wrap installs the directive's behavior on each targeted field.
	Wrap ResolverWrapper `validate:"required"`
	Hooks Hooks
}

var nameRE = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("graphql_name", func(fl validator.FieldLevel) bool {
			return nameRE.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Validate reports the first problem with cfg as a *ConfigurationError.
func (cfg Config) Validate() error {
	err := configValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigurationError{Directive: cfg.Name, Field: "Config", Reason: err.Error()}
	}
	fe := verrs[0]
	return &ConfigurationError{Directive: cfg.Name, Field: fe.Field(), Reason: reasonFor(fe)}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "graphql_name":
		return "must match " + nameRE.String()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
