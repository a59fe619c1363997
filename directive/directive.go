// Package directive turns a name plus a resolver wrapper into a schema
// directive implementation.
//
// A Directive is registered with schema.VisitDirectives under its name. For
// every occurrence of @name on an object type it wraps the resolver of each of
// the type's fields; for every occurrence on a field it wraps that field. When
// the same directive is written on a type and on one of its fields, the field
// occurrence takes precedence: the object-level application skips fields that
// already carry the directive, and the field-level wrapper is installed on top
// of an earlier object-level one.
package directive

import (
	"maps"

	"go.uber.org/zap"

	"github.com/hanpama/gqldirective/schema"
)

// Context describes one application of a directive occurrence.
type Context struct {
	// Name is the directive name.
	Name string
	// Args are the occurrence's arguments, defaults applied.
	Args map[string]any
	// ObjectType is the object type owning the field, or the annotated type.
	ObjectType *schema.Type
	// Field is the targeted field; nil in OnVisitObject.
	Field *schema.Field
}

// Coordinate returns "Type.field" for the targeted field. Parts that are not
// known are left out.
func (dc *Context) Coordinate() string {
	owner := typeName(dc.ObjectType)
	if dc.Field == nil {
		return owner
	}
	if owner == "" {
		return dc.Field.Name
	}
	return owner + "." + dc.Field.Name
}

// Directive is a validated Config. It implements schema.DirectiveVisitorFactory.
type Directive struct {
	cfg     Config
	tracker *Tracker
	logger  *zap.Logger
}

// Option configures a Directive.
type Option func(*Directive)

// WithTracker shares tracker between directives. Directives built by
// NewSchemaDirectives already share one.
func WithTracker(tracker *Tracker) Option {
	return func(d *Directive) { d.tracker = tracker }
}

// WithLogger logs every applied and skipped field at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Directive) { d.logger = logger }
}

// New validates cfg and returns the directive. An invalid cfg yields a
// *ConfigurationError.
func New(cfg Config, opts ...Option) (*Directive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Directive{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracker == nil {
		d.tracker = NewTracker()
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	d.logger = d.logger.With(zap.String("directive", cfg.Name))
	return d, nil
}

// Name returns the directive name.
func (d *Directive) Name() string { return d.cfg.Name }

// Tracker returns the tracker recording this directive's applications.
func (d *Directive) Tracker() *Tracker { return d.tracker }

// NewVisitor implements schema.DirectiveVisitorFactory.
func (d *Directive) NewVisitor(use schema.DirectiveUse) schema.DirectiveVisitor {
	return d.Handler(use)
}

// Handler returns the handler for one occurrence of the directive.
func (d *Directive) Handler(use schema.DirectiveUse) *Handler {
	return &Handler{directive: d, args: use.Args}
}

// Handler applies one directive occurrence. It implements
// schema.DirectiveVisitor.
type Handler struct {
	directive *Directive
	args      map[string]any
}

// Context builds the directive context passed to hooks and to the wrapper.
// Each call gets its own copy of the arguments.
func (h *Handler) Context(objectType *schema.Type, field *schema.Field) *Context {
	args := maps.Clone(h.args)
	if args == nil {
		args = map[string]any{}
	}
	return &Context{
		Name:       h.directive.cfg.Name,
		Args:       args,
		ObjectType: objectType,
		Field:      field,
	}
}

// VisitObject runs OnVisitObject and applies the directive to every field of
// the object type.
func (h *Handler) VisitObject(objectType *schema.Type) error {
	if hook := h.directive.cfg.Hooks.OnVisitObject; hook != nil {
		if err := hook(h.Context(objectType, nil)); err != nil {
			return err
		}
	}
	for _, field := range objectType.Fields {
		if err := h.applyToField(objectType, field, LevelObject); err != nil {
			return err
		}
	}
	return nil
}

// VisitFieldDefinition runs OnVisitFieldDefinition and applies the directive
// to the field.
func (h *Handler) VisitFieldDefinition(field *schema.Field, details schema.FieldDetails) error {
	if hook := h.directive.cfg.Hooks.OnVisitFieldDefinition; hook != nil {
		if err := hook(h.Context(details.ObjectType, field)); err != nil {
			return err
		}
	}
	return h.applyToField(details.ObjectType, field, LevelField)
}

func (h *Handler) applyToField(objectType *schema.Type, field *schema.Field, level Level) error {
	d := h.directive
	log := d.logger.With(zap.String("type", typeName(objectType)), zap.String("field", field.Name), zap.Stringer("level", level))

	if !d.tracker.ShouldApply(field, d.cfg.Name, level == LevelObject) {
		log.Debug("directive already applied, skipping")
		return nil
	}

	dc := h.Context(objectType, field)
	if hook := d.cfg.Hooks.OnApplyDirective; hook != nil {
		if err := hook(dc); err != nil {
			return err
		}
	}

	wrapped := d.cfg.Wrap(field.Resolver(), dc)
	if wrapped == nil {
		return &ConfigurationError{
			Directive: d.cfg.Name,
			Field:     "Wrap",
			Reason:    "returned a nil resolver for " + typeName(objectType) + "." + field.Name,
		}
	}
	field.Resolve = wrapped
	d.tracker.MarkApplied(field, d.cfg.Name, level)
	log.Debug("directive applied")
	return nil
}

func typeName(t *schema.Type) string {
	if t == nil {
		return ""
	}
	return t.Name
}
